package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const MinSize = 64

var ErrEmptyContent = errors.New("qr code content is empty")

// Renderer turns invitation links into PNG QR codes of a fixed size.
type Renderer struct {
	size int
}

func NewRenderer(size int) *Renderer {
	if size < MinSize {
		size = MinSize
	}
	return &Renderer{size: size}
}

// PNG renders content with medium error correction.
func (r *Renderer) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	png, err := goqrcode.Encode(content, goqrcode.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// DataURI renders content as a base64 PNG data URI for embedding in JSON or HTML.
func (r *Renderer) DataURI(content string) (string, error) {
	png, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
