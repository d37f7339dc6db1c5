package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
	"unicode"

	"github.com/radarfeedback/feedback-backend-go/internal/config"
)

const defaultTimeout = 10 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

// EmailService defines the interface for sending emails
type EmailService interface {
	SendFeedbackInvitation(to, inviterName, inviteURL, qrCodeDataURI string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      dialAndSend(cfg.Timeout),
	}, nil
}

type invitationEmailData struct {
	InviterName string
	InviteURL   string
	QRCode      template.URL
}

// SendFeedbackInvitation sends the invitee their invitation link and QR code.
func (s *emailServiceImpl) SendFeedbackInvitation(to, inviterName, inviteURL, qrCodeDataURI string) error {
	data := invitationEmailData{
		InviterName: inviterName,
		InviteURL:   inviteURL,
		QRCode:      template.URL(qrCodeDataURI),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "invitation.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("%s would like your feedback", inviterName), body.String())
}

// sendHTML makes a single attempt; callers decide what a failure means.
func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", encodeHeader(s.cfg.FromName), stripControl(from))
	headers += fmt.Sprintf("To: %s\r\n", stripControl(to))
	headers += fmt.Sprintf("Subject: %s\r\n", encodeHeader(subject))
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	if err := s.send(addr, auth, from, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	slog.Info("Email sent successfully", "to", to, "subject", subject)
	return nil
}

// stripControl drops CR, LF and other control characters so a value can
// never start a new header line.
func stripControl(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)
}

// encodeHeader sanitises v and RFC 2047 encodes it when it is not plain ASCII.
func encodeHeader(v string) string {
	return mime.QEncoding.Encode("utf-8", stripControl(v))
}

// dialAndSend is smtp.SendMail with the whole exchange bounded by timeout.
func dialAndSend(timeout time.Duration) sendFunc {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return err
		}

		host, _, _ := net.SplitHostPort(addr)
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			conn.Close()
			return err
		}
		defer c.Close()

		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if a != nil {
			if ok, _ := c.Extension("AUTH"); !ok {
				return errors.New("smtp: server doesn't support AUTH")
			}
			if err := c.Auth(a); err != nil {
				return err
			}
		}

		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return c.Quit()
	}
}
