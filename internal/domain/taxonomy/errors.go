package taxonomy

import "errors"

var (
	ErrTalentCategoryNotFound = errors.New("talent category not found")
)
