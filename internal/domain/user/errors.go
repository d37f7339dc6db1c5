package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserEmailExists       = errors.New("email already registered")
	ErrInvalidOAuthProvider  = errors.New("invalid oauth provider")
	ErrOAuthProviderIDExists = errors.New("oauth provider id already registered")
)
