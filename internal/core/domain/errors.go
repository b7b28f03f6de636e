package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers wrong username, wrong password and
	// invalid or expired tokens. Deliberately undifferentiated so callers
	// cannot enumerate which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotActive means the credentials were correct but the account
	// is disabled. Distinct from ErrInvalidCredentials so the transport
	// layer can answer with a different status.
	ErrUserNotActive = errors.New("user account is not active")
	ErrUsernameTaken = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
	ErrForbidden     = errors.New("access forbidden")
	ErrTooManyLogins = errors.New("too many failed login attempts")
)

// ValidationError reports a malformed value at construction time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
