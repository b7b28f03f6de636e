package domain

import "encoding/json"

const (
	usernameMinLen = 3
	usernameMaxLen = 50
)

// Username is an immutable value object wrapping a validated username.
// Equality is by value; construct only through NewUsername.
type Username struct {
	value string
}

// NewUsername validates and wraps a raw username. Allowed: 3 to 50
// characters of letters, digits and underscore.
func NewUsername(raw string) (Username, error) {
	if raw == "" {
		return Username{}, &ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if len(raw) < usernameMinLen || len(raw) > usernameMaxLen {
		return Username{}, &ValidationError{Field: "username", Reason: "must be between 3 and 50 characters"}
	}
	for _, r := range raw {
		if !isUsernameRune(r) {
			return Username{}, &ValidationError{Field: "username", Reason: "may only contain letters, digits and underscore"}
		}
	}
	return Username{value: raw}, nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}

func (u Username) String() string {
	return u.value
}

// MarshalJSON renders the username as a plain JSON string.
func (u Username) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.value)
}
