package domain

import "strings"

const legacyDigestLen = 64

// HashedPassword is an immutable value object wrapping an encoded password
// hash. Two encodings are accepted:
//   - the Argon2id PHC string produced by the current hasher
//     ($argon2id$v=19$m=...,t=...,p=...$salt$hash)
//   - a legacy 64-character hex SHA-256 digest, kept so credentials stored
//     before the KDF upgrade still verify
//
// Hashing and verification live in the password hasher; this type only
// guarantees the stored value is well-formed.
type HashedPassword struct {
	value string
}

// ParseHashedPassword wraps a stored hash after validating its format.
func ParseHashedPassword(raw string) (HashedPassword, error) {
	if raw == "" {
		return HashedPassword{}, &ValidationError{Field: "password_hash", Reason: "must not be empty"}
	}
	if strings.HasPrefix(raw, "$argon2id$") {
		return HashedPassword{value: raw}, nil
	}
	if isLegacyDigest(raw) {
		return HashedPassword{value: raw}, nil
	}
	return HashedPassword{}, &ValidationError{Field: "password_hash", Reason: "must be an argon2id PHC string or a 64-character hex digest"}
}

// IsLegacy reports whether the wrapped value is a pre-upgrade SHA-256 digest.
func (h HashedPassword) IsLegacy() bool {
	return isLegacyDigest(h.value)
}

func (h HashedPassword) String() string {
	return h.value
}

func isLegacyDigest(s string) bool {
	if len(s) != legacyDigestLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
