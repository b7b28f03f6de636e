package ports

import "github.com/identium/auth-system/internal/core/domain"

// PasswordHasher turns plaintext passwords into stored credentials and
// verifies login attempts against them. Implementations are pure functions
// of their inputs plus static configuration.
type PasswordHasher interface {
	// Hash fails with a domain.ValidationError when the plaintext is
	// empty or below the configured minimum length.
	Hash(plain string) (domain.HashedPassword, error)
	// Verify recomputes the hash over plain and compares it to the
	// stored value in constant time. No side effects.
	Verify(plain string, hashed domain.HashedPassword) bool
}
