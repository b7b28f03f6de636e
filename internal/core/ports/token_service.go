package ports

import (
	"time"

	"github.com/identium/auth-system/internal/core/domain"
)

// TokenClaims is the decoded payload of a verified token. The role claim is
// typed rather than carried in an open map so consumers cannot smuggle
// arbitrary claims past the compiler.
type TokenClaims struct {
	Subject   string
	Role      domain.Role
	ExpiresAt time.Time
}

// TokenService issues and validates signed, expiring bearer tokens. Access
// and refresh tokens share structure and signing; they differ only in
// lifetime and client usage. Implementations hold immutable configuration
// and are safe for concurrent use.
type TokenService interface {
	CreateAccessToken(subject string, role domain.Role) (string, error)
	CreateRefreshToken(subject string, role domain.Role) (string, error)

	// VerifyToken decodes and signature-checks a token. It returns nil on
	// any failure — expired, malformed, tampered, wrong algorithm — and
	// never an error: an invalid token is an expected outcome, not a
	// fault. Callers branch on nil.
	VerifyToken(token string) *TokenClaims

	// ValidateAccessToken and ValidateRefreshToken layer subject
	// extraction on VerifyToken, failing with
	// domain.ErrInvalidCredentials when the token is invalid or carries
	// no subject.
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}
