// Package jwt implements the token service over RFC 7519 JSON Web Tokens,
// HMAC-signed with HS256. Access and refresh tokens share structure and
// signing; only the lifetime differs.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds the immutable signing configuration.
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service issues and validates tokens. Stateless apart from Config; safe
// for concurrent use.
type Service struct {
	cfg Config
}

// tokenClaims is the typed JWT payload: subject and expiry from the
// registered claim set, plus the role claim.
type tokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// NewService creates a token service. Zero TTLs fall back to the defaults;
// negative TTLs are kept as given so tests can mint already-expired tokens.
func NewService(cfg Config) *Service {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &Service{cfg: cfg}
}

// CreateAccessToken issues a short-lived bearer token with the user id as
// subject and the role embedded as a claim.
func (s *Service) CreateAccessToken(subject string, role domain.Role) (string, error) {
	return s.create(subject, role, s.cfg.AccessTTL)
}

// CreateRefreshToken issues the longer-lived rotation credential.
func (s *Service) CreateRefreshToken(subject string, role domain.Role) (string, error) {
	return s.create(subject, role, s.cfg.RefreshTTL)
}

func (s *Service) create(subject string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// VerifyToken decodes and signature-checks a token, returning nil on any
// failure: expired, malformed, tampered signature, or an algorithm other
// than HS256. An invalid token is an expected outcome here, so there is no
// error to inspect — callers branch on nil.
func (s *Service) VerifyToken(token string) *ports.TokenClaims {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return nil
	}

	out := &ports.TokenClaims{
		Subject: claims.Subject,
		Role:    domain.Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}

// ValidateAccessToken extracts the subject from a verified access token.
func (s *Service) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	return s.validate(token)
}

// ValidateRefreshToken extracts the subject from a verified refresh token.
func (s *Service) ValidateRefreshToken(token string) (*ports.TokenClaims, error) {
	return s.validate(token)
}

func (s *Service) validate(token string) (*ports.TokenClaims, error) {
	claims := s.VerifyToken(token)
	if claims == nil || claims.Subject == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}
