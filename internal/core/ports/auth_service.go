package ports

import (
	"context"

	"github.com/identium/auth-system/internal/core/domain"
)

// TokenPair bundles the two credentials issued on authentication. The
// refresh token rotates on every use; clients must persist the newest pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService orchestrates authentication flows over the user store, the
// password hasher and the token service.
type AuthService interface {
	// Register creates an account with role=user, active. Fails with
	// domain.ErrUsernameTaken when the name is in use.
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// Authenticate verifies credentials and issues both tokens. Fails
	// with domain.ErrInvalidCredentials on unknown username or wrong
	// password, domain.ErrUserNotActive on a disabled account.
	Authenticate(ctx context.Context, username, password string) (*domain.User, TokenPair, error)
	// RefreshTokens validates a refresh token and rotates both tokens.
	RefreshTokens(ctx context.Context, refreshToken string) (TokenPair, error)
	// GetCurrentUser resolves the user behind a valid access token.
	GetCurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
	// RequireRole fails with domain.ErrForbidden unless the user's role
	// satisfies the required one.
	RequireRole(user *domain.User, required domain.Role) error
}
