package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

// AuthService implements registration, login, token refresh and
// current-user resolution. It holds no mutable state of its own; the user
// store is the only shared resource and provides its own isolation.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

// Register creates a new account with role=user, active. The existence
// pre-check is an optimization; the store's unique constraint is the final
// authority, so a duplicate-key failure from Save surfaces as
// ErrUsernameTaken as well.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	name, err := domain.NewUsername(username)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsWithUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(name, hash)
	created, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return created, nil
}

// Authenticate verifies the credentials and issues an access/refresh token
// pair with the user id as subject and the role embedded in both tokens.
// Unknown username and wrong password both map to ErrInvalidCredentials so
// callers cannot enumerate usernames. Authentication never mutates the
// store, and a failed call never issues a token.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, ports.TokenPair, error) {
	name, err := domain.NewUsername(username)
	if err != nil {
		return nil, ports.TokenPair{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ports.TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, ports.TokenPair{}, fmt.Errorf("authenticate: %w", err)
	}

	if !user.IsActive {
		return nil, ports.TokenPair{}, domain.ErrUserNotActive
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ports.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, ports.TokenPair{}, err
	}
	return user, pair, nil
}

// RefreshTokens validates a refresh token and rotates both tokens for the
// same subject. Rotating the refresh token limits the blast radius of a
// leak to a single use; the client must persist the newest pair. The old
// refresh token stays structurally valid until it expires — there is no
// revocation list in this design.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ports.TokenPair{}, err
	}

	user, err := s.resolveActiveUser(ctx, claims.Subject)
	if err != nil {
		return ports.TokenPair{}, err
	}

	return s.issueTokens(user)
}

// GetCurrentUser resolves the user behind a valid access token.
func (s *AuthService) GetCurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	return s.resolveActiveUser(ctx, claims.Subject)
}

// RequireRole enforces the access policy: admin-gated operations require
// RoleAdmin, everything else admits any authenticated user.
func (s *AuthService) RequireRole(user *domain.User, required domain.Role) error {
	if user == nil || !user.Can(required) {
		return domain.ErrForbidden
	}
	return nil
}

// resolveActiveUser fetches the token subject and gates on activity. A
// missing or deactivated user maps to ErrInvalidCredentials: the token may
// be genuine, but the account behind it is no longer usable.
func (s *AuthService) resolveActiveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *domain.User) (ports.TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(user.ID, user.Role)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.CreateRefreshToken(user.ID, user.Role)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
