package ports

import (
	"context"

	"github.com/identium/auth-system/internal/core/domain"
)

// CreateUserInput carries all data for an administrative user creation.
// Unlike self-registration, admins may set role and activity up front.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
	IsActive bool
}

// ListUsersResult is returned by List.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines administrative use-case operations over users.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) (*ListUsersResult, error)
	ChangeUsername(ctx context.Context, id, username string) (*domain.User, error)
	ChangePassword(ctx context.Context, id, newPassword string) (*domain.User, error)
	ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
