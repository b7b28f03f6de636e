package ports

import (
	"context"

	"github.com/identium/auth-system/internal/core/domain"
)

// ListUsersFilter carries query parameters for listing users.
type ListUsersFilter struct {
	Role     domain.Role // zero value = no role filter
	IsActive *bool       // nil = no activity filter
	Page     int         // 1-based
	Limit    int         // max rows per page (capped by the service)
}

// UserRepository defines persistence operations for users. The store owns
// the unique constraint on username: Save must return
// domain.ErrUsernameTaken on a duplicate, which is the final authority over
// the registration race regardless of any prior existence check.
type UserRepository interface {
	// Save upserts the user by id and returns the persisted state.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username domain.Username) (*domain.User, error)
	ExistsWithUsername(ctx context.Context, username domain.Username) (bool, error)
	// Delete returns domain.ErrUserNotFound when no user matches.
	Delete(ctx context.Context, id string) error
	// List returns a page of users matching filter and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}
