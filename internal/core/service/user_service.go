package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// UserService implements administrative user management. Every id-based
// operation fails with domain.ErrUserNotFound when the id is unknown.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Create builds a user with an explicit role and activity flag. Only the
// admin surface reaches this; self-registration goes through AuthService.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	name, err := domain.NewUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Reason: "must be admin or user"}
	}

	taken, err := s.repo.ExistsWithUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, input.Username)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(name, hash)
	user.ChangeRole(input.Role)
	if !input.IsActive {
		user.Deactivate()
	}

	created, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, input.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	name, err := domain.NewUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUsername(ctx, name)
}

// List returns a page of users and the total count. Limit is capped at
// maxPageLimit; page numbers are 1-based.
func (s *UserService) List(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// ChangeUsername renames a user after re-checking uniqueness. Renaming to
// the current name is a no-op returning the unchanged user.
func (s *UserService) ChangeUsername(ctx context.Context, id, username string) (*domain.User, error) {
	name, err := domain.NewUsername(username)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Username == name {
		return user, nil
	}

	taken, err := s.repo.ExistsWithUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("change username: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
	}

	user.ChangeUsername(name)
	return s.save(ctx, user, "change username")
}

// ChangePassword rehashes and stores a new credential for the user.
func (s *UserService) ChangePassword(ctx context.Context, id, newPassword string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	user.ChangePassword(hash)
	return s.save(ctx, user, "change password")
}

func (s *UserService) ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Reason: "must be admin or user"}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.ChangeRole(role)
	return s.save(ctx, user, "change role")
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if active {
		user.Activate()
	} else {
		user.Deactivate()
	}
	return s.save(ctx, user, "set active")
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) save(ctx context.Context, user *domain.User, op string) (*domain.User, error) {
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}
