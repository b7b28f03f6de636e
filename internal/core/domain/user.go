package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user is allowed to do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the aggregate root of the identity domain.
type User struct {
	ID           string         `json:"id"`
	Username     Username       `json:"username"`
	PasswordHash HashedPassword `json:"-"`
	Role         Role           `json:"role"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewUser creates a user with a fresh id and timestamps. New accounts
// default to RoleUser and active.
func NewUser(username Username, passwordHash HashedPassword) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Can reports whether the user's role satisfies the required one.
// Admins pass every check; the zero required role admits any user.
func (u *User) Can(required Role) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return required != RoleAdmin
}

// ChangeUsername replaces the username. Uniqueness is the store's concern.
func (u *User) ChangeUsername(username Username) {
	u.Username = username
	u.touch()
}

// ChangePassword replaces the stored credential.
func (u *User) ChangePassword(hash HashedPassword) {
	u.PasswordHash = hash
	u.touch()
}

// ChangeRole assigns a new role.
func (u *User) ChangeRole(role Role) {
	u.Role = role
	u.touch()
}

// Activate re-enables a disabled account.
func (u *User) Activate() {
	u.IsActive = true
	u.touch()
}

// Deactivate disables the account; every authentication entry point
// rejects inactive users regardless of credential correctness.
func (u *User) Deactivate() {
	u.IsActive = false
	u.touch()
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
