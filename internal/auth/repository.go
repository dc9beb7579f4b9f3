package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when inserting a user whose email is taken.
var ErrDuplicateEmail = errors.New("user email already exists")

// UserRepository provides operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*User, error)
	UpsertManager(ctx context.Context, user *User) error
	ListManagers(ctx context.Context, teamID uuid.UUID) ([]User, error)
}
