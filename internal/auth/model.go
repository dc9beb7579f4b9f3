package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table: a driver, or a manager when
// IsManager is set. Drivers never carry a password.
type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	IsManager    bool
	IsSuperAdmin bool
	PasswordHash *string
	TeamID       *uuid.UUID // nil until the first submission or for superadmins
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "First Last" with surrounding blanks removed.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UpdateFields holds optional fields for a partial user update.
// Nil fields are not updated.
type UpdateFields struct {
	FirstName    *string
	LastName     *string
	TeamID       *uuid.UUID
	PasswordHash *string
}

// Identity is stored in the request context after a manager token is verified.
type Identity struct {
	UserID       uuid.UUID
	Email        string
	TeamID       *uuid.UUID // nil for superadmins without a home team
	IsSuperAdmin bool
}
