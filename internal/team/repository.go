package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateSlug is returned when a team with the same slug already exists.
var ErrDuplicateSlug = errors.New("team slug already exists")

// Repository provides operations on the teams table.
type Repository interface {
	Create(ctx context.Context, team *Team) error
	Upsert(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	GetBySlug(ctx context.Context, slug string) (*Team, error)
	List(ctx context.Context) ([]Team, error)
}
