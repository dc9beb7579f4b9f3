package submission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a submission does not exist within the team.
var ErrNotFound = errors.New("submission not found")

// Repository provides operations on the submissions table. Every id-keyed
// method is scoped to a team: rows of other teams behave as missing.
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, teamID, id uuid.UUID) (*Submission, error)
	List(ctx context.Context, teamID uuid.UUID, filter ListFilter) ([]Submission, error)
	LastByUser(ctx context.Context, teamID, userID uuid.UUID) (*Submission, error)
	Update(ctx context.Context, teamID, id uuid.UUID, patch Patch) (*Submission, error)
	Delete(ctx context.Context, teamID, id uuid.UUID) error
	DeleteMany(ctx context.Context, teamID uuid.UUID, ids []uuid.UUID) (int64, error)
}
