package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/team"
)

// Notifier is told about every new submission. Implementations must return
// quickly; delivery happens elsewhere.
type Notifier interface {
	Notify(t *team.Team, u *auth.User, s *Submission)
}

// MissingFieldsError lists required form fields that were left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Service implements the submission lifecycle on top of the repositories.
type Service struct {
	teams    team.Repository
	users    auth.UserRepository
	subs     Repository
	notifier Notifier
}

// NewService creates a new submission Service.
func NewService(teams team.Repository, users auth.UserRepository, subs Repository, notifier Notifier) *Service {
	return &Service{teams: teams, users: users, subs: subs, notifier: notifier}
}

// List returns the team's submissions, newest first.
func (s *Service) List(ctx context.Context, teamSlug string, filter ListFilter) ([]Submission, error) {
	t, err := s.teams.GetBySlug(ctx, teamSlug)
	if err != nil {
		return nil, err
	}
	return s.subs.List(ctx, t.ID, filter)
}

// GetLastByEmail returns the driver's latest submission for the team. Unknown
// teams, unknown drivers and drivers without submissions all yield nil.
func (s *Service) GetLastByEmail(ctx context.Context, email, teamSlug string) (*Submission, error) {
	t, err := s.teams.GetBySlug(ctx, teamSlug)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return nil, nil
		}
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	sub, err := s.subs.LastByUser(ctx, t.ID, u.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// Get returns one submission of the team.
func (s *Service) Get(ctx context.Context, teamSlug string, id uuid.UUID) (*Submission, error) {
	t, err := s.teams.GetBySlug(ctx, teamSlug)
	if err != nil {
		return nil, err
	}
	return s.subs.GetByID(ctx, t.ID, id)
}

// Create stores a driver's submission, creating the driver on first use, and
// hands the result to the notifier.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Submission, error) {
	t, err := s.teams.GetBySlug(ctx, in.TeamSlug)
	if err != nil {
		return nil, err
	}

	setup := in.Setup
	setup.normalize()
	if err := checkRequired(t, &setup); err != nil {
		return nil, err
	}

	u, err := s.resolveDriver(ctx, t, in)
	if err != nil {
		return nil, err
	}

	sub := &Submission{
		UserID: u.ID,
		TeamID: t.ID,
		Setup:  setup,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	sub.User = u

	if s.notifier != nil {
		s.notifier.Notify(t, u, sub)
	}

	return sub, nil
}

// Update applies a partial change to one submission of the team.
func (s *Service) Update(ctx context.Context, teamSlug string, id uuid.UUID, patch Patch) (*Submission, error) {
	t, err := s.teams.GetBySlug(ctx, teamSlug)
	if err != nil {
		return nil, err
	}
	return s.subs.Update(ctx, t.ID, id, patch.normalized())
}

// SetFavorite sets or clears the favorite flag. Repeating a call is harmless.
func (s *Service) SetFavorite(ctx context.Context, teamSlug string, id uuid.UUID, favorite bool) (*Submission, error) {
	return s.Update(ctx, teamSlug, id, Patch{IsFavorite: &favorite})
}

// Delete removes one submission of the team.
func (s *Service) Delete(ctx context.Context, teamSlug string, id uuid.UUID) error {
	t, err := s.teams.GetBySlug(ctx, teamSlug)
	if err != nil {
		return err
	}
	return s.subs.Delete(ctx, t.ID, id)
}

// BulkDelete removes the listed submissions that belong to the team and
// returns how many were deleted.
func (s *Service) BulkDelete(ctx context.Context, teamSlug string, ids []uuid.UUID) (int64, error) {
	t, err := s.teams.GetBySlug(ctx, teamSlug)
	if err != nil {
		return 0, err
	}
	return s.subs.DeleteMany(ctx, t.ID, ids)
}

// resolveDriver finds the driver by email or creates it. An existing driver
// gets non-empty names refreshed and, if it has no team yet, this team.
func (s *Service) resolveDriver(ctx context.Context, t *team.Team, in CreateInput) (*auth.User, error) {
	email := auth.NormalizeEmail(in.UserEmail)
	firstName := cleanText(in.FirstName)
	lastName := cleanText(in.LastName)

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, auth.ErrUserNotFound) {
		u = &auth.User{
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			TeamID:    &t.ID,
		}
		err = s.users.Create(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, auth.ErrDuplicateEmail) {
			return nil, fmt.Errorf("creating driver: %w", err)
		}
		// A concurrent first submission created the row; use it.
		u, err = s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up driver: %w", err)
	}

	var fields auth.UpdateFields
	if firstName != "" && firstName != u.FirstName {
		fields.FirstName = &firstName
	}
	if lastName != "" && lastName != u.LastName {
		fields.LastName = &lastName
	}
	if u.TeamID == nil {
		fields.TeamID = &t.ID
	}
	if fields == (auth.UpdateFields{}) {
		return u, nil
	}

	updated, err := s.users.Update(ctx, u.ID, fields)
	if err != nil {
		return nil, fmt.Errorf("updating driver: %w", err)
	}
	return updated, nil
}

func checkRequired(t *team.Team, setup *Setup) error {
	cfg := team.ResolveConfig(t)
	enabled := make(map[string]bool, len(cfg.FormConfig.EnabledFields))
	for _, name := range cfg.FormConfig.EnabledFields {
		enabled[name] = true
	}
	required := make(map[string]bool, len(cfg.FormConfig.RequiredFields))
	for _, name := range cfg.FormConfig.RequiredFields {
		required[name] = true
	}

	var missing []string
	for _, f := range Fields {
		if required[f.Name] && enabled[f.Name] && f.Value(setup) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
