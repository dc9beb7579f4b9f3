package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/submission"
)

type submissionRepo struct{ s *Store }

func (r *submissionRepo) Create(_ context.Context, sub *submission.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub.ID = uuid.New()
	sub.CreatedAt = r.s.tick()
	sub.UpdatedAt = sub.CreatedAt
	cp := *sub
	cp.User = nil
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *submissionRepo) GetByID(_ context.Context, teamID, id uuid.UUID) (*submission.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.submissions[id]
	if !ok || sub.TeamID != teamID {
		return nil, submission.ErrNotFound
	}
	return r.s.joined(sub), nil
}

func (r *submissionRepo) List(_ context.Context, teamID uuid.UUID, f submission.ListFilter) ([]submission.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email := strings.ToLower(strings.TrimSpace(f.Email))
	sessionType := submission.Normalize("sessionType", f.SessionType)

	out := []submission.Submission{}
	for _, sub := range r.s.submissions {
		if sub.TeamID != teamID {
			continue
		}
		if sessionType != "" && sub.Setup.SessionType != sessionType {
			continue
		}
		if f.Track != "" && sub.Setup.Track != f.Track {
			continue
		}
		if f.Championship != "" && sub.Setup.Championship != f.Championship {
			continue
		}
		if f.Division != "" && sub.Setup.Division != f.Division {
			continue
		}
		if f.FavoritesOnly && !sub.IsFavorite {
			continue
		}
		j := r.s.joined(sub)
		if email != "" && (j.User == nil || !strings.Contains(j.User.Email, email)) {
			continue
		}
		out = append(out, *j)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *submissionRepo) LastByUser(_ context.Context, teamID, userID uuid.UUID) (*submission.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var mine []submission.Submission
	for _, sub := range r.s.submissions {
		if sub.TeamID == teamID && sub.UserID == userID {
			mine = append(mine, *sub)
		}
	}
	if len(mine) == 0 {
		return nil, submission.ErrNotFound
	}
	sortNewestFirst(mine)
	return r.s.joined(&mine[0]), nil
}

func (r *submissionRepo) Update(_ context.Context, teamID, id uuid.UUID, patch submission.Patch) (*submission.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.submissions[id]
	if !ok || sub.TeamID != teamID {
		return nil, submission.ErrNotFound
	}
	if patch.Empty() {
		return r.s.joined(sub), nil
	}
	patch.Apply(&sub.Setup)
	if patch.IsFavorite != nil {
		sub.IsFavorite = *patch.IsFavorite
	}
	sub.UpdatedAt = r.s.tick()
	return r.s.joined(sub), nil
}

func (r *submissionRepo) Delete(_ context.Context, teamID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.submissions[id]
	if !ok || sub.TeamID != teamID {
		return submission.ErrNotFound
	}
	delete(r.s.submissions, id)
	return nil
}

func (r *submissionRepo) DeleteMany(_ context.Context, teamID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if sub, ok := r.s.submissions[id]; ok && sub.TeamID == teamID {
			delete(r.s.submissions, id)
			n++
		}
	}
	return n, nil
}

// joined copies sub and attaches its owner. Callers hold s.mu.
func (s *Store) joined(sub *submission.Submission) *submission.Submission {
	cp := *sub
	if u, ok := s.users[sub.UserID]; ok {
		owner := *u
		cp.User = &owner
	}
	return &cp
}

func sortNewestFirst(subs []submission.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
}
