package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/team"
)

type teamRepo struct{ s *Store }

func (r *teamRepo) Create(_ context.Context, t *team.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.teams {
		if existing.Slug == t.Slug {
			return team.ErrDuplicateSlug
		}
	}
	t.ID = uuid.New()
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.s.teams[t.ID] = &cp
	return nil
}

func (r *teamRepo) Upsert(ctx context.Context, t *team.Team) error {
	r.s.mu.Lock()
	for id, existing := range r.s.teams {
		if existing.Slug == t.Slug {
			t.ID = id
			t.CreatedAt = existing.CreatedAt
			t.UpdatedAt = r.s.tick()
			cp := *t
			r.s.teams[id] = &cp
			r.s.mu.Unlock()
			return nil
		}
	}
	r.s.mu.Unlock()
	return r.Create(ctx, t)
}

func (r *teamRepo) GetByID(_ context.Context, id uuid.UUID) (*team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *teamRepo) GetBySlug(_ context.Context, slug string) (*team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.teams {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (r *teamRepo) List(_ context.Context) ([]team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]team.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
