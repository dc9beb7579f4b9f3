package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/auth"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = auth.NormalizeEmail(u.Email)
	if r.s.userByEmail(u.Email) != nil {
		return auth.ErrDuplicateEmail
	}
	u.ID = uuid.New()
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u := r.s.userByEmail(auth.NormalizeEmail(email))
	if u == nil {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) Update(_ context.Context, id uuid.UUID, f auth.UpdateFields) (*auth.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	if f.FirstName != nil {
		u.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		u.LastName = *f.LastName
	}
	if f.TeamID != nil {
		teamID := *f.TeamID
		u.TeamID = &teamID
	}
	if f.PasswordHash != nil {
		hash := *f.PasswordHash
		u.PasswordHash = &hash
	}
	u.UpdatedAt = r.s.tick()
	cp := *u
	return &cp, nil
}

func (r *userRepo) UpsertManager(_ context.Context, u *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = auth.NormalizeEmail(u.Email)
	u.IsManager = true
	if existing := r.s.userByEmail(u.Email); existing != nil {
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		if u.PasswordHash == nil {
			u.PasswordHash = existing.PasswordHash
		}
	} else {
		u.ID = uuid.New()
		u.CreatedAt = r.s.tick()
	}
	u.UpdatedAt = r.s.tick()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) ListManagers(_ context.Context, teamID uuid.UUID) ([]auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []auth.User{}
	for _, u := range r.s.users {
		if u.IsManager && u.TeamID != nil && *u.TeamID == teamID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// userByEmail expects a normalized address. Callers hold s.mu.
func (s *Store) userByEmail(email string) *auth.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}
