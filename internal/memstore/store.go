// Package memstore keeps teams, users and submissions in memory. It
// satisfies the same repository interfaces as the PostgreSQL code and is
// used by tests.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

// Store holds every table behind one lock so joins stay consistent.
type Store struct {
	mu          sync.RWMutex
	teams       map[uuid.UUID]*team.Team
	users       map[uuid.UUID]*auth.User
	submissions map[uuid.UUID]*submission.Submission
	seq         int64
	now         func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		teams:       make(map[uuid.UUID]*team.Team),
		users:       make(map[uuid.UUID]*auth.User),
		submissions: make(map[uuid.UUID]*submission.Submission),
		now:         time.Now,
	}
}

// Teams returns a team.Repository view of the store.
func (s *Store) Teams() team.Repository { return &teamRepo{s} }

// Users returns an auth.UserRepository view of the store.
func (s *Store) Users() auth.UserRepository { return &userRepo{s} }

// Submissions returns a submission.Repository view of the store.
func (s *Store) Submissions() submission.Repository { return &submissionRepo{s} }

// tick returns strictly increasing timestamps so newest-first ordering is
// deterministic even within one clock tick. Callers hold s.mu.
func (s *Store) tick() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq) * time.Microsecond)
}
