package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/team"
)

var (
	// ErrNotManager is returned when the email does not belong to a manager.
	ErrNotManager = errors.New("not a manager account")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrForbidden is returned when a manager tries to reach another team.
	ErrForbidden = errors.New("access to this team is not allowed")
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Service provides manager authentication and team access checks.
type Service struct {
	userRepo   UserRepository
	teamRepo   team.Repository
	tokens     *TokenIssuer
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(userRepo UserRepository, teamRepo team.Repository, tokens *TokenIssuer, bcryptCost int) *Service {
	return &Service{
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Login verifies a manager's email and password. When teamSlug is non-empty
// the manager must also be allowed on that team.
func (s *Service) Login(ctx context.Context, email, password, teamSlug string) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNotManager
		}
		return nil, fmt.Errorf("looking up manager: %w", err)
	}
	if !u.IsManager {
		return nil, ErrNotManager
	}
	if u.PasswordHash == nil || *u.PasswordHash == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	ok, legacy := VerifyPassword(*u.PasswordHash, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if legacy {
		s.upgradeHash(ctx, u, password)
	}

	if teamSlug != "" {
		t, err := s.teamRepo.GetBySlug(ctx, teamSlug)
		if err != nil {
			return nil, err
		}
		if err := CanAccessTeam(u.IsSuperAdmin, u.TeamID, t); err != nil {
			return nil, err
		}
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// CheckManager reports whether email belongs to a manager account.
func (s *Service) CheckManager(ctx context.Context, email string) (bool, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up manager: %w", err)
	}
	return u.IsManager, nil
}

// Authenticate resolves a bearer token to an Identity.
func (s *Service) Authenticate(raw string) (*Identity, error) {
	return s.tokens.Parse(raw)
}

// AuthorizeTeam resolves teamSlug and checks that identity may act on it.
func (s *Service) AuthorizeTeam(ctx context.Context, identity *Identity, teamSlug string) (*team.Team, error) {
	t, err := s.teamRepo.GetBySlug(ctx, teamSlug)
	if err != nil {
		return nil, err
	}
	if err := CanAccessTeam(identity.IsSuperAdmin, identity.TeamID, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CanAccessTeam grants superadmins every team and everyone else only their own.
func CanAccessTeam(superAdmin bool, teamID *uuid.UUID, t *team.Team) error {
	if superAdmin {
		return nil
	}
	if teamID == nil || *teamID != t.ID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) upgradeHash(ctx context.Context, u *User, password string) {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		slog.Warn("failed to re-hash legacy password", "userId", u.ID, "error", err)
		return
	}
	if _, err := s.userRepo.Update(ctx, u.ID, UpdateFields{PasswordHash: &hash}); err != nil {
		slog.Warn("failed to store upgraded password hash", "userId", u.ID, "error", err)
		return
	}
	u.PasswordHash = &hash
	slog.Info("upgraded legacy password hash", "userId", u.ID)
}
