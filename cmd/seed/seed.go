package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/team"
)

type seedFile struct {
	Teams       []seedTeam    `json:"teams"`
	SuperAdmins []seedManager `json:"superAdmins"`
}

type seedTeam struct {
	Slug            string                   `json:"slug"`
	Name            string                   `json:"name"`
	LogoURL         *string                  `json:"logoUrl"`
	PrimaryColor    string                   `json:"primaryColor"`
	EmailFromName   string                   `json:"emailFromName"`
	ManagerEmails   []string                 `json:"managerEmails"`
	FormConfig      *team.FormConfigOverride `json:"formConfig"`
	DropdownOptions team.DropdownOptions     `json:"dropdownOptions"`
	Managers        []seedManager            `json:"managers"`
}

type seedManager struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

func parseSeed(raw []byte) (*seedFile, error) {
	var f seedFile
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	var errs []error
	slugs := make(map[string]bool)
	for i, t := range f.Teams {
		if strings.TrimSpace(t.Slug) == "" || strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("teams[%d]: slug and name are required", i))
		}
		if slugs[t.Slug] {
			errs = append(errs, fmt.Errorf("teams[%d]: duplicate slug %q", i, t.Slug))
		}
		slugs[t.Slug] = true
		for j, m := range t.Managers {
			if strings.TrimSpace(m.Email) == "" {
				errs = append(errs, fmt.Errorf("teams[%d].managers[%d]: email is required", i, j))
			}
		}
	}
	for i, m := range f.SuperAdmins {
		if strings.TrimSpace(m.Email) == "" {
			errs = append(errs, fmt.Errorf("superAdmins[%d]: email is required", i))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &f, nil
}

type seeder struct {
	teams      team.Repository
	users      auth.UserRepository
	bcryptCost int
}

func (s *seeder) apply(ctx context.Context, f *seedFile) error {
	for _, st := range f.Teams {
		t := &team.Team{
			Slug:            st.Slug,
			Name:            st.Name,
			LogoURL:         st.LogoURL,
			PrimaryColor:    st.PrimaryColor,
			EmailFromName:   st.EmailFromName,
			ManagerEmails:   st.ManagerEmails,
			FormConfig:      st.FormConfig,
			DropdownOptions: st.DropdownOptions,
		}
		if err := s.teams.Upsert(ctx, t); err != nil {
			return fmt.Errorf("team %s: %w", st.Slug, err)
		}
		slog.Info("team upserted", "slug", t.Slug, "id", t.ID)

		for _, m := range st.Managers {
			if err := s.upsertManager(ctx, m, &t.ID, false); err != nil {
				return fmt.Errorf("team %s: %w", st.Slug, err)
			}
		}
	}

	for _, m := range f.SuperAdmins {
		if err := s.upsertManager(ctx, m, nil, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) upsertManager(ctx context.Context, m seedManager, teamID *uuid.UUID, superAdmin bool) error {
	u := &auth.User{
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		IsManager:    true,
		IsSuperAdmin: superAdmin,
		TeamID:       teamID,
	}
	if m.Password != "" {
		hash, err := auth.HashPassword(m.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		u.PasswordHash = &hash
	}

	if err := s.users.UpsertManager(ctx, u); err != nil {
		return fmt.Errorf("manager %s: %w", m.Email, err)
	}
	slog.Info("manager upserted", "email", u.Email, "superAdmin", superAdmin)
	return nil
}
