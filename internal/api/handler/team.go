package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/api/response"
	"github.com/kartsetup/setupsheet/internal/team"
)

type teamResponse struct {
	ID            string  `json:"id"`
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	LogoURL       *string `json:"logoUrl"`
	PrimaryColor  string  `json:"primaryColor"`
	EmailFromName string  `json:"emailFromName"`
}

type teamConfigResponse struct {
	ID              string               `json:"id"`
	Slug            string               `json:"slug"`
	Name            string               `json:"name"`
	LogoURL         *string              `json:"logoUrl"`
	PrimaryColor    string               `json:"primaryColor"`
	FormConfig      team.FormConfig      `json:"formConfig"`
	DropdownOptions team.DropdownOptions `json:"dropdownOptions"`
}

func toTeamResponse(t *team.Team) teamResponse {
	return teamResponse{
		ID:            t.ID.String(),
		Slug:          t.Slug,
		Name:          t.Name,
		LogoURL:       t.LogoURL,
		PrimaryColor:  t.Color(),
		EmailFromName: t.EmailFromName,
	}
}

// TeamHandler handles team discovery and configuration endpoints.
type TeamHandler struct {
	repo team.Repository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository) *TeamHandler {
	return &TeamHandler{repo: repo}
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teams, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams", requestID)
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Get handles GET /teams/{slug}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, toTeamResponse(t), middleware.GetRequestID(r.Context()))
}

// Config handles GET /teams/{slug}/config.
func (h *TeamHandler) Config(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}

	cfg := team.ResolveConfig(t)
	response.Success(w, http.StatusOK, teamConfigResponse{
		ID:              cfg.ID.String(),
		Slug:            cfg.Slug,
		Name:            cfg.Name,
		LogoURL:         cfg.LogoURL,
		PrimaryColor:    cfg.PrimaryColor,
		FormConfig:      cfg.FormConfig,
		DropdownOptions: cfg.DropdownOptions,
	}, middleware.GetRequestID(r.Context()))
}

func (h *TeamHandler) lookup(w http.ResponseWriter, r *http.Request) (*team.Team, bool) {
	requestID := middleware.GetRequestID(r.Context())
	slug := chi.URLParam(r, "slug")

	t, err := h.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return nil, false
		}
		slog.Error("failed to get team", "error", err, "slug", slug)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get team", requestID)
		return nil, false
	}
	return t, true
}
