package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/api/response"
	"github.com/kartsetup/setupsheet/internal/api/validation"
	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/team"
)

// ManagerAuthenticator is the part of the auth service the login endpoints use.
type ManagerAuthenticator interface {
	Login(ctx context.Context, email, password, teamSlug string) (*auth.LoginResult, error)
	CheckManager(ctx context.Context, email string) (bool, error)
}

type managerResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	IsManager    bool    `json:"isManager"`
	IsSuperAdmin bool    `json:"isSuperAdmin"`
	TeamID       *string `json:"teamId"`
}

type loginResponse struct {
	User      managerResponse `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expiresAt"`
}

// AuthHandler handles manager login endpoints.
type AuthHandler struct {
	svc ManagerAuthenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc ManagerAuthenticator) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /auth/manager/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req validation.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateLogin(req); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password, req.TeamSlug)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotManager):
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Access denied: not a manager", requestID)
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", requestID)
		case errors.Is(err, team.ErrTeamNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
		case errors.Is(err, auth.ErrForbidden):
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this team", requestID)
		default:
			slog.Error("manager login failed", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", requestID)
		}
		return
	}

	u := result.User
	resp := loginResponse{
		User: managerResponse{
			ID:           u.ID.String(),
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			IsManager:    u.IsManager,
			IsSuperAdmin: u.IsSuperAdmin,
		},
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if u.TeamID != nil {
		teamID := u.TeamID.String()
		resp.User.TeamID = &teamID
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

// CheckManager handles GET /auth/manager/check/{email}.
func (h *AuthHandler) CheckManager(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	email, ok := emailParam(w, r, requestID)
	if !ok {
		return
	}

	isManager, err := h.svc.CheckManager(r.Context(), email)
	if err != nil {
		slog.Error("failed to check manager", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check manager status", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]bool{"isManager": isManager}, requestID)
}
