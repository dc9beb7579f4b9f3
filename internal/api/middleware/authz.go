package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kartsetup/setupsheet/internal/api/response"
	"github.com/kartsetup/setupsheet/internal/api/validation"
	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/team"
)

// TeamAuthorizer decides whether an identity may act on a team.
type TeamAuthorizer interface {
	AuthorizeTeam(ctx context.Context, identity *auth.Identity, teamSlug string) (*team.Team, error)
}

// AuthorizeTeam checks that the caller may manage teamSlug. On failure it
// writes the error response and returns false.
func AuthorizeTeam(w http.ResponseWriter, r *http.Request, authorizer TeamAuthorizer, teamSlug string) (*team.Team, bool) {
	requestID := GetRequestID(r.Context())

	identity := GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Manager token is required", requestID)
		return nil, false
	}

	if teamSlug == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "teamSlug", Message: "teamSlug is required"}}, requestID)
		return nil, false
	}

	t, err := authorizer.AuthorizeTeam(r.Context(), identity, teamSlug)
	switch {
	case err == nil:
		return t, true
	case errors.Is(err, team.ErrTeamNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
	case errors.Is(err, auth.ErrForbidden):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this team", requestID)
	default:
		slog.Error("failed to authorize team access", "error", err, "teamSlug", teamSlug)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check team access", requestID)
	}
	return nil, false
}
