package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/api/response"
	"github.com/kartsetup/setupsheet/internal/api/validation"
	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/pdf"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

const maxBodyBytes = 1 << 20

type createSubmissionRequest struct {
	UserEmail string `json:"userEmail"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	TeamSlug  string `json:"teamSlug"`
	submission.Setup
}

type bulkDeleteRequest struct {
	IDs      []string `json:"ids"`
	TeamSlug string   `json:"teamSlug"`
}

type favoriteRequest struct {
	IsFavorite *bool `json:"isFavorite"`
}

type userSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsManager bool   `json:"isManager"`
}

type submissionResponse struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	TeamID string `json:"teamId"`
	submission.Setup
	IsFavorite bool         `json:"isFavorite"`
	CreatedAt  string       `json:"createdAt"`
	UpdatedAt  string       `json:"updatedAt"`
	User       *userSummary `json:"user"`
}

func toUserSummary(u *auth.User) *userSummary {
	if u == nil {
		return nil
	}
	return &userSummary{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsManager: u.IsManager,
	}
}

func toSubmissionResponse(s *submission.Submission) submissionResponse {
	return submissionResponse{
		ID:         s.ID.String(),
		UserID:     s.UserID.String(),
		TeamID:     s.TeamID.String(),
		Setup:      s.Setup,
		IsFavorite: s.IsFavorite,
		CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.UTC().Format(time.RFC3339),
		User:       toUserSummary(s.User),
	}
}

// SubmissionHandler handles the submission endpoints.
type SubmissionHandler struct {
	svc   *submission.Service
	authz middleware.TeamAuthorizer
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(svc *submission.Service, authz middleware.TeamAuthorizer) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, authz: authz}
}

// Create handles POST /submissions.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateSubmission(validation.CreateSubmissionRequest{
		UserEmail: req.UserEmail,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TeamSlug:  req.TeamSlug,
	}, &req.Setup)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	sub, err := h.svc.Create(r.Context(), submission.CreateInput{
		UserEmail: req.UserEmail,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TeamSlug:  req.TeamSlug,
		Setup:     req.Setup,
	})
	if err != nil {
		h.writeError(w, err, requestID, "failed to create submission")
		return
	}

	response.Success(w, http.StatusCreated, toSubmissionResponse(sub), requestID)
}

// Last handles GET /submissions/last/{email}. It answers null when the team,
// the driver or a previous submission is unknown.
func (h *SubmissionHandler) Last(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamSlug := r.URL.Query().Get("teamSlug")
	if teamSlug == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "teamSlug", Message: "teamSlug is required"}}, requestID)
		return
	}

	email, ok := emailParam(w, r, requestID)
	if !ok {
		return
	}

	sub, err := h.svc.GetLastByEmail(r.Context(), email, teamSlug)
	if err != nil {
		h.writeError(w, err, requestID, "failed to fetch last submission")
		return
	}
	if sub == nil {
		response.Success(w, http.StatusOK, nil, requestID)
		return
	}

	response.Success(w, http.StatusOK, toSubmissionResponse(sub), requestID)
}

// List handles GET /submissions.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := middleware.AuthorizeTeam(w, r, h.authz, r.URL.Query().Get("teamSlug"))
	if !ok {
		return
	}

	subs, err := h.svc.List(r.Context(), t.Slug, parseListFilter(r))
	if err != nil {
		h.writeError(w, err, requestID, "failed to list submissions")
		return
	}

	items := make([]submissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, toSubmissionResponse(&subs[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Get handles GET /submissions/{id}.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, id, ok := h.scoped(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.Get(r.Context(), t.Slug, id)
	if err != nil {
		h.writeError(w, err, requestID, "failed to get submission")
		return
	}

	response.Success(w, http.StatusOK, toSubmissionResponse(sub), requestID)
}

// PDF handles GET /submissions/{id}/pdf.
func (h *SubmissionHandler) PDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, id, ok := h.scoped(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.Get(r.Context(), t.Slug, id)
	if err != nil {
		h.writeError(w, err, requestID, "failed to get submission")
		return
	}

	doc, err := pdf.Render(t, sub)
	if err != nil {
		slog.Error("failed to render setup sheet", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render PDF", requestID)
		return
	}

	response.Attachment(w, "application/pdf", "setup-"+id.String()+".pdf", doc)
}

// Update handles PUT /submissions/{id}.
func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, id, ok := h.scoped(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var patch submission.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidatePatch(&patch); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	sub, err := h.svc.Update(r.Context(), t.Slug, id, patch)
	if err != nil {
		h.writeError(w, err, requestID, "failed to update submission")
		return
	}

	response.Success(w, http.StatusOK, toSubmissionResponse(sub), requestID)
}

// Favorite handles PATCH /submissions/{id}/favorite.
func (h *SubmissionHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, id, ok := h.scoped(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}
	if req.IsFavorite == nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "isFavorite", Message: "isFavorite is required"}}, requestID)
		return
	}

	sub, err := h.svc.SetFavorite(r.Context(), t.Slug, id, *req.IsFavorite)
	if err != nil {
		h.writeError(w, err, requestID, "failed to update favorite flag")
		return
	}

	response.Success(w, http.StatusOK, toSubmissionResponse(sub), requestID)
}

// Delete handles DELETE /submissions/{id}.
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, id, ok := h.scoped(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), t.Slug, id); err != nil {
		h.writeError(w, err, requestID, "failed to delete submission")
		return
	}

	response.NoContent(w)
}

// BulkDelete handles POST /submissions/bulk-delete.
func (h *SubmissionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}
	if req.TeamSlug == "" {
		req.TeamSlug = r.URL.Query().Get("teamSlug")
	}

	fieldErrors := validation.ValidateBulkDelete(validation.BulkDeleteRequest{
		IDs:      req.IDs,
		TeamSlug: req.TeamSlug,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t, ok := middleware.AuthorizeTeam(w, r, h.authz, req.TeamSlug)
	if !ok {
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	deleted, err := h.svc.BulkDelete(r.Context(), t.Slug, ids)
	if err != nil {
		h.writeError(w, err, requestID, "failed to bulk delete submissions")
		return
	}

	response.Success(w, http.StatusOK, map[string]int64{"deleted": deleted}, requestID)
}

// scoped authorizes the teamSlug query parameter and parses the {id} segment.
func (h *SubmissionHandler) scoped(w http.ResponseWriter, r *http.Request) (*team.Team, uuid.UUID, bool) {
	t, ok := middleware.AuthorizeTeam(w, r, h.authz, r.URL.Query().Get("teamSlug"))
	if !ok {
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", middleware.GetRequestID(r.Context()))
		return nil, uuid.Nil, false
	}

	return t, id, true
}

func (h *SubmissionHandler) writeError(w http.ResponseWriter, err error, requestID, logMsg string) {
	var missing *submission.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		details := make([]validation.FieldError, 0, len(missing.Fields))
		for _, f := range missing.Fields {
			details = append(details, validation.FieldError{Field: f, Message: f + " is required"})
		}
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, requestID)
	case errors.Is(err, team.ErrTeamNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
	case errors.Is(err, submission.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Submission not found", requestID)
	default:
		slog.Error(logMsg, "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
	}
}

// emailParam returns the decoded {email} path segment. chi matches on the raw
// path, so clients that escape "@" as %40 arrive here still encoded.
func emailParam(w http.ResponseWriter, r *http.Request, requestID string) (string, bool) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "email", Message: "email is not a valid path segment"}}, requestID)
		return "", false
	}
	return email, true
}

func parseListFilter(r *http.Request) submission.ListFilter {
	q := r.URL.Query()
	favorites, _ := strconv.ParseBool(q.Get("favorites"))
	return submission.ListFilter{
		SessionType:   q.Get("sessionType"),
		Track:         q.Get("track"),
		Championship:  q.Get("championship"),
		Division:      q.Get("division"),
		Email:         q.Get("email"),
		FavoritesOnly: favorites,
	}
}
