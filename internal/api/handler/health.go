package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/api/response"
)

// DBPinger reports whether the database answers.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request. A failing database degrades
// the status but the endpoint still answers 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connected := false
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		connected = h.db.Ping(ctx) == nil
		cancel()
	}

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	response.Success(w, http.StatusOK, healthData{
		Status:   status,
		Version:  h.version,
		Database: databaseStatus{Connected: connected},
	}, middleware.GetRequestID(r.Context()))
}
