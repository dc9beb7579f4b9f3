package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Meta holds metadata for every API response.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// ListMeta extends Meta with the number of returned items.
type ListMeta struct {
	Meta
	Total int `json:"total"`
}

// Error represents a structured API error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the standard API response wrapper.
type Envelope struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
	Meta  Meta   `json:"meta"`
}

// ListEnvelope is the response wrapper for list endpoints.
type ListEnvelope struct {
	Data  any      `json:"data"`
	Error *Error   `json:"error"`
	Meta  ListMeta `json:"meta"`
}

// NewMeta creates a Meta for requestID, generating one when it is empty.
func NewMeta(requestID string) Meta {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return Meta{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// JSON writes a JSON response with the given status code and envelope.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	writeJSON(w, status, env)
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, status int, data any, requestID string) {
	JSON(w, status, Envelope{Data: data, Meta: NewMeta(requestID)})
}

// SuccessList writes a successful list response with the item count.
func SuccessList(w http.ResponseWriter, status int, data any, total int, requestID string) {
	writeJSON(w, status, ListEnvelope{
		Data: data,
		Meta: ListMeta{Meta: NewMeta(requestID), Total: total},
	})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Attachment writes body as a downloadable file.
func Attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write attachment", "filename", filename, "error", err)
	}
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, code string, message string, requestID string) {
	ErrWithDetails(w, status, code, message, nil, requestID)
}

// ErrWithDetails writes an error JSON response with additional details.
func ErrWithDetails(w http.ResponseWriter, status int, code string, message string, details any, requestID string) {
	JSON(w, status, Envelope{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: NewMeta(requestID),
	})
}
