package handler

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/api/response"
	"github.com/kartsetup/setupsheet/internal/submission"
)

// Export handles GET /submissions/export. It accepts the same filters as List
// and answers with a CSV file using display labels for enum values.
func (h *SubmissionHandler) Export(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := middleware.AuthorizeTeam(w, r, h.authz, r.URL.Query().Get("teamSlug"))
	if !ok {
		return
	}

	subs, err := h.svc.List(r.Context(), t.Slug, parseListFilter(r))
	if err != nil {
		h.writeError(w, err, requestID, "failed to list submissions for export")
		return
	}

	body, err := encodeCSV(subs)
	if err != nil {
		slog.Error("failed to encode submissions CSV", "error", err, "teamSlug", t.Slug)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export submissions", requestID)
		return
	}

	filename := t.Slug + "-submissions-" + time.Now().UTC().Format("20060102") + ".csv"
	response.Attachment(w, "text/csv; charset=utf-8", filename, body)
}

func encodeCSV(subs []submission.Submission) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := []string{"Date", "Driver", "Email", "Favorite"}
	for _, f := range submission.Fields {
		header = append(header, f.Label)
	}
	if err := cw.Write(header); err != nil {
		return nil, err
	}

	for i := range subs {
		s := &subs[i]
		driver, email := "", ""
		if s.User != nil {
			driver, email = s.User.FullName(), s.User.Email
		}
		favorite := "no"
		if s.IsFavorite {
			favorite = "yes"
		}

		record := []string{s.CreatedAt.UTC().Format(time.RFC3339), csvCell(driver), csvCell(email), favorite}
		for _, f := range submission.Fields {
			record = append(record, csvCell(submission.Label(f.Name, f.Value(&s.Setup))))
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvCell keeps spreadsheet applications from evaluating driver text as a
// formula.
func csvCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
