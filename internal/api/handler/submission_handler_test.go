package handler_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBody(t *testing.T, overrides map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(validSetup())
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	body["userEmail"] = "a@x.com"
	body["firstName"] = "A"
	body["lastName"] = "B"
	body["teamSlug"] = "team1"
	for k, v := range overrides {
		body[k] = v
	}

	out, err := json.Marshal(body)
	require.NoError(t, err)
	return out
}

// ===== POST /submissions =====

func TestSubmissionCreate_Success(t *testing.T) {
	e := newTestEnv(t)

	body := createBody(t, map[string]interface{}{"sessionType": "Practice 1"})
	req, w := makeChiRequest(http.MethodPost, "/submissions", body, nil)

	e.handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := parseEnvelope(t, w)
	assert.Nil(t, env["error"])
	data := env["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, e.team1.ID.String(), data["teamId"])
	assert.Equal(t, "Practice1", data["sessionType"])
	assert.Equal(t, "Orlando", data["track"])
	assert.Equal(t, false, data["isFavorite"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, 1, e.notifier.count)
}

func TestSubmissionCreate_IgnoresInjectedIdentity(t *testing.T) {
	e := newTestEnv(t)
	forged := uuid.New().String()

	body := createBody(t, map[string]interface{}{
		"id":        forged,
		"userId":    forged,
		"createdAt": "2001-01-01T00:00:00Z",
	})
	req, w := makeChiRequest(http.MethodPost, "/submissions", body, nil)

	e.handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.NotEqual(t, forged, data["id"])
	assert.NotEqual(t, forged, data["userId"])
	assert.NotEqual(t, "2001-01-01T00:00:00Z", data["createdAt"])
}

func TestSubmissionCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]interface{}
		field     string
	}{
		{"missing email", map[string]interface{}{"userEmail": ""}, "userEmail"},
		{"bad email", map[string]interface{}{"userEmail": "not-an-email"}, "userEmail"},
		{"missing team", map[string]interface{}{"teamSlug": ""}, "teamSlug"},
		{"too long", map[string]interface{}{"observation": strings.Repeat("x", 2001)}, "observation"},
		{"required setup field", map[string]interface{}{"track": ""}, "track"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			req, w := makeChiRequest(http.MethodPost, "/submissions", createBody(t, tt.overrides), nil)

			e.handler.Create(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := parseEnvelope(t, w)
			errObj := env["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
			details := errObj["details"].([]interface{})
			var fields []string
			for _, d := range details {
				fields = append(fields, d.(map[string]interface{})["field"].(string))
			}
			assert.Contains(t, fields, tt.field)
			assert.Zero(t, e.notifier.count)
		})
	}
}

func TestSubmissionCreate_InvalidJSON(t *testing.T) {
	e := newTestEnv(t)
	req, w := makeChiRequest(http.MethodPost, "/submissions", []byte("{nope"), nil)

	e.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", errorCode(t, w))
}

func TestSubmissionCreate_UnknownTeam(t *testing.T) {
	e := newTestEnv(t)
	body := createBody(t, map[string]interface{}{"teamSlug": "nope"})
	req, w := makeChiRequest(http.MethodPost, "/submissions", body, nil)

	e.handler.Create(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

// ===== GET /submissions/last/{email} =====

func TestSubmissionLast(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")

	req, w := makeChiRequest(http.MethodGet, "/submissions/last/a@x.com?teamSlug=team1", nil,
		map[string]string{"email": "a@x.com"})
	e.handler.Last(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, sub.ID.String(), data["id"])
}

func TestSubmissionLast_DecodesEscapedEmail(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")

	req, w := makeChiRequest(http.MethodGet, "/submissions/last/a%40x.com?teamSlug=team1", nil,
		map[string]string{"email": "a%40x.com"})
	e.handler.Last(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, sub.ID.String(), data["id"])
}

func TestSubmissionLast_BadEscape(t *testing.T) {
	e := newTestEnv(t)

	req, w := makeChiRequest(http.MethodGet, "/submissions/last/bad?teamSlug=team1", nil,
		map[string]string{"email": "a%zzx.com"})
	e.handler.Last(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestSubmissionLast_NullForOtherTeamOrUnknown(t *testing.T) {
	e := newTestEnv(t)
	e.createSubmission(t, "a@x.com", "team1")

	for _, path := range []string{
		"/submissions/last/a@x.com?teamSlug=team2",
		"/submissions/last/a@x.com?teamSlug=missing",
	} {
		req, w := makeChiRequest(http.MethodGet, path, nil, map[string]string{"email": "a@x.com"})
		e.handler.Last(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		env := parseEnvelope(t, w)
		assert.Nil(t, env["data"], path)
		assert.Nil(t, env["error"], path)
	}
}

func TestSubmissionLast_RequiresTeamSlug(t *testing.T) {
	e := newTestEnv(t)
	req, w := makeChiRequest(http.MethodGet, "/submissions/last/a@x.com", nil, map[string]string{"email": "a@x.com"})

	e.handler.Last(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===== GET /submissions =====

func TestSubmissionList_ScopedToTeam(t *testing.T) {
	e := newTestEnv(t)
	mine := e.createSubmission(t, "a@x.com", "team1")
	e.createSubmission(t, "b@x.com", "team2")

	req, w := makeChiRequest(http.MethodGet, "/submissions?teamSlug=team1", nil, nil)
	e.serveAuthed(e.handler.List, req, w, e.token1)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	items := env["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID.String(), items[0].(map[string]interface{})["id"])
	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
}

func TestSubmissionList_Filters(t *testing.T) {
	e := newTestEnv(t)
	e.createSubmission(t, "alice@x.com", "team1")
	e.createSubmission(t, "bob@x.com", "team1")

	req, w := makeChiRequest(http.MethodGet, "/submissions?teamSlug=team1&email=bob", nil, nil)
	e.serveAuthed(e.handler.List, req, w, e.token1)

	require.Equal(t, http.StatusOK, w.Code)
	items := parseEnvelope(t, w)["data"].([]interface{})
	require.Len(t, items, 1)
	user := items[0].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "bob@x.com", user["email"])
}

func TestSubmissionList_AccessControl(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		token  func(e *testEnv) string
		status int
	}{
		{"no token", "/submissions?teamSlug=team1", func(*testEnv) string { return "" }, http.StatusUnauthorized},
		{"bad token", "/submissions?teamSlug=team1", func(*testEnv) string { return "garbage" }, http.StatusUnauthorized},
		{"other team", "/submissions?teamSlug=team2", func(e *testEnv) string { return e.token1 }, http.StatusForbidden},
		{"missing slug", "/submissions", func(e *testEnv) string { return e.token1 }, http.StatusBadRequest},
		{"unknown team", "/submissions?teamSlug=nope", func(e *testEnv) string { return e.superToken }, http.StatusNotFound},
		{"superadmin", "/submissions?teamSlug=team2", func(e *testEnv) string { return e.superToken }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			req, w := makeChiRequest(http.MethodGet, tt.path, nil, nil)

			e.serveAuthed(e.handler.List, req, w, tt.token(e))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

// ===== GET/PUT/DELETE /submissions/{id} =====

func TestSubmissionGet(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")
	id := sub.ID.String()

	req, w := makeChiRequest(http.MethodGet, "/submissions/"+id+"?teamSlug=team1", nil, map[string]string{"id": id})
	e.serveAuthed(e.handler.Get, req, w, e.token1)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, id, data["id"])
}

func TestSubmissionGet_OtherTeamIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team2")
	id := sub.ID.String()

	req, w := makeChiRequest(http.MethodGet, "/submissions/"+id+"?teamSlug=team1", nil, map[string]string{"id": id})
	e.serveAuthed(e.handler.Get, req, w, e.token1)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionGet_InvalidID(t *testing.T) {
	e := newTestEnv(t)

	req, w := makeChiRequest(http.MethodGet, "/submissions/nope?teamSlug=team1", nil, map[string]string{"id": "nope"})
	e.serveAuthed(e.handler.Get, req, w, e.token1)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}

func TestSubmissionUpdate(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")
	id := sub.ID.String()

	body, _ := json.Marshal(map[string]interface{}{"track": "Hamilton", "sessionType": "Race 2"})
	req, w := makeChiRequest(http.MethodPut, "/submissions/"+id+"?teamSlug=team1", body, map[string]string{"id": id})
	e.serveAuthed(e.handler.Update, req, w, e.token1)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Hamilton", data["track"])
	assert.Equal(t, "Race2", data["sessionType"])
	assert.Equal(t, "OTK", data["chassis"])
}

func TestSubmissionUpdate_TooLong(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")
	id := sub.ID.String()

	body, _ := json.Marshal(map[string]interface{}{"observation": strings.Repeat("x", 2001)})
	req, w := makeChiRequest(http.MethodPut, "/submissions/"+id+"?teamSlug=team1", body, map[string]string{"id": id})
	e.serveAuthed(e.handler.Update, req, w, e.token1)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestSubmissionFavorite(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")
	id := sub.ID.String()

	for range 2 {
		body := []byte(`{"isFavorite": true}`)
		req, w := makeChiRequest(http.MethodPatch, "/submissions/"+id+"/favorite?teamSlug=team1", body, map[string]string{"id": id})
		e.serveAuthed(e.handler.Favorite, req, w, e.token1)

		require.Equal(t, http.StatusOK, w.Code)
		data := parseEnvelope(t, w)["data"].(map[string]interface{})
		assert.Equal(t, true, data["isFavorite"])
	}

	req, w := makeChiRequest(http.MethodPatch, "/submissions/"+id+"/favorite?teamSlug=team1", []byte(`{}`), map[string]string{"id": id})
	e.serveAuthed(e.handler.Favorite, req, w, e.token1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionDelete(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")
	id := sub.ID.String()

	req, w := makeChiRequest(http.MethodDelete, "/submissions/"+id+"?teamSlug=team1", nil, map[string]string{"id": id})
	e.serveAuthed(e.handler.Delete, req, w, e.token1)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req, w = makeChiRequest(http.MethodDelete, "/submissions/"+id+"?teamSlug=team1", nil, map[string]string{"id": id})
	e.serveAuthed(e.handler.Delete, req, w, e.token1)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionDelete_OtherTeamForbidden(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team2")
	id := sub.ID.String()

	req, w := makeChiRequest(http.MethodDelete, "/submissions/"+id+"?teamSlug=team2", nil, map[string]string{"id": id})
	e.serveAuthed(e.handler.Delete, req, w, e.token1)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ===== POST /submissions/bulk-delete =====

func TestSubmissionBulkDelete_OnlyOwnTeam(t *testing.T) {
	e := newTestEnv(t)
	a := e.createSubmission(t, "a@x.com", "team1")
	b := e.createSubmission(t, "b@x.com", "team1")
	foreign := e.createSubmission(t, "c@x.com", "team2")

	body, _ := json.Marshal(map[string]interface{}{
		"ids":      []string{a.ID.String(), b.ID.String(), foreign.ID.String()},
		"teamSlug": "team1",
	})
	req, w := makeChiRequest(http.MethodPost, "/submissions/bulk-delete", body, nil)
	e.serveAuthed(e.handler.BulkDelete, req, w, e.token1)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["deleted"])

	req, w = makeChiRequest(http.MethodGet, "/submissions?teamSlug=team2", nil, nil)
	e.serveAuthed(e.handler.List, req, w, e.superToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parseEnvelope(t, w)["data"].([]interface{}), 1)
}

func TestSubmissionBulkDelete_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty ids", `{"ids": [], "teamSlug": "team1"}`},
		{"bad id", `{"ids": ["nope"], "teamSlug": "team1"}`},
		{"missing team", `{"ids": ["` + uuid.New().String() + `"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			req, w := makeChiRequest(http.MethodPost, "/submissions/bulk-delete", []byte(tt.body), nil)

			e.serveAuthed(e.handler.BulkDelete, req, w, e.token1)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
		})
	}
}

func TestSubmissionBulkDelete_OtherTeamForbidden(t *testing.T) {
	e := newTestEnv(t)
	foreign := e.createSubmission(t, "c@x.com", "team2")

	body, _ := json.Marshal(map[string]interface{}{"ids": []string{foreign.ID.String()}, "teamSlug": "team2"})
	req, w := makeChiRequest(http.MethodPost, "/submissions/bulk-delete", body, nil)
	e.serveAuthed(e.handler.BulkDelete, req, w, e.token1)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ===== GET /submissions/{id}/pdf =====

func TestSubmissionPDF(t *testing.T) {
	e := newTestEnv(t)
	sub := e.createSubmission(t, "a@x.com", "team1")
	id := sub.ID.String()

	req, w := makeChiRequest(http.MethodGet, "/submissions/"+id+"/pdf?teamSlug=team1", nil, map[string]string{"id": id})
	e.serveAuthed(e.handler.PDF, req, w, e.token1)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, w.Header().Get("Content-Disposition"), id)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}
