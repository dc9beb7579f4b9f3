package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kartsetup/setupsheet/internal/api/handler"
	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/memstore"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

const testBcryptCost = 4

type countingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *countingNotifier) Notify(_ *team.Team, _ *auth.User, _ *submission.Submission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

type testEnv struct {
	teams      team.Repository
	users      auth.UserRepository
	authSvc    *auth.Service
	subSvc     *submission.Service
	notifier   *countingNotifier
	handler    *handler.SubmissionHandler
	team1      *team.Team
	team2      *team.Team
	token1     string // manager of team1
	superToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.New()
	ctx := context.Background()
	e := &testEnv{
		teams:    store.Teams(),
		users:    store.Users(),
		notifier: &countingNotifier{},
		team1:    &team.Team{Slug: "team1", Name: "Team One", PrimaryColor: "#E31837"},
		team2:    &team.Team{Slug: "team2", Name: "Team Two"},
	}
	require.NoError(t, e.teams.Create(ctx, e.team1))
	require.NoError(t, e.teams.Create(ctx, e.team2))

	e.authSvc = auth.NewService(e.users, e.teams, auth.NewTokenIssuer("test-secret", time.Hour), testBcryptCost)
	e.subSvc = submission.NewService(e.teams, e.users, store.Submissions(), e.notifier)
	e.handler = handler.NewSubmissionHandler(e.subSvc, e.authSvc)

	e.token1 = e.addManager(t, "coach@team1.com", "pw", false)
	e.superToken = e.addManager(t, "root@x.com", "pw", true)
	return e
}

func (e *testEnv) addManager(t *testing.T, email, password string, superAdmin bool) string {
	t.Helper()
	hash, err := auth.HashPassword(password, testBcryptCost)
	require.NoError(t, err)
	u := &auth.User{Email: email, PasswordHash: &hash, IsSuperAdmin: superAdmin}
	if !superAdmin {
		u.TeamID = &e.team1.ID
	}
	require.NoError(t, e.users.UpsertManager(context.Background(), u))

	res, err := e.authSvc.Login(context.Background(), email, password, "")
	require.NoError(t, err)
	return res.Token
}

func (e *testEnv) createSubmission(t *testing.T, email, teamSlug string) *submission.Submission {
	t.Helper()
	sub, err := e.subSvc.Create(context.Background(), submission.CreateInput{
		UserEmail: email,
		FirstName: "Ana",
		LastName:  "Silva",
		TeamSlug:  teamSlug,
		Setup:     validSetup(),
	})
	require.NoError(t, err)
	return sub
}

// serveAuthed runs h behind the token middleware.
func (e *testEnv) serveAuthed(h http.HandlerFunc, req *http.Request, w *httptest.ResponseRecorder, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	middleware.Auth(e.authSvc)(h).ServeHTTP(w, req)
}

func validSetup() submission.Setup {
	return submission.Setup{
		SessionType:      "Qualifying",
		Track:            "Orlando",
		Championship:     "Pro Tour",
		Division:         "KA100 Sr",
		EngineNumber:     "E-42",
		TyreModel:        "Mg Red",
		TyreAge:          "2",
		TyreColdPressure: "9.5",
		Chassis:          "OTK",
		Axle:             "N",
		RearHubsMaterial: "Magnesium",
		RearHubsLength:   "75",
		FrontHeight:      "Medium",
		BackHeight:       "Low",
		FrontBar:         "Nylon",
		Spindle:          "Gold",
		Caster:           "2",
		SeatPosition:     "1",
	}
}

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error object, got %v", env)
	return errObj["code"].(string)
}
