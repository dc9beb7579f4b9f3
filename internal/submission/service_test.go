package submission_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/memstore"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

type notification struct {
	team *team.Team
	user *auth.User
	sub  *submission.Submission
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) Notify(t *team.Team, u *auth.User, s *submission.Submission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{t, u, s})
}

type fixture struct {
	svc      *submission.Service
	users    auth.UserRepository
	teams    team.Repository
	notifier *recordingNotifier
	team1    *team.Team
	team2    *team.Team
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	f := &fixture{
		users:    store.Users(),
		teams:    store.Teams(),
		notifier: &recordingNotifier{},
		team1:    &team.Team{Slug: "team1", Name: "Team One"},
		team2:    &team.Team{Slug: "team2", Name: "Team Two"},
	}
	ctx := context.Background()
	require.NoError(t, f.teams.Create(ctx, f.team1))
	require.NoError(t, f.teams.Create(ctx, f.team2))

	f.svc = submission.NewService(f.teams, f.users, store.Submissions(), f.notifier)
	return f
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

func (f *fixture) create(t *testing.T, email, teamSlug string, mutate ...func(*submission.Setup)) *submission.Submission {
	t.Helper()
	setup := validSetup()
	for _, m := range mutate {
		m(&setup)
	}
	sub, err := f.svc.Create(context.Background(), submission.CreateInput{
		UserEmail: email,
		FirstName: "A",
		LastName:  "B",
		TeamSlug:  teamSlug,
		Setup:     setup,
	})
	require.NoError(t, err)
	return sub
}

// --- Create ---

func TestCreate_NewDriver(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	sub := f.create(t, "A@X.com", "team1")

	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.Equal(t, f.team1.ID, sub.TeamID)
	require.NotNil(t, sub.User)
	assert.Equal(t, "a@x.com", sub.User.Email)

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", u.FirstName)
	assert.Equal(t, "B", u.LastName)
	assert.False(t, u.IsManager)
	require.NotNil(t, u.TeamID)
	assert.Equal(t, f.team1.ID, *u.TeamID)
	assert.Equal(t, u.ID, sub.UserID)

	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, f.team1.ID, f.notifier.calls[0].team.ID)
	assert.Equal(t, sub.ID, f.notifier.calls[0].sub.ID)
}

func TestCreate_UnknownTeam(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Create(context.Background(), submission.CreateInput{
		UserEmail: "a@x.com", TeamSlug: "nope", Setup: validSetup(),
	})
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
	assert.Empty(t, f.notifier.calls)
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	f := setupService(t)
	setup := validSetup()
	setup.Track = "   "
	setup.Spindle = ""

	_, err := f.svc.Create(context.Background(), submission.CreateInput{
		UserEmail: "a@x.com", TeamSlug: "team1", Setup: setup,
	})

	var missing *submission.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"track", "spindle"}, missing.Fields)
	assert.Empty(t, f.notifier.calls)

	_, err = f.users.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound, "no driver should be created for a rejected submission")
}

func TestCreate_TeamOverrideRelaxesRequiredFields(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	relaxed := &team.Team{
		Slug:       "relaxed",
		Name:       "Relaxed",
		FormConfig: &team.FormConfigOverride{RequiredFields: []string{"track"}},
	}
	require.NoError(t, f.teams.Create(ctx, relaxed))

	_, err := f.svc.Create(ctx, submission.CreateInput{
		UserEmail: "a@x.com", TeamSlug: "relaxed", Setup: submission.Setup{Track: "Orlando"},
	})
	assert.NoError(t, err)
}

func TestCreate_DisabledFieldIsNotRequired(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	tm := &team.Team{
		Slug: "nospindle",
		Name: "No Spindle",
		FormConfig: &team.FormConfigOverride{
			EnabledFields:  []string{"track"},
			RequiredFields: []string{"track", "spindle"},
		},
	}
	require.NoError(t, f.teams.Create(ctx, tm))

	_, err := f.svc.Create(ctx, submission.CreateInput{
		UserEmail: "a@x.com", TeamSlug: "nospindle", Setup: submission.Setup{Track: "Orlando"},
	})
	assert.NoError(t, err)
}

func TestCreate_NormalizesEnumLabels(t *testing.T) {
	f := setupService(t)

	byLabel := f.create(t, "a@x.com", "team1", func(s *submission.Setup) { s.SessionType = "Practice 1" })
	byCode := f.create(t, "b@x.com", "team1", func(s *submission.Setup) { s.SessionType = "Practice1" })
	unknown := f.create(t, "c@x.com", "team1", func(s *submission.Setup) { s.SessionType = "Night Race" })

	assert.Equal(t, "Practice1", byLabel.Setup.SessionType)
	assert.Equal(t, byCode.Setup.SessionType, byLabel.Setup.SessionType)
	assert.Equal(t, "Night Race", unknown.Setup.SessionType)
}

func TestCreate_StripsMarkup(t *testing.T) {
	f := setupService(t)

	sub := f.create(t, "a@x.com", "team1", func(s *submission.Setup) {
		s.Observation = "<b>Loose</b> on exit & entry"
	})

	assert.Equal(t, "Loose on exit & entry", sub.Setup.Observation)
}

func TestCreate_FirstTeamWins(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.create(t, "a@x.com", "team1")
	second := f.create(t, "a@x.com", "team2")

	assert.Equal(t, f.team2.ID, second.TeamID)
	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u.TeamID)
	assert.Equal(t, f.team1.ID, *u.TeamID)
}

func TestCreate_BackfillsMissingTeam(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &auth.User{Email: "a@x.com", FirstName: "Old"}))

	f.create(t, "a@x.com", "team2")

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u.TeamID)
	assert.Equal(t, f.team2.ID, *u.TeamID)
	assert.Equal(t, "A", u.FirstName)
}

func TestCreate_EmptyNamesKeepExisting(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.create(t, "a@x.com", "team1")

	_, err := f.svc.Create(ctx, submission.CreateInput{
		UserEmail: "a@x.com", TeamSlug: "team1", Setup: validSetup(),
	})
	require.NoError(t, err)

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", u.FirstName)
	assert.Equal(t, "B", u.LastName)
}

func TestCreate_NilNotifier(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Teams().Create(ctx, &team.Team{Slug: "team1", Name: "T"}))
	svc := submission.NewService(store.Teams(), store.Users(), store.Submissions(), nil)

	_, err := svc.Create(ctx, submission.CreateInput{UserEmail: "a@x.com", TeamSlug: "team1", Setup: validSetup()})
	assert.NoError(t, err)
}

// --- List ---

func TestList_TenantIsolation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	s1 := f.create(t, "a@x.com", "team1")
	s2 := f.create(t, "a@x.com", "team2")

	list1, err := f.svc.List(ctx, "team1", submission.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list1, 1)
	assert.Equal(t, s1.ID, list1[0].ID)

	list2, err := f.svc.List(ctx, "team2", submission.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list2, 1)
	assert.Equal(t, s2.ID, list2[0].ID)
}

func TestList_NewestFirstWithUser(t *testing.T) {
	f := setupService(t)

	first := f.create(t, "a@x.com", "team1")
	second := f.create(t, "b@x.com", "team1")

	list, err := f.svc.List(context.Background(), "team1", submission.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.NotNil(t, list[0].User)
	assert.Equal(t, "b@x.com", list[0].User.Email)
}

func TestList_Filters(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.create(t, "alice@x.com", "team1", func(s *submission.Setup) { s.SessionType = "Race 1" })
	fav := f.create(t, "bob@x.com", "team1", func(s *submission.Setup) { s.Track = "Hamilton" })
	_, err := f.svc.SetFavorite(ctx, "team1", fav.ID, true)
	require.NoError(t, err)

	bySession, err := f.svc.List(ctx, "team1", submission.ListFilter{SessionType: "Race 1"})
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, "Race1", bySession[0].Setup.SessionType)

	byTrack, err := f.svc.List(ctx, "team1", submission.ListFilter{Track: "Hamilton"})
	require.NoError(t, err)
	assert.Len(t, byTrack, 1)

	byEmail, err := f.svc.List(ctx, "team1", submission.ListFilter{Email: "ALI"})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "alice@x.com", byEmail[0].User.Email)

	favorites, err := f.svc.List(ctx, "team1", submission.ListFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, fav.ID, favorites[0].ID)
}

func TestList_UnknownTeam(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.List(context.Background(), "nope", submission.ListFilter{})
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

// --- GetLastByEmail ---

func TestGetLastByEmail_ReturnsLatestForTeam(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.create(t, "a@x.com", "team1")
	latest := f.create(t, "a@x.com", "team1", func(s *submission.Setup) { s.Track = "Hamilton" })
	f.create(t, "a@x.com", "team2")

	got, err := f.svc.GetLastByEmail(ctx, "A@x.com", "team1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, "Hamilton", got.Setup.Track)
}

func TestGetLastByEmail_SoftFails(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.create(t, "a@x.com", "team1")

	got, err := f.svc.GetLastByEmail(ctx, "a@x.com", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.GetLastByEmail(ctx, "ghost@x.com", "team1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.GetLastByEmail(ctx, "a@x.com", "team2")
	require.NoError(t, err)
	assert.Nil(t, got, "another team's setup must not leak")
}

// --- Get / Update / Delete ---

func TestGet_ScopedToTeam(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	sub := f.create(t, "a@x.com", "team1")

	got, err := f.svc.Get(ctx, "team1", sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	require.NotNil(t, got.User)

	_, err = f.svc.Get(ctx, "team2", sub.ID)
	assert.ErrorIs(t, err, submission.ErrNotFound)

	_, err = f.svc.Get(ctx, "team1", uuid.New())
	assert.ErrorIs(t, err, submission.ErrNotFound)
}

func TestUpdate_PartialAndNormalized(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	sub := f.create(t, "a@x.com", "team1")

	label := " Warm Up "
	track := "<i>Hamilton</i>"
	got, err := f.svc.Update(ctx, "team1", sub.ID, submission.Patch{SessionType: &label, Track: &track})
	require.NoError(t, err)

	assert.Equal(t, "WarmUp", got.Setup.SessionType)
	assert.Equal(t, "Hamilton", got.Setup.Track)
	assert.Equal(t, "OTK", got.Setup.Chassis)
	assert.Equal(t, " Warm Up ", label, "caller's patch must not be modified")
}

func TestUpdate_OtherTeamIsNotFound(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	sub := f.create(t, "a@x.com", "team1")

	track := "Hamilton"
	_, err := f.svc.Update(ctx, "team2", sub.ID, submission.Patch{Track: &track})
	assert.ErrorIs(t, err, submission.ErrNotFound)

	got, err := f.svc.Get(ctx, "team1", sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Orlando", got.Setup.Track)
}

func TestSetFavorite_Idempotent(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	sub := f.create(t, "a@x.com", "team1")

	for range 2 {
		got, err := f.svc.SetFavorite(ctx, "team1", sub.ID, true)
		require.NoError(t, err)
		assert.True(t, got.IsFavorite)
	}

	got, err := f.svc.SetFavorite(ctx, "team1", sub.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)
}

func TestDelete_ScopedToTeam(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	sub := f.create(t, "a@x.com", "team1")

	err := f.svc.Delete(ctx, "team2", sub.ID)
	assert.ErrorIs(t, err, submission.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, "team1", sub.ID))

	_, err = f.svc.Get(ctx, "team1", sub.ID)
	assert.ErrorIs(t, err, submission.ErrNotFound)
}

func TestBulkDelete_OnlyOwnTeam(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	a := f.create(t, "a@x.com", "team1")
	b := f.create(t, "b@x.com", "team1")
	keep := f.create(t, "c@x.com", "team1")
	foreign := f.create(t, "d@x.com", "team2")

	n, err := f.svc.BulkDelete(ctx, "team1", []uuid.UUID{a.ID, b.ID, foreign.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := f.svc.List(ctx, "team1", submission.ListFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ID)

	_, err = f.svc.Get(ctx, "team2", foreign.ID)
	assert.NoError(t, err)
}

func TestBulkDelete_UnknownTeam(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.BulkDelete(context.Background(), "nope", []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}
