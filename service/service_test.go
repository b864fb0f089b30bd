package service

import (
	"conference-app/cache"
	"conference-app/database"
	apperrors "conference-app/errors"
	"conference-app/keys"
	"conference-app/model"
	"conference-app/tasks"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice  = model.Identity{UserId: "alice", Email: "alice@example.com", Nickname: "alice", Role: model.ROLE_USER}
	bob    = model.Identity{UserId: "bob", Email: "bob@example.com", Nickname: "bob", Role: model.ROLE_USER}
	nobody = model.Identity{}
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fixture struct {
	svc    *Service
	store  *database.MemoryStore
	cache  *cache.MemoryCache
	queue  *tasks.Queue
	mailer *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	logger, _ := test.NewNullLogger()
	f := &fixture{
		store:  database.NewMemoryStore(),
		cache:  cache.NewMemoryCache(),
		mailer: &recordingMailer{},
	}
	f.queue = tasks.NewQueue(tasks.QueueConfig{Workers: 1, MaxAttempts: 1}, logger)
	f.svc = New(f.store, f.cache, f.queue, f.mailer, logger)
	f.svc.RegisterTasks(f.queue)
	f.queue.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		f.queue.Stop(ctx)
	})
	return f
}

func (f *fixture) conference(t *testing.T, owner model.Identity, name string, maxAttendees int) string {
	form, err := f.svc.CreateConference(context.Background(), owner, model.ConferenceForm{
		Name:         name,
		City:         "London",
		StartDate:    "2024-06-01",
		MaxAttendees: maxAttendees,
	})
	require.NoError(t, err)
	return form.WebsafeKey
}

func (f *fixture) speaker(t *testing.T, name string) string {
	form, err := f.svc.CreateSpeaker(context.Background(), model.SpeakerForm{Name: name})
	require.NoError(t, err)
	return form.WebsafeKey
}

func (f *fixture) seats(t *testing.T, token string) int {
	form, err := f.svc.GetConference(context.Background(), token)
	require.NoError(t, err)
	return form.SeatsAvailable
}

func assertKind(t *testing.T, kind apperrors.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "unexpected error: %v", err)
}

func TestKeyResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	confKey := f.conference(t, alice, "GopherCon", 10)
	speakerKey := f.speaker(t, "ada lovelace")

	_, err := f.svc.GetConference(ctx, "not-a-key")
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.svc.GetConference(ctx, keys.Encode(keys.KindConference, uuid.NewString()))
	assertKind(t, apperrors.KindNotFound, err)

	_, err = f.svc.GetConference(ctx, speakerKey)
	assertKind(t, apperrors.KindNotFound, err)
	assert.Contains(t, err.Error(), "refers to a speaker")

	conf, err := f.svc.GetConference(ctx, confKey)
	require.NoError(t, err)
	assert.Equal(t, confKey, conf.WebsafeKey)
}

func TestCreateConference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		conf, err := f.svc.CreateConference(ctx, alice, model.ConferenceForm{Name: "Minimal"})
		require.NoError(t, err)
		assert.Equal(t, DEFAULT_CITY, conf.City)
		assert.Equal(t, []string{"Default", "Topic"}, conf.Topics)
		assert.Equal(t, 0, conf.MaxAttendees)
		assert.Equal(t, 0, conf.SeatsAvailable)
		assert.Equal(t, 0, conf.Month)
		assert.Equal(t, "alice", conf.OrganizerUserId)
		assert.Equal(t, "alice", conf.OrganizerDisplayName)
	})

	t.Run("seats and month", func(t *testing.T) {
		conf, err := f.svc.CreateConference(ctx, alice, model.ConferenceForm{
			Name: "Full", MaxAttendees: 10, StartDate: "2024-06-01T00:00:00", EndDate: "2024-06-03",
		})
		require.NoError(t, err)
		assert.Equal(t, 10, conf.SeatsAvailable)
		assert.Equal(t, 6, conf.Month)
		assert.Equal(t, "2024-06-01", conf.StartDate)
		assert.Equal(t, "2024-06-03", conf.EndDate)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.CreateConference(ctx, alice, model.ConferenceForm{Name: "  "})
		assertKind(t, apperrors.KindBadRequest, err)
		assert.Contains(t, err.Error(), "'name' field required")

		_, err = f.svc.CreateConference(ctx, alice, model.ConferenceForm{Name: "Bad", StartDate: "June"})
		assertKind(t, apperrors.KindBadRequest, err)

		_, err = f.svc.CreateConference(ctx, alice, model.ConferenceForm{Name: "Negative", MaxAttendees: -1})
		assertKind(t, apperrors.KindBadRequest, err)

		_, err = f.svc.CreateConference(ctx, nobody, model.ConferenceForm{Name: "Anonymous"})
		assertKind(t, apperrors.KindUnauthorized, err)
	})

	t.Run("confirmation email", func(t *testing.T) {
		_, err := f.svc.CreateConference(ctx, bob, model.ConferenceForm{Name: "Mailed", City: "Paris"})
		require.NoError(t, err)
		f.queue.Flush()

		f.mailer.mu.Lock()
		defer f.mailer.mu.Unlock()
		var found *sentMail
		for i := range f.mailer.sent {
			if f.mailer.sent[i].to == bob.Email {
				found = &f.mailer.sent[i]
			}
		}
		require.NotNil(t, found)
		assert.Contains(t, found.body, "Name: Mailed")
		assert.Contains(t, found.body, "City: Paris")
	})
}

func TestUpdateConference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.conference(t, alice, "GopherCon", 10)
	strPtr := func(s string) *string { return &s }
	intPtr := func(i int) *int { return &i }

	_, err := f.svc.UpdateConference(ctx, bob, token, model.ConferenceUpdateForm{Name: strPtr("Hijacked")})
	assertKind(t, apperrors.KindForbidden, err)

	_, err = f.svc.UpdateConference(ctx, alice, keys.Encode(keys.KindConference, uuid.NewString()), model.ConferenceUpdateForm{})
	assertKind(t, apperrors.KindNotFound, err)

	updated, err := f.svc.UpdateConference(ctx, alice, token, model.ConferenceUpdateForm{
		City:      strPtr("Berlin"),
		StartDate: strPtr("2024-09-10"),
		Name:      strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "GopherCon", updated.Name)
	assert.Equal(t, "Berlin", updated.City)
	assert.Equal(t, 9, updated.Month)
	assert.Equal(t, 10, updated.MaxAttendees)

	_, err = f.svc.RegisterForConference(ctx, bob, token)
	require.NoError(t, err)

	updated, err = f.svc.UpdateConference(ctx, alice, token, model.ConferenceUpdateForm{MaxAttendees: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.MaxAttendees)
	assert.Equal(t, 19, updated.SeatsAvailable)

	_, err = f.svc.UpdateConference(ctx, alice, token, model.ConferenceUpdateForm{MaxAttendees: intPtr(0)})
	assertKind(t, apperrors.KindBadRequest, err)
	assert.Equal(t, 19, f.seats(t, token))
}

func TestGetConferencesCreated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.conference(t, alice, "Zeta", 1)
	f.conference(t, alice, "Alpha", 1)
	f.conference(t, bob, "Other", 1)

	created, err := f.svc.GetConferencesCreated(ctx, alice)
	require.NoError(t, err)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "Alpha", created.Items[0].Name)
	assert.Equal(t, "Zeta", created.Items[1].Name)

	_, err = f.svc.GetConferencesCreated(ctx, nobody)
	assertKind(t, apperrors.KindUnauthorized, err)
}

func TestQueryConferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, form := range []model.ConferenceForm{
		{Name: "Beta", City: "London", StartDate: "2024-06-01", MaxAttendees: 100, Topics: []string{"Go"}},
		{Name: "Alpha", City: "London", StartDate: "2024-03-01", MaxAttendees: 50},
		{Name: "Gamma", City: "Paris", StartDate: "2024-09-01", MaxAttendees: 10, Topics: []string{"Go"}},
	} {
		_, err := f.svc.CreateConference(ctx, alice, form)
		require.NoError(t, err)
	}
	names := func(forms model.ConferenceForms) []string {
		out := []string{}
		for _, item := range forms.Items {
			out = append(out, item.Name)
		}
		return out
	}

	all, err := f.svc.QueryConferences(ctx, model.ConferenceQueryForms{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(all))

	oneInequality, err := f.svc.QueryConferences(ctx, model.ConferenceQueryForms{Filters: []model.ConferenceQueryForm{
		{Field: "CITY", Operator: "EQ", Value: "London"},
		{Field: "MONTH", Operator: "GT", Value: "2"},
		{Field: "MONTH", Operator: "LTEQ", Value: "6"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, names(oneInequality))

	byTopic, err := f.svc.QueryConferences(ctx, model.ConferenceQueryForms{Filters: []model.ConferenceQueryForm{
		{Field: "TOPIC", Operator: "EQ", Value: "Go"},
		{Field: "MAX_ATTENDEES", Operator: "LT", Value: "100"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma"}, names(byTopic))

	_, err = f.svc.QueryConferences(ctx, model.ConferenceQueryForms{Filters: []model.ConferenceQueryForm{
		{Field: "MONTH", Operator: "GT", Value: "3"},
		{Field: "MAX_ATTENDEES", Operator: "LT", Value: "100"},
	}})
	assertKind(t, apperrors.KindBadRequest, err)

	for _, filter := range []model.ConferenceQueryForm{
		{Field: "COLOUR", Operator: "EQ", Value: "red"},
		{Field: "CITY", Operator: "LIKE", Value: "Lon"},
		{Field: "MONTH", Operator: "EQ", Value: "June"},
		{Field: "", Operator: "EQ", Value: "x"},
	} {
		_, err := f.svc.QueryConferences(ctx, model.ConferenceQueryForms{Filters: []model.ConferenceQueryForm{filter}})
		assertKind(t, apperrors.KindBadRequest, err)
	}
}

func TestRegisterThenUnregister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.conference(t, alice, "C1", 10)
	assert.Equal(t, 10, f.seats(t, c1))

	ok, err := f.svc.RegisterForConference(ctx, bob, c1)
	require.NoError(t, err)
	assert.True(t, ok.Data)
	assert.Equal(t, 9, f.seats(t, c1))

	_, err = f.svc.RegisterForConference(ctx, bob, c1)
	assertKind(t, apperrors.KindConflict, err)
	assert.Equal(t, 9, f.seats(t, c1))

	attending, err := f.svc.GetConferencesToAttend(ctx, bob)
	require.NoError(t, err)
	require.Len(t, attending.Items, 1)
	assert.Equal(t, c1, attending.Items[0].WebsafeKey)

	ok, err = f.svc.UnregisterFromConference(ctx, bob, c1)
	require.NoError(t, err)
	assert.True(t, ok.Data)
	assert.Equal(t, 10, f.seats(t, c1))

	ok, err = f.svc.UnregisterFromConference(ctx, bob, c1)
	require.NoError(t, err)
	assert.False(t, ok.Data)
	assert.Equal(t, 10, f.seats(t, c1))
}

func TestRegistrationFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	full := f.conference(t, alice, "Full", 0)

	_, err := f.svc.RegisterForConference(ctx, bob, full)
	assertKind(t, apperrors.KindConflict, err)

	_, err = f.svc.RegisterForConference(ctx, nobody, full)
	assertKind(t, apperrors.KindUnauthorized, err)

	_, err = f.svc.RegisterForConference(ctx, bob, keys.Encode(keys.KindConference, uuid.NewString()))
	assertKind(t, apperrors.KindNotFound, err)

	profile, err := f.svc.GetProfile(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, profile.ConferenceKeysToAttend)
}

func TestConcurrentRegistrationsKeepSeatsInRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.conference(t, alice, "Popular", 5)

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := model.Identity{UserId: uuid.NewString(), Email: "user@example.com"}
			_, err := f.svc.RegisterForConference(ctx, user, token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assertKind(t, apperrors.KindConflict, err)
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, f.seats(t, token))
}

func TestSeatsStayWithinBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.conference(t, alice, "Bounded", 3)
	users := []model.Identity{alice, bob, {UserId: "carol"}, {UserId: "dave"}}

	steps := []struct {
		user     int
		register bool
	}{
		{0, true}, {1, true}, {2, true}, {3, true}, {1, false}, {1, false},
		{3, true}, {0, false}, {2, false}, {3, false}, {3, false}, {0, true},
	}
	for _, step := range steps {
		if step.register {
			f.svc.RegisterForConference(ctx, users[step.user], token)
		} else {
			f.svc.UnregisterFromConference(ctx, users[step.user], token)
		}
		seats := f.seats(t, token)
		assert.GreaterOrEqual(t, seats, 0)
		assert.LessOrEqual(t, seats, 3)
	}
	assert.Equal(t, 2, f.seats(t, token))
}

func TestSpeakers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateSpeaker(ctx, model.SpeakerForm{Name: "ada lovelace", Bio: "Analyst"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", created.Name)

	got, err := f.svc.GetSpeaker(ctx, created.WebsafeKey)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "Analyst", got.Bio)

	_, err = f.svc.CreateSpeaker(ctx, model.SpeakerForm{Name: " "})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.svc.GetSpeaker(ctx, keys.Encode(keys.KindSpeaker, uuid.NewString()))
	assertKind(t, apperrors.KindNotFound, err)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conf := f.conference(t, alice, "GopherCon", 10)
	ada := f.speaker(t, "Ada Lovelace")

	session, err := f.svc.CreateSession(ctx, alice, conf, model.SessionForm{
		Name: "Opening", Date: "2024-06-01", StartTime: 930, TypeOfSession: "keynote", SpeakerKeys: []string{ada},
	})
	require.NoError(t, err)
	assert.Equal(t, "KEYNOTE", session.TypeOfSession)
	assert.Equal(t, 930, session.StartTime)
	assert.Equal(t, []string{ada}, session.SpeakerKeys)
	assert.Equal(t, conf, session.WebsafeConferenceKey)

	plain, err := f.svc.CreateSession(ctx, alice, conf, model.SessionForm{Name: "Hallway", Date: "2024-06-01", StartTime: 1200})
	require.NoError(t, err)
	assert.Equal(t, "NOT_SPECIFIED", plain.TypeOfSession)

	_, err = f.svc.CreateSession(ctx, bob, conf, model.SessionForm{Name: "Intruder", Date: "2024-06-01", StartTime: 1000})
	assertKind(t, apperrors.KindForbidden, err)

	_, err = f.svc.CreateSession(ctx, alice, conf, model.SessionForm{Name: "No date", StartTime: 1000})
	assertKind(t, apperrors.KindBadRequest, err)
	assert.Contains(t, err.Error(), "'date' field required")

	_, err = f.svc.CreateSession(ctx, alice, conf, model.SessionForm{Name: "Late", Date: "2024-06-01", StartTime: 2460})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.svc.CreateSession(ctx, alice, conf, model.SessionForm{Name: "Odd", Date: "2024-06-01", StartTime: 900, TypeOfSession: "PARTY"})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.svc.CreateSession(ctx, nobody, conf, model.SessionForm{Name: "Anon", Date: "2024-06-01", StartTime: 900})
	assertKind(t, apperrors.KindUnauthorized, err)
}

func TestCreateSessionWithUnknownSpeakerWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conf := f.conference(t, alice, "GopherCon", 10)
	ada := f.speaker(t, "Ada Lovelace")

	_, err := f.svc.CreateSession(ctx, alice, conf, model.SessionForm{
		Name: "Ghost", Date: "2024-06-01", StartTime: 900,
		SpeakerKeys: []string{ada, keys.Encode(keys.KindSpeaker, uuid.NewString())},
	})
	assertKind(t, apperrors.KindNotFound, err)

	_, err = f.svc.CreateSession(ctx, alice, conf, model.SessionForm{
		Name: "Garbled", Date: "2024-06-01", StartTime: 900, SpeakerKeys: []string{"garbage"},
	})
	assertKind(t, apperrors.KindBadRequest, err)

	sessions, err := f.svc.GetConferenceSessions(ctx, conf)
	require.NoError(t, err)
	assert.Empty(t, sessions.Items)
}

func TestSessionQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conf := f.conference(t, alice, "GopherCon", 10)
	other := f.conference(t, alice, "RustConf", 10)
	ada := f.speaker(t, "Ada Lovelace")

	for _, item := range []struct {
		conf string
		form model.SessionForm
	}{
		{conf, model.SessionForm{Name: "Keynote", Date: "2024-06-01", StartTime: 900, TypeOfSession: "KEYNOTE", SpeakerKeys: []string{ada}}},
		{conf, model.SessionForm{Name: "Workshop", Date: "2024-06-02", StartTime: 1400, TypeOfSession: "WORKSHOP"}},
		{conf, model.SessionForm{Name: "Lightning", Date: "2024-06-02", StartTime: 1800, TypeOfSession: "LECTURE"}},
		{conf, model.SessionForm{Name: "Breakfast", Date: "2024-06-03", StartTime: 800, TypeOfSession: "LECTURE"}},
		{other, model.SessionForm{Name: "Borrowed", Date: "2024-07-01", StartTime: 1000, SpeakerKeys: []string{ada}}},
	} {
		_, err := f.svc.CreateSession(ctx, alice, item.conf, item.form)
		require.NoError(t, err)
	}
	names := func(forms model.SessionForms) []string {
		out := []string{}
		for _, item := range forms.Items {
			out = append(out, item.Name)
		}
		return out
	}

	all, err := f.svc.GetConferenceSessions(ctx, conf)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Keynote", "Workshop", "Lightning", "Breakfast"}, names(all))

	lectures, err := f.svc.GetConferenceSessionsByType(ctx, conf, "lecture")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Lightning", "Breakfast"}, names(lectures))

	_, err = f.svc.GetConferenceSessionsByType(ctx, conf, "PARTY")
	assertKind(t, apperrors.KindBadRequest, err)

	bySpeaker, err := f.svc.GetSessionsBySpeaker(ctx, "ADA LOVELACE")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Keynote", "Borrowed"}, names(bySpeaker))

	unknown, err := f.svc.GetSessionsBySpeaker(ctx, "Grace Hopper")
	require.NoError(t, err)
	assert.Empty(t, unknown.Items)

	byDate, err := f.svc.GetConferenceSessionsByDate(ctx, conf, "2024-06-02", "2024-06-03")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Workshop", "Lightning", "Breakfast"}, names(byDate))

	_, err = f.svc.GetConferenceSessionsByDate(ctx, conf, "yesterday", "2024-06-03")
	assertKind(t, apperrors.KindBadRequest, err)

	byTime, err := f.svc.GetConferenceSessionsByTime(ctx, conf, 900, 1400)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Keynote", "Workshop"}, names(byTime))

	picky, err := f.svc.GetConferenceSessionsPicky(ctx, conf, "WORKSHOP", 1900)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Keynote", "Lightning", "Breakfast"}, names(picky))

	pickier, err := f.svc.GetConferenceSessionsPicky(ctx, conf, "KEYNOTE", 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast"}, names(pickier))

	_, err = f.svc.GetConferenceSessionsPicky(ctx, conf, "KEYNOTE", 9999)
	assertKind(t, apperrors.KindBadRequest, err)
}

func TestFeaturedSpeakerAfterThirdSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conf := f.conference(t, alice, "C1", 10)
	ada := f.speaker(t, "Ada Lovelace")
	grace := f.speaker(t, "Grace Hopper")

	addSession := func(name string, speakers ...string) {
		_, err := f.svc.CreateSession(ctx, alice, conf, model.SessionForm{
			Name: name, Date: "2024-06-01", StartTime: 1000, SpeakerKeys: speakers,
		})
		require.NoError(t, err)
		f.queue.Flush()
	}

	addSession("One", ada, grace)
	addSession("Two", ada)
	featured, err := f.svc.GetFeaturedSpeaker(ctx, conf)
	require.NoError(t, err)
	assert.Empty(t, featured.Name)

	addSession("Three", ada)
	featured, err = f.svc.GetFeaturedSpeaker(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", featured.Name)
	assert.Equal(t, ada, featured.WebsafeKey)

	addSession("Four", grace)
	featured, err = f.svc.GetFeaturedSpeaker(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", featured.Name, "a speaker below the threshold does not clear the cached value")

	_, err = f.svc.GetFeaturedSpeaker(ctx, ada)
	assertKind(t, apperrors.KindNotFound, err)
}

func TestUpdateFeaturedSpeakerIsFirstFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	confId := uuid.NewString()
	require.NoError(t, f.store.CreateConference(ctx, model.Conference{Id: confId, Name: "Direct"}))

	first, second := uuid.NewString(), uuid.NewString()
	for i := 0; i < 4; i++ {
		require.NoError(t, f.store.CreateSession(ctx, model.Session{
			Id: uuid.NewString(), ConferenceId: confId, SpeakerKeys: []string{first, second},
		}))
	}

	featured, err := f.svc.UpdateFeaturedSpeaker(ctx, confId, []string{second, first})
	require.NoError(t, err)
	assert.Equal(t, second, featured)

	cached, err := f.cache.Get(ctx, cache.FeaturedSpeakerKey(keys.Encode(keys.KindConference, confId)))
	require.NoError(t, err)
	assert.Equal(t, keys.Encode(keys.KindSpeaker, second), cached)
}

func TestUpdateFeaturedSpeakerStopsAtFirstCrossing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	confId := uuid.NewString()
	require.NoError(t, f.store.CreateConference(ctx, model.Conference{Id: confId, Name: "Direct"}))

	a, b := uuid.NewString(), uuid.NewString()
	for _, speakers := range [][]string{{b}, {b}, {a, b}, {a}, {a}} {
		require.NoError(t, f.store.CreateSession(ctx, model.Session{
			Id: uuid.NewString(), ConferenceId: confId, SpeakerKeys: speakers,
		}))
	}

	featured, err := f.svc.UpdateFeaturedSpeaker(ctx, confId, []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, b, featured, "b reaches three sessions before a does")
}

func TestWishlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conf := f.conference(t, alice, "GopherCon", 10)

	first, err := f.svc.CreateSession(ctx, alice, conf, model.SessionForm{Name: "First", Date: "2024-06-01", StartTime: 900})
	require.NoError(t, err)
	second, err := f.svc.CreateSession(ctx, alice, conf, model.SessionForm{Name: "Second", Date: "2024-06-01", StartTime: 1000})
	require.NoError(t, err)

	for _, key := range []string{second.WebsafeKey, first.WebsafeKey} {
		ok, err := f.svc.AddSessionToWishlist(ctx, bob, model.WishlistForm{WebsafeSessionKey: key})
		require.NoError(t, err)
		assert.True(t, ok.Data)
	}

	_, err = f.svc.AddSessionToWishlist(ctx, bob, model.WishlistForm{WebsafeSessionKey: first.WebsafeKey})
	assertKind(t, apperrors.KindConflict, err)

	_, err = f.svc.AddSessionToWishlist(ctx, bob, model.WishlistForm{WebsafeSessionKey: conf})
	assertKind(t, apperrors.KindNotFound, err)

	_, err = f.svc.AddSessionToWishlist(ctx, nobody, model.WishlistForm{WebsafeSessionKey: first.WebsafeKey})
	assertKind(t, apperrors.KindUnauthorized, err)

	wishlist, err := f.svc.GetSessionsInWishlist(ctx, bob)
	require.NoError(t, err)
	require.Len(t, wishlist.Items, 2)
	assert.Equal(t, "Second", wishlist.Items[0].Name)
	assert.Equal(t, "First", wishlist.Items[1].Name)

	profile, err := f.svc.GetProfile(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{second.WebsafeKey, first.WebsafeKey}, profile.SessionWishlist)
}

func TestAnnouncement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.GetAnnouncement(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", empty.Data)

	almost := f.conference(t, alice, "Almost", 3)
	f.conference(t, alice, "Roomy", 100)
	f.conference(t, alice, "Closed", 0)
	f.conference(t, alice, "Busy", 5)

	announcement, err := f.svc.SetAnnouncement(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Last chance to attend! The following conferences are nearly sold out: Almost, Busy", announcement)

	cached, err := f.svc.GetAnnouncement(ctx)
	require.NoError(t, err)
	assert.Equal(t, announcement, cached.Data)

	for _, user := range []model.Identity{alice, bob, {UserId: "carol"}} {
		_, err := f.svc.RegisterForConference(ctx, user, almost)
		require.NoError(t, err)
	}
	announcement, err = f.svc.SetAnnouncement(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Last chance to attend! The following conferences are nearly sold out: Busy", announcement)
}

func TestAnnouncementClearedWhenNothingQualifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, cache.ANNOUNCEMENTS_KEY, "stale"))
	f.conference(t, alice, "Roomy", 100)

	require.NoError(t, f.queue.Enqueue(ctx, tasks.SET_ANNOUNCEMENT, nil))
	f.queue.Flush()

	cached, err := f.svc.GetAnnouncement(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", cached.Data)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.svc.GetProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.Equal(t, "alice@example.com", profile.MainEmail)
	assert.Equal(t, "NOT_SPECIFIED", profile.TeeShirtSize)

	saved, err := f.svc.SaveProfile(ctx, alice, model.ProfileMiniForm{DisplayName: "Alice A.", TeeShirtSize: "m_w"})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", saved.DisplayName)
	assert.Equal(t, "M_W", saved.TeeShirtSize)

	kept, err := f.svc.SaveProfile(ctx, alice, model.ProfileMiniForm{})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", kept.DisplayName)

	_, err = f.svc.SaveProfile(ctx, alice, model.ProfileMiniForm{TeeShirtSize: "HUGE"})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.svc.GetProfile(ctx, nobody)
	assertKind(t, apperrors.KindUnauthorized, err)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureUser(ctx, "admin", "secret", model.ROLE_ADMIN, "admin@example.com"))

	user, err := f.svc.Authenticate(ctx, model.Credentials{Login: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, model.ROLE_ADMIN, user.Role)
	assert.NotEqual(t, "secret", user.HashedPassword)

	_, err = f.svc.Authenticate(ctx, model.Credentials{Login: "admin", Password: "wrong"})
	assertKind(t, apperrors.KindUnauthorized, err)

	_, err = f.svc.Authenticate(ctx, model.Credentials{Login: "ghost", Password: "secret"})
	assertKind(t, apperrors.KindUnauthorized, err)

	_, err = f.svc.Authenticate(ctx, model.Credentials{Login: "admin"})
	assertKind(t, apperrors.KindBadRequest, err)
}
