package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occamy_tracker/internal/geo"
	"occamy_tracker/internal/models"
	"occamy_tracker/internal/store"
)

func f(v float64) *float64 { return &v }

type recordingPublisher struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func (p *recordingPublisher) Publish(e models.ActivityEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
}

type failingLog struct {
	*store.MemoryLog
	err error
}

func (l *failingLog) Append(context.Context, *models.ActivityEntry) error { return l.err }

func newTestTracker(t *testing.T, policy DistancePolicy) (*Tracker, *store.MemoryLog, *recordingPublisher) {
	t.Helper()
	log := store.NewMemoryLog()
	pub := &recordingPublisher{}
	clock := time.Date(2026, 10, 18, 3, 30, 0, 0, time.UTC)
	ist := time.FixedZone("IST", 5*3600+1800)
	n := 0
	tr := New(log, Options{
		Policy:   policy,
		Location: ist,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("entry-%03d", n)
		},
		Publisher: pub,
	})
	return tr, log, pub
}

func login(t *testing.T, tr *Tracker, id, name string) models.Officer {
	t.Helper()
	o, err := tr.Login(LoginRequest{OfficerID: id, Name: name})
	require.NoError(t, err)
	return o
}

func activity(typ string, lat, lng float64) ActivityRequest {
	return ActivityRequest{
		Type:    typ,
		Lat:     f(lat),
		Lng:     f(lng),
		Village: "Hosur",
		Photo:   "data:image/jpeg;base64,/9j/",
	}
}

func requireSequence(t *testing.T, err error, reason SequenceReason) {
	t.Helper()
	var se *SequenceError
	require.True(t, errors.As(err, &se), "expected SequenceError, got %v", err)
	assert.Equal(t, reason, se.Reason)
}

func requireValidation(t *testing.T, err error, kind ValidationKind, field string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, kind, ve.Kind)
	assert.Equal(t, field, ve.Field)
}

func logLen(t *testing.T, log *store.MemoryLog) int {
	t.Helper()
	all, err := log.All(context.Background())
	require.NoError(t, err)
	return len(all)
}

func TestLoginAssignsRole(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyOdometer)

	o := login(t, tr, "o1", "Ravi")
	assert.Equal(t, models.RoleOfficer, o.Role)

	a := login(t, tr, "a1", " Admin ")
	assert.Equal(t, models.RoleAdmin, a.Role)
	assert.Equal(t, "Admin", a.Name)

	_, err := tr.Login(LoginRequest{OfficerID: "o2"})
	requireValidation(t, err, MissingField, "name")
	assert.Equal(t, PhaseNoSession, tr.State("o2").Phase)
}

func TestStartDayRequiresLogin(t *testing.T) {
	tr, log, _ := newTestTracker(t, PolicyOdometer)

	_, err := tr.StartDay(context.Background(), "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	requireSequence(t, err, LoginRequired)

	// Sequence is checked before the payload, so even an invalid request reports loginRequired.
	_, err = tr.StartDay(context.Background(), "o1", StartDayRequest{})
	requireSequence(t, err, LoginRequired)
	assert.Zero(t, logLen(t, log))
}

func TestLogActivityRequiresActiveDay(t *testing.T) {
	tr, log, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()

	_, err := tr.LogActivity(ctx, "o1", activity("Sale", 12.9, 77.5))
	requireSequence(t, err, LoginRequired)

	login(t, tr, "o1", "Ravi")
	_, err = tr.LogActivity(ctx, "o1", activity("Sale", 12.9, 77.5))
	requireSequence(t, err, DayNotStarted)

	_, err = tr.LogActivity(ctx, "o1", ActivityRequest{})
	requireSequence(t, err, DayNotStarted)
	assert.Zero(t, logLen(t, log))
}

func TestStartDayTwice(t *testing.T) {
	tr, log, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")

	state, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)
	assert.Equal(t, PhaseDayActive, state.Phase)
	assert.Equal(t, PolicyOdometer, state.Policy)
	require.NotNil(t, state.StartOdometer)
	assert.Equal(t, 100.0, *state.StartOdometer)
	assert.Equal(t, &geo.Coordinate{Lat: 12.9, Lng: 77.5}, state.StartLocation)

	_, err = tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(120)})
	requireSequence(t, err, DayAlreadyStarted)
	assert.Equal(t, 1, logLen(t, log))
	assert.Equal(t, 100.0, *tr.State("o1").StartOdometer)
}

func TestStartDayValidation(t *testing.T) {
	tr, log, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")

	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lng: f(77.5), Odometer: f(100)})
	requireValidation(t, err, MissingGPS, "lat")

	_, err = tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5)})
	requireValidation(t, err, MissingField, "odometer")

	_, err = tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(-1)})
	requireValidation(t, err, InvalidValue, "odometer")

	assert.Equal(t, PhaseLoggedIn, tr.State("o1").Phase)
	assert.Zero(t, logLen(t, log))
}

func TestOdometerDay(t *testing.T) {
	tr, log, pub := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")

	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)

	req := activity("One-on-One Meeting", 12.95, 77.55)
	req.Payload = map[string]interface{}{"name": "Suresh", "cat": "Farmer", "pot": "High"}
	meeting, err := tr.LogActivity(ctx, "o1", req)
	require.NoError(t, err)
	assert.Equal(t, models.TypeOneOnOneMeeting, meeting.Type)
	assert.Equal(t, "Hosur", meeting.Village)
	assert.Equal(t, "18/10/2026", meeting.Date)
	assert.NotEmpty(t, meeting.Point)

	sale := activity("sale", 12.96, 77.56)
	sale.Village = ""
	sale.Payload = map[string]interface{}{"mode": "b2c", "sku": "OCC-1", "qty": 4, "village": "Attibele"}
	saleEntry, err := tr.LogActivity(ctx, "o1", sale)
	require.NoError(t, err)
	assert.Equal(t, models.TypeSale, saleEntry.Type)
	assert.Equal(t, "Attibele", saleEntry.Village)

	summary, err := tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(150)})
	require.NoError(t, err)
	assert.InDelta(t, 50, summary.DistanceKm, 1e-9)
	assert.Equal(t, PolicyOdometer, summary.Policy)
	assert.Equal(t, 2, summary.Activities)
	assert.Equal(t, 1, summary.ByType[models.TypeSale])
	assert.Len(t, summary.Trail, 2)
	require.NotNil(t, summary.Entry.DistanceToday)
	assert.InDelta(t, 50, *summary.Entry.DistanceToday, 1e-9)
	assert.False(t, summary.Entry.HasLocation())
	assert.Equal(t, PhaseDayEnded, tr.State("o1").Phase)

	entries, err := tr.Activities(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	types := make([]models.ActivityType, len(entries))
	for i, e := range entries {
		types[i] = e.Type
		assert.Equal(t, int64(i+1), e.Seq)
	}
	assert.Equal(t, []models.ActivityType{models.TypeDayStart, models.TypeOneOnOneMeeting, models.TypeSale, models.TypeDayEnd}, types)
	assert.Equal(t, 4, logLen(t, log))
	assert.Len(t, pub.entries, 4)

	m, err := tr.Metrics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50, m.TotalDistance, 1e-9)
	assert.Equal(t, 1, m.TotalMeetings)
	assert.Equal(t, 1, m.B2CSales)
}

func TestDecreasingOdometerIsRejected(t *testing.T) {
	tr, log, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")
	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)

	_, err = tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(90)})
	requireValidation(t, err, InvalidValue, "odometer")
	assert.Equal(t, PhaseDayActive, tr.State("o1").Phase)
	assert.Equal(t, 1, logLen(t, log))

	summary, err := tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(100)})
	require.NoError(t, err)
	assert.Zero(t, summary.DistanceKm)
}

func TestGPSTrailDay(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyGPSTrail)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")

	// Day start location is not part of the trail.
	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(10), Lng: f(10)})
	require.NoError(t, err)
	for _, lng := range []float64{0, 1, 2} {
		_, err := tr.LogActivity(ctx, "o1", activity("Group Meeting", 0, lng))
		require.NoError(t, err)
	}

	trail, err := tr.Trail("o1")
	require.NoError(t, err)
	assert.Len(t, trail, 3)

	summary, err := tr.EndDay(ctx, "o1", EndDayRequest{Lat: f(20), Lng: f(20)})
	require.NoError(t, err)
	leg := geo.Distance(0, 0, 0, 1)
	assert.InDelta(t, 2*leg, summary.DistanceKm, 1e-6)
	assert.Equal(t, PolicyGPSTrail, summary.Policy)
	assert.True(t, summary.Entry.HasLocation())
	assert.Equal(t, "gps-trail", summary.Entry.PayloadString("policy"))

	require.Len(t, summary.Legs, 2)
	for _, l := range summary.Legs {
		assert.InDelta(t, leg, l.DistanceKm, 1e-6)
		assert.InDelta(t, 90, l.BearingDeg, 1e-9, "legs head due east along the equator")
	}
}

func TestRejectedActivityAppendsNothing(t *testing.T) {
	tr, log, pub := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")
	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)

	noPhoto := activity("Sample", 12.9, 77.5)
	noPhoto.Photo = ""
	_, err = tr.LogActivity(ctx, "o1", noPhoto)
	requireValidation(t, err, MissingField, "photo")

	noVillage := activity("Sample", 12.9, 77.5)
	noVillage.Village = "  "
	_, err = tr.LogActivity(ctx, "o1", noVillage)
	requireValidation(t, err, MissingField, "village")

	noGPS := activity("Sample", 12.9, 77.5)
	noGPS.Lat = nil
	_, err = tr.LogActivity(ctx, "o1", noGPS)
	requireValidation(t, err, MissingGPS, "lat")

	badPurpose := activity("Sample", 12.9, 77.5)
	badPurpose.Payload = map[string]interface{}{"purpose": "Giveaway"}
	_, err = tr.LogActivity(ctx, "o1", badPurpose)
	requireValidation(t, err, InvalidEnum, "purpose")

	assert.Equal(t, 1, logLen(t, log))
	assert.Len(t, pub.entries, 1)
	assert.Empty(t, tr.State("o1").Activities)
	trail, err := tr.Trail("o1")
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestEndDayRequiresActiveDay(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()

	_, err := tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(10)})
	requireSequence(t, err, LoginRequired)

	login(t, tr, "o1", "Ravi")
	_, err = tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(10)})
	requireSequence(t, err, DayNotStarted)

	_, err = tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(0)})
	require.NoError(t, err)
	_, err = tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(10)})
	require.NoError(t, err)

	_, err = tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(20)})
	requireSequence(t, err, DayNotStarted)
}

func TestDayEndedAllowsNewDay(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")

	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)
	_, err = tr.LogActivity(ctx, "o1", activity("Sale", 12.9, 77.5))
	require.NoError(t, err)
	_, err = tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(150)})
	require.NoError(t, err)

	_, err = tr.LogActivity(ctx, "o1", activity("Sale", 12.9, 77.5))
	requireSequence(t, err, DayNotStarted)

	state, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(150)})
	require.NoError(t, err)
	assert.Empty(t, state.Activities, "a new day starts with an empty buffer")

	summary, err := tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(175)})
	require.NoError(t, err)
	assert.InDelta(t, 25, summary.DistanceKm, 1e-9)
	assert.Zero(t, summary.Activities)

	m, err := tr.Metrics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 75, m.TotalDistance, 1e-9)
}

func TestLogout(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()

	requireSequence(t, tr.Logout("o1"), LoginRequired)

	login(t, tr, "o1", "Ravi")
	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)
	requireSequence(t, tr.Logout("o1"), DayActive)

	_, err = tr.EndDay(ctx, "o1", EndDayRequest{Odometer: f(110)})
	require.NoError(t, err)
	require.NoError(t, tr.Logout("o1"))
	assert.Equal(t, PhaseNoSession, tr.State("o1").Phase)

	_, err = tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(110)})
	requireSequence(t, err, LoginRequired)
}

func TestLoginReplacesSession(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")
	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)

	login(t, tr, "o1", "Ravi Kumar")
	state := tr.State("o1")
	assert.Equal(t, PhaseLoggedIn, state.Phase)
	assert.Equal(t, "Ravi Kumar", state.Officer)
	assert.Nil(t, state.StartedAt)
}

func TestSessionsAreKeyedPerOfficer(t *testing.T) {
	tr, _, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")
	login(t, tr, "o2", "Asha")

	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	require.NoError(t, err)

	assert.Equal(t, PhaseDayActive, tr.State("o1").Phase)
	assert.Equal(t, PhaseLoggedIn, tr.State("o2").Phase)
	_, err = tr.LogActivity(ctx, "o2", activity("Sale", 12.9, 77.5))
	requireSequence(t, err, DayNotStarted)
}

func TestConcurrentOfficers(t *testing.T) {
	tr, log, _ := newTestTracker(t, PolicyOdometer)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("o%d", i)
			_, err := tr.Login(LoginRequest{OfficerID: id, Name: id})
			assert.NoError(t, err)
			_, err = tr.StartDay(ctx, id, StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(0)})
			assert.NoError(t, err)
			_, err = tr.LogActivity(ctx, id, activity("Sale", 12.9, 77.5))
			assert.NoError(t, err)
			_, err = tr.EndDay(ctx, id, EndDayRequest{Odometer: f(10)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 30, logLen(t, log))
	m, err := tr.Metrics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 100, m.TotalDistance, 1e-9)
}

func TestStorageFailureLeavesStateUnchanged(t *testing.T) {
	failing := &failingLog{MemoryLog: store.NewMemoryLog(), err: errors.New("connection refused")}
	pub := &recordingPublisher{}
	tr := New(failing, Options{Publisher: pub})
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")

	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(100)})
	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "append", se.Op)
	assert.Equal(t, "storage", Kind(err))
	assert.False(t, IsCallerError(err))
	assert.Equal(t, PhaseLoggedIn, tr.State("o1").Phase)
	assert.Empty(t, pub.entries)
}

func TestDefaultEntryIDsAreUnique(t *testing.T) {
	tr := New(store.NewMemoryLog(), Options{})
	ctx := context.Background()
	login(t, tr, "o1", "Ravi")
	_, err := tr.StartDay(ctx, "o1", StartDayRequest{Lat: f(12.9), Lng: f(77.5), Odometer: f(1)})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := tr.LogActivity(ctx, "o1", activity("Sale", 12.9, 77.5))
		require.NoError(t, err)
	}

	entries, err := tr.Activities(ctx)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, e := range entries {
		assert.Len(t, e.ID, 36)
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}
