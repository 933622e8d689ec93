// Package tracker implements the field officer day lifecycle: login, day start,
// activity logging and day end with distance computation.
package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"occamy_tracker/internal/dashboard"
	"occamy_tracker/internal/geo"
	"occamy_tracker/internal/models"
	"occamy_tracker/internal/store"
)

// DateLayout renders the localized day/month/year date stored on each entry.
const DateLayout = "2/1/2006"

// Publisher receives every entry after it has been appended to the log.
type Publisher interface {
	Publish(entry models.ActivityEntry)
}

type Options struct {
	Policy    DistancePolicy
	Location  *time.Location
	Now       func() time.Time
	NewID     func() string
	Publisher Publisher
}

// Tracker owns the per-officer sessions and is the single writer of the activity log.
// Each submission is validated, checked against the lifecycle, persisted and only
// then applied to the session, all under one lock.
type Tracker struct {
	log       store.ActivityLog
	validator Validator
	policy    DistancePolicy
	loc       *time.Location
	now       func() time.Time
	newID     func() string
	publisher Publisher

	mu       sync.Mutex
	sessions map[string]*session
}

func New(log store.ActivityLog, opts Options) *Tracker {
	t := &Tracker{
		log:       log,
		policy:    opts.Policy,
		loc:       opts.Location,
		now:       opts.Now,
		newID:     opts.NewID,
		publisher: opts.Publisher,
		sessions:  make(map[string]*session),
	}
	if t.policy == "" {
		t.policy = PolicyOdometer
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = newEntryID
	}
	t.validator = Validator{Policy: t.policy}
	return t
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (t *Tracker) Policy() DistancePolicy { return t.policy }

// Login opens a session for the officer, replacing any previous one.
func (t *Tracker) Login(req LoginRequest) (models.Officer, error) {
	if err := t.validator.Login(req); err != nil {
		return models.Officer{}, err
	}
	officer := models.Officer{
		ID:         strings.TrimSpace(req.OfficerID),
		Name:       strings.TrimSpace(req.Name),
		Role:       models.RoleForName(req.Name),
		LoggedInAt: t.now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.sessions[officer.ID]; ok && prev.phase == PhaseDayActive {
		logrus.WithField("officer_id", officer.ID).Warn("Login replaced a session with an active day; the day was discarded.")
	}
	t.sessions[officer.ID] = &session{officer: officer, phase: PhaseLoggedIn}
	logrus.WithFields(logrus.Fields{"officer_id": officer.ID, "role": officer.Role}).Info("Officer logged in.")
	return officer, nil
}

// Logout closes the session. An active day must be ended first.
func (t *Tracker) Logout(officerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[officerID]
	if !ok {
		return &SequenceError{Reason: LoginRequired, Phase: PhaseNoSession}
	}
	if s.phase == PhaseDayActive {
		return &SequenceError{Reason: DayActive, Phase: s.phase}
	}
	delete(t.sessions, officerID)
	logrus.WithField("officer_id", officerID).Info("Officer logged out.")
	return nil
}

// State returns a snapshot of the officer's lifecycle state.
func (t *Tracker) State(officerID string) DayState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[officerID].snapshot(officerID)
}

// Trail returns the locations of the activities logged so far in the active day.
func (t *Tracker) Trail(officerID string) ([]geo.Coordinate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.sessionIn(officerID, PhaseDayActive)
	if err != nil {
		return nil, err
	}
	return s.day.ledger.Trail(), nil
}

// sessionIn returns the officer's session if it is in the wanted phase.
// Callers must hold t.mu.
func (t *Tracker) sessionIn(officerID string, wanted Phase) (*session, error) {
	s, ok := t.sessions[officerID]
	if !ok {
		return nil, &SequenceError{Reason: LoginRequired, Phase: PhaseNoSession}
	}
	if wanted == PhaseDayActive && s.phase != PhaseDayActive {
		return nil, &SequenceError{Reason: DayNotStarted, Phase: s.phase}
	}
	return s, nil
}

// StartDay records the start reading and moves the officer to DayActive.
func (t *Tracker) StartDay(ctx context.Context, officerID string, req StartDayRequest) (DayState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.sessionIn(officerID, PhaseLoggedIn)
	if err != nil {
		return DayState{}, err
	}
	if !s.phase.CanStartDay() {
		return DayState{}, &SequenceError{Reason: DayAlreadyStarted, Phase: s.phase}
	}
	if err := t.validator.StartDay(req); err != nil {
		return DayState{}, err
	}

	start := geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	payload := map[string]interface{}{}
	if req.Odometer != nil {
		payload["odometer"] = *req.Odometer
	}
	entry, err := t.appendEntry(ctx, s.officer, models.TypeDayStart, &start, "", payload, "", nil)
	if err != nil {
		return DayState{}, err
	}

	s.phase = PhaseDayActive
	s.day = &workDay{
		startedAt:     entry.CreatedAt,
		startLocation: start,
		ledger:        StartLedger(t.policy, req.Odometer),
	}
	logrus.WithFields(logrus.Fields{
		"officer_id": officerID,
		"policy":     t.policy,
		"seq":        entry.Seq,
	}).Info("Day started.")
	return s.snapshot(officerID), nil
}

// LogActivity records a field activity in the active day.
func (t *Tracker) LogActivity(ctx context.Context, officerID string, req ActivityRequest) (models.ActivityEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.sessionIn(officerID, PhaseDayActive)
	if err != nil {
		return models.ActivityEntry{}, err
	}
	typ, err := t.validator.Activity(req)
	if err != nil {
		return models.ActivityEntry{}, err
	}

	loc := geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	entry, err := t.appendEntry(ctx, s.officer, typ, &loc, village(req.Village, req.Payload), req.Payload, req.Photo, nil)
	if err != nil {
		return models.ActivityEntry{}, err
	}

	s.day.activities = append(s.day.activities, entry)
	s.day.ledger.RecordWaypoint(loc)
	logrus.WithFields(logrus.Fields{
		"officer_id": officerID,
		"type":       typ,
		"seq":        entry.Seq,
	}).Info("Activity logged.")
	return entry, nil
}

// EndDay computes the day's distance, records the day-end entry and returns the
// officer to a state from which a new day can be started.
func (t *Tracker) EndDay(ctx context.Context, officerID string, req EndDayRequest) (DaySummary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.sessionIn(officerID, PhaseDayActive)
	if err != nil {
		return DaySummary{}, err
	}
	if err := t.validator.EndDay(req); err != nil {
		return DaySummary{}, err
	}
	distance, err := s.day.ledger.EndDay(req.Odometer)
	if err != nil {
		return DaySummary{}, err
	}

	end, _ := optionalGPS(req.Lat, req.Lng)
	payload := map[string]interface{}{"policy": string(t.policy)}
	if req.Odometer != nil {
		payload["odometer"] = *req.Odometer
	}
	if start := s.day.ledger.StartOdometer(); start != nil {
		payload["startOdometer"] = *start
	}
	entry, err := t.appendEntry(ctx, s.officer, models.TypeDayEnd, end, "", payload, "", &distance)
	if err != nil {
		return DaySummary{}, err
	}

	day := s.day
	summary := DaySummary{
		OfficerID:     officerID,
		Officer:       s.officer.Name,
		Policy:        day.ledger.Policy(),
		StartedAt:     day.startedAt,
		EndedAt:       entry.CreatedAt,
		StartOdometer: day.ledger.StartOdometer(),
		EndOdometer:   req.Odometer,
		DistanceKm:    distance,
		Activities:    len(day.activities),
		ByType:        make(map[models.ActivityType]int),
		Trail:         day.ledger.Trail(),
		Entry:         entry,
	}
	for _, a := range day.activities {
		summary.ByType[a.Type]++
	}
	summary.Legs = geo.Legs(summary.Trail)

	s.phase = PhaseDayEnded
	s.day = nil
	logrus.WithFields(logrus.Fields{
		"officer_id":  officerID,
		"distance_km": distance,
		"activities":  summary.Activities,
		"seq":         entry.Seq,
	}).Info("Day ended.")
	return summary, nil
}

// appendEntry builds a new entry and writes it to the log. Callers must hold t.mu.
func (t *Tracker) appendEntry(
	ctx context.Context,
	officer models.Officer,
	typ models.ActivityType,
	loc *geo.Coordinate,
	village string,
	payload map[string]interface{},
	photo string,
	distance *float64,
) (models.ActivityEntry, error) {
	now := t.now()
	entry := models.ActivityEntry{
		ID:        t.newID(),
		OfficerID: officer.ID,
		Officer:   officer.Name,
		Type:      typ,
		Village:   village,
		Photo:     photo,
		CreatedAt: now,
		Date:      now.In(t.loc).Format(DateLayout),
	}
	if len(payload) > 0 {
		entry.Payload = make(map[string]interface{}, len(payload))
		for k, v := range payload {
			entry.Payload[k] = v
		}
	}
	if loc != nil {
		lat, lng := loc.Lat, loc.Lng
		entry.Lat, entry.Lng = &lat, &lng
		point, err := geo.EncodePoint(*loc)
		if err != nil {
			return models.ActivityEntry{}, &StorageError{Op: "encode", Err: err}
		}
		entry.Point = point
	}
	if distance != nil {
		d := *distance
		entry.DistanceToday = &d
	}

	if err := t.log.Append(ctx, &entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"officer_id": officer.ID,
			"type":       typ,
		}).Error("Failed to append activity entry.")
		return models.ActivityEntry{}, &StorageError{Op: "append", Err: err}
	}
	if t.publisher != nil {
		t.publisher.Publish(entry)
	}
	return entry, nil
}

// Activities returns the full log in append order.
func (t *Tracker) Activities(ctx context.Context) ([]models.ActivityEntry, error) {
	entries, err := t.log.All(ctx)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	return entries, nil
}

// Metrics folds the full log into the dashboard KPIs.
func (t *Tracker) Metrics(ctx context.Context) (dashboard.Metrics, error) {
	entries, err := t.Activities(ctx)
	if err != nil {
		return dashboard.Metrics{}, err
	}
	return dashboard.Aggregate(entries), nil
}

// IsCallerError reports whether err is a validation or sequence error.
func IsCallerError(err error) bool {
	var ve *ValidationError
	var se *SequenceError
	return errors.As(err, &ve) || errors.As(err, &se)
}
