package tracker

import (
	"time"

	"occamy_tracker/internal/geo"
	"occamy_tracker/internal/models"
)

// Phase is an officer's position in the daily lifecycle.
type Phase string

const (
	PhaseNoSession Phase = "NoSession"
	PhaseLoggedIn  Phase = "LoggedIn"
	PhaseDayActive Phase = "DayActive"
	PhaseDayEnded  Phase = "DayEnded"
)

// CanStartDay reports whether a day may be started from this phase.
// DayEnded behaves like LoggedIn: the officer may start another day.
func (p Phase) CanStartDay() bool {
	return p == PhaseLoggedIn || p == PhaseDayEnded
}

// session is the per-officer state owned by the Tracker.
type session struct {
	officer models.Officer
	phase   Phase
	day     *workDay
}

// workDay is the in-progress day of a DayActive session.
type workDay struct {
	startedAt     time.Time
	startLocation geo.Coordinate
	ledger        Ledger
	activities    []models.ActivityEntry
}

// DayState is a read-only snapshot of an officer's lifecycle state.
type DayState struct {
	OfficerID     string                 `json:"officerId"`
	Officer       string                 `json:"officer,omitempty"`
	Phase         Phase                  `json:"phase"`
	Policy        DistancePolicy         `json:"policy,omitempty"`
	StartedAt     *time.Time             `json:"startedAt,omitempty"`
	StartLocation *geo.Coordinate        `json:"startLocation,omitempty"`
	StartOdometer *float64               `json:"startOdometer,omitempty"`
	Activities    []models.ActivityEntry `json:"activities"`
}

// DaySummary is returned when a day ends.
type DaySummary struct {
	OfficerID     string                      `json:"officerId"`
	Officer       string                      `json:"officer"`
	Policy        DistancePolicy              `json:"policy"`
	StartedAt     time.Time                   `json:"startedAt"`
	EndedAt       time.Time                   `json:"endedAt"`
	StartOdometer *float64                    `json:"startOdometer,omitempty"`
	EndOdometer   *float64                    `json:"endOdometer,omitempty"`
	DistanceKm    float64                     `json:"distanceKm"`
	Activities    int                         `json:"activities"`
	ByType        map[models.ActivityType]int `json:"byType"`
	Trail         []geo.Coordinate            `json:"trail"`
	Legs          []geo.Leg                   `json:"legs"`
	Entry         models.ActivityEntry        `json:"entry"`
}

func (s *session) snapshot(officerID string) DayState {
	state := DayState{OfficerID: officerID, Phase: PhaseNoSession, Activities: []models.ActivityEntry{}}
	if s == nil {
		return state
	}
	state.Officer = s.officer.Name
	state.Phase = s.phase
	if d := s.day; d != nil {
		startedAt := d.startedAt
		loc := d.startLocation
		state.Policy = d.ledger.Policy()
		state.StartedAt = &startedAt
		state.StartLocation = &loc
		state.StartOdometer = d.ledger.StartOdometer()
		state.Activities = append(state.Activities, d.activities...)
	}
	return state
}
