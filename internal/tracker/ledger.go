package tracker

import (
	"fmt"
	"strings"

	"occamy_tracker/internal/geo"
)

// DistancePolicy selects how the distance travelled in a day is computed.
type DistancePolicy string

const (
	// PolicyOdometer uses end reading minus start reading. Decreasing readings are rejected.
	PolicyOdometer DistancePolicy = "odometer"
	// PolicyGPSTrail sums haversine legs between the day's logged activity locations.
	PolicyGPSTrail DistancePolicy = "gps-trail"
)

func ParseDistancePolicy(s string) (DistancePolicy, error) {
	switch DistancePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOdometer:
		return PolicyOdometer, nil
	case PolicyGPSTrail, "gps", "trail":
		return PolicyGPSTrail, nil
	}
	return "", fmt.Errorf("unknown distance policy %q", s)
}

// Ledger accumulates one day's distance inputs. It is created on day start and
// discarded once the day-end entry has been stored.
type Ledger interface {
	Policy() DistancePolicy
	StartOdometer() *float64
	// RecordWaypoint adds the location of a logged field activity.
	RecordWaypoint(c geo.Coordinate)
	// EndDay computes the day's distance in kilometers without changing the ledger.
	EndDay(endOdometer *float64) (float64, error)
	Trail() []geo.Coordinate
}

// StartLedger opens a ledger for a new day.
func StartLedger(policy DistancePolicy, odometer *float64) Ledger {
	base := waypoints{}
	if odometer != nil {
		v := *odometer
		base.start = &v
	}
	if policy == PolicyGPSTrail {
		return &trailLedger{waypoints: base}
	}
	return &odometerLedger{waypoints: base}
}

type waypoints struct {
	start  *float64
	points []geo.Coordinate
}

func (w *waypoints) StartOdometer() *float64 { return w.start }

func (w *waypoints) RecordWaypoint(c geo.Coordinate) {
	w.points = append(w.points, c)
}

func (w *waypoints) Trail() []geo.Coordinate {
	out := make([]geo.Coordinate, len(w.points))
	copy(out, w.points)
	return out
}

type odometerLedger struct {
	waypoints
}

func (l *odometerLedger) Policy() DistancePolicy { return PolicyOdometer }

func (l *odometerLedger) EndDay(endOdometer *float64) (float64, error) {
	if l.start == nil {
		return 0, missingField("startOdometer")
	}
	if endOdometer == nil {
		return 0, missingField("odometer")
	}
	if *endOdometer < *l.start {
		return 0, &ValidationError{
			Kind:    InvalidValue,
			Field:   "odometer",
			Message: fmt.Sprintf("end reading %g is lower than start reading %g", *endOdometer, *l.start),
		}
	}
	return *endOdometer - *l.start, nil
}

type trailLedger struct {
	waypoints
}

func (l *trailLedger) Policy() DistancePolicy { return PolicyGPSTrail }

func (l *trailLedger) EndDay(_ *float64) (float64, error) {
	return geo.PathLength(l.points), nil
}
