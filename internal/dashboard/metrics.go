// Package dashboard derives the admin KPIs and display rows from the activity log.
// Every function here is a pure fold: the input slice is never modified.
package dashboard

import (
	"strings"

	"occamy_tracker/internal/models"
)

// Metrics are the dashboard KPIs.
type Metrics struct {
	TotalDistance   float64                     `json:"totalDistance"`
	TotalMeetings   int                         `json:"totalMeetings"`
	B2BSales        int                         `json:"b2bSales"`
	B2CSales        int                         `json:"b2cSales"`
	TotalActivities int                         `json:"totalActivities"`
	ByType          map[models.ActivityType]int `json:"byType"`
}

// Aggregate recomputes the KPIs over the whole log.
func Aggregate(entries []models.ActivityEntry) Metrics {
	m := Metrics{ByType: make(map[models.ActivityType]int)}
	for _, e := range entries {
		m.TotalDistance += distanceOf(e)
		m.ByType[e.Type]++
		if !e.Type.IsDayBoundary() {
			m.TotalActivities++
		}
		if e.Type.IsMeeting() {
			m.TotalMeetings++
		}
		switch saleMode(e) {
		case "B2B":
			m.B2BSales++
		case "B2C":
			m.B2CSales++
		}
	}
	return m
}

func distanceOf(e models.ActivityEntry) float64 {
	if e.DistanceToday == nil {
		return 0
	}
	return *e.DistanceToday
}

// saleMode returns the upper-cased payload mode of a Sale, or "" for anything else.
func saleMode(e models.ActivityEntry) string {
	if e.Type != models.TypeSale {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(e.PayloadString("mode")))
}

// OfficerStats is one officer's share of the KPIs.
type OfficerStats struct {
	OfficerID  string  `json:"officerId"`
	Officer    string  `json:"officer"`
	Days       int     `json:"days"`
	DistanceKm float64 `json:"distanceKm"`
	Meetings   int     `json:"meetings"`
	B2BSales   int     `json:"b2bSales"`
	B2CSales   int     `json:"b2cSales"`
	Samples    int     `json:"samples"`
	Activities int     `json:"activities"`
}

// Breakdown splits the KPIs per officer, in order of each officer's first entry.
func Breakdown(entries []models.ActivityEntry) []OfficerStats {
	index := make(map[string]int)
	var out []OfficerStats
	for _, e := range entries {
		i, ok := index[e.OfficerID]
		if !ok {
			i = len(out)
			index[e.OfficerID] = i
			out = append(out, OfficerStats{OfficerID: e.OfficerID, Officer: e.Officer})
		}
		s := &out[i]
		s.DistanceKm += distanceOf(e)
		switch {
		case e.Type == models.TypeDayEnd:
			s.Days++
		case e.Type.IsDayBoundary():
		default:
			s.Activities++
		}
		if e.Type.IsMeeting() {
			s.Meetings++
		}
		if e.Type == models.TypeSample {
			s.Samples++
		}
		switch saleMode(e) {
		case "B2B":
			s.B2BSales++
		case "B2C":
			s.B2CSales++
		}
	}
	return out
}

// Filter narrows the log before aggregation. Empty fields match everything.
type Filter struct {
	OfficerID string
	Date      string
}

// Apply returns the matching entries in their original order.
func (f Filter) Apply(entries []models.ActivityEntry) []models.ActivityEntry {
	if f.OfficerID == "" && f.Date == "" {
		return entries
	}
	out := make([]models.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		if f.OfficerID != "" && e.OfficerID != f.OfficerID {
			continue
		}
		if f.Date != "" && e.Date != f.Date {
			continue
		}
		out = append(out, e)
	}
	return out
}
