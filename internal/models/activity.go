package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActivityType is the canonical, human-readable name of a logged action.
type ActivityType string

const (
	TypeDayStart        ActivityType = "Day Start"
	TypeDayEnd          ActivityType = "Day End"
	TypeOneOnOneMeeting ActivityType = "One-on-One Meeting"
	TypeGroupMeeting    ActivityType = "Group Meeting"
	TypeSale            ActivityType = "Sale"
	TypeSample          ActivityType = "Sample"
)

// FieldActivityTypes are the types an officer may log between day start and day end.
var FieldActivityTypes = []ActivityType{TypeOneOnOneMeeting, TypeGroupMeeting, TypeSale, TypeSample}

var activityTypeByKey = map[string]ActivityType{}

func init() {
	for _, t := range append([]ActivityType{TypeDayStart, TypeDayEnd}, FieldActivityTypes...) {
		activityTypeByKey[typeKey(string(t))] = t
	}
}

// typeKey folds case and strips separators so "Day Start", "day-start" and
// "DayStart" resolve to the same key.
func typeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseActivityType resolves a client supplied name to its canonical type.
func ParseActivityType(s string) (ActivityType, bool) {
	t, ok := activityTypeByKey[typeKey(s)]
	return t, ok
}

// IsDayBoundary reports whether the type marks the start or end of a day.
func (t ActivityType) IsDayBoundary() bool {
	return t == TypeDayStart || t == TypeDayEnd
}

// IsMeeting reports whether the type counts towards the meetings KPI.
func (t ActivityType) IsMeeting() bool {
	return strings.Contains(string(t), "Meeting")
}

// ActivityEntry is one immutable record of the activity log.
type ActivityEntry struct {
	ID            string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Seq           int64             `json:"seq" gorm:"uniqueIndex;not null"`
	OfficerID     string            `json:"officerId" gorm:"index;not null"`
	Officer       string            `json:"officer" gorm:"not null"`
	Type          ActivityType      `json:"type" gorm:"type:varchar(32);index;not null"`
	Lat           *float64          `json:"lat,omitempty"`
	Lng           *float64          `json:"lng,omitempty"`
	Point         []byte            `json:"-" gorm:"type:bytea"` // WKB, set when Lat/Lng are present
	Village       string            `json:"village,omitempty"`
	Payload       datatypes.JSONMap `json:"payload,omitempty" gorm:"type:jsonb"`
	Photo         string            `json:"photo,omitempty" gorm:"type:text"`
	DistanceToday *float64          `json:"distanceToday,omitempty"`
	CreatedAt     time.Time         `json:"createdAt" gorm:"index;not null"`
	Date          string            `json:"date" gorm:"type:varchar(16);index"`
}

// HasLocation reports whether both coordinates were recorded.
func (e ActivityEntry) HasLocation() bool {
	return e.Lat != nil && e.Lng != nil
}

// PayloadString returns payload[key] as a string, or "" when absent or not a string.
func (e ActivityEntry) PayloadString(key string) string {
	if e.Payload == nil {
		return ""
	}
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}
