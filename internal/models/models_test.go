package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseActivityType(t *testing.T) {
	tests := []struct {
		in       string
		expected ActivityType
		ok       bool
	}{
		{"Day Start", TypeDayStart, true},
		{"DayStart", TypeDayStart, true},
		{"day-end", TypeDayEnd, true},
		{"One-on-One Meeting", TypeOneOnOneMeeting, true},
		{"OneOnOneMeeting", TypeOneOnOneMeeting, true},
		{"group_meeting", TypeGroupMeeting, true},
		{"SALE", TypeSale, true},
		{"sample", TypeSample, true},
		{"Lunch", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseActivityType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestActivityTypePredicates(t *testing.T) {
	assert.True(t, TypeDayStart.IsDayBoundary())
	assert.True(t, TypeDayEnd.IsDayBoundary())
	assert.False(t, TypeSale.IsDayBoundary())

	assert.True(t, TypeOneOnOneMeeting.IsMeeting())
	assert.True(t, TypeGroupMeeting.IsMeeting())
	assert.False(t, TypeSample.IsMeeting())
}

func TestRoleForName(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleForName("admin"))
	assert.Equal(t, RoleAdmin, RoleForName(" Admin "))
	assert.Equal(t, RoleOfficer, RoleForName("Ravi"))
	assert.Equal(t, RoleOfficer, RoleForName("administrator"))
}

func TestPayloadString(t *testing.T) {
	e := ActivityEntry{Payload: map[string]interface{}{"mode": "B2B", "qty": 3.0}}
	assert.Equal(t, "B2B", e.PayloadString("mode"))
	assert.Equal(t, "", e.PayloadString("qty"))
	assert.Equal(t, "", ActivityEntry{}.PayloadString("mode"))
}
