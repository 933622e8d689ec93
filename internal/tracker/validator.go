package tracker

import (
	"fmt"
	"math"
	"strings"

	"occamy_tracker/internal/geo"
	"occamy_tracker/internal/models"
)

// Enum constraints for payload fields. Values are compared case-insensitively.
var (
	MeetingCategories = []string{"Farmer", "Distributor", "Seller", "Influencer"}
	SaleModes         = []string{"B2B", "B2C"}
	SamplePurposes    = []string{"Trial", "Demo"}
)

// meetingCategoryFields are the payload keys that may carry a meeting category.
var meetingCategoryFields = []string{"type", "category", "cat"}

// LoginRequest carries the login identity.
type LoginRequest struct {
	OfficerID string
	Name      string
}

// StartDayRequest carries the day-start reading. Lat and Lng are pointers so an
// absent coordinate is never mistaken for 0.
type StartDayRequest struct {
	Lat      *float64
	Lng      *float64
	Odometer *float64
}

// ActivityRequest is one field activity submission.
type ActivityRequest struct {
	Type    string
	Lat     *float64
	Lng     *float64
	Village string
	Payload map[string]interface{}
	Photo   string
}

// EndDayRequest carries the day-end reading. Lat and Lng are optional.
type EndDayRequest struct {
	Lat      *float64
	Lng      *float64
	Odometer *float64
}

// Validator holds the per-type rule set. The distance policy decides whether
// odometer readings are mandatory.
type Validator struct {
	Policy DistancePolicy
}

func (v Validator) Login(req LoginRequest) error {
	if strings.TrimSpace(req.OfficerID) == "" {
		return missingField("officerId")
	}
	if strings.TrimSpace(req.Name) == "" {
		return missingField("name")
	}
	return nil
}

func (v Validator) StartDay(req StartDayRequest) error {
	if _, err := requireGPS(req.Lat, req.Lng); err != nil {
		return err
	}
	return v.odometer(req.Odometer)
}

func (v Validator) EndDay(req EndDayRequest) error {
	if _, err := optionalGPS(req.Lat, req.Lng); err != nil {
		return err
	}
	return v.odometer(req.Odometer)
}

func (v Validator) odometer(reading *float64) error {
	if reading == nil {
		if v.Policy == PolicyOdometer {
			return missingField("odometer")
		}
		return nil
	}
	if math.IsNaN(*reading) || math.IsInf(*reading, 0) || *reading < 0 {
		return &ValidationError{Kind: InvalidValue, Field: "odometer", Message: "odometer reading must be a non-negative number"}
	}
	return nil
}

// Activity checks a field activity submission and returns its canonical type.
func (v Validator) Activity(req ActivityRequest) (models.ActivityType, error) {
	if strings.TrimSpace(req.Type) == "" {
		return "", missingField("type")
	}
	typ, ok := models.ParseActivityType(req.Type)
	if !ok || typ.IsDayBoundary() {
		return "", &ValidationError{Kind: InvalidEnum, Field: "type", Message: fmt.Sprintf("unsupported activity type %q", req.Type)}
	}
	if _, err := requireGPS(req.Lat, req.Lng); err != nil {
		return "", err
	}
	if village(req.Village, req.Payload) == "" {
		return "", missingField("village")
	}
	if strings.TrimSpace(req.Photo) == "" {
		return "", missingField("photo")
	}

	switch typ {
	case models.TypeOneOnOneMeeting, models.TypeGroupMeeting:
		for _, field := range meetingCategoryFields {
			if err := enumField(req.Payload, field, MeetingCategories); err != nil {
				return "", err
			}
		}
	case models.TypeSale:
		if err := enumField(req.Payload, "mode", SaleModes); err != nil {
			return "", err
		}
	case models.TypeSample:
		if err := enumField(req.Payload, "purpose", SamplePurposes); err != nil {
			return "", err
		}
	}
	return typ, nil
}

// village returns the explicit village or falls back to payload["village"].
func village(explicit string, payload map[string]interface{}) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if s, ok := payload["village"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func requireGPS(lat, lng *float64) (geo.Coordinate, error) {
	if lat == nil || lng == nil {
		field := "lat"
		if lat != nil {
			field = "lng"
		}
		return geo.Coordinate{}, &ValidationError{Kind: MissingGPS, Field: field, Message: "GPS location is required"}
	}
	c := geo.Coordinate{Lat: *lat, Lng: *lng}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, &ValidationError{Kind: InvalidValue, Field: "location", Message: err.Error()}
	}
	return c, nil
}

func optionalGPS(lat, lng *float64) (*geo.Coordinate, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	c, err := requireGPS(lat, lng)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// enumField validates payload[field] against allowed when the field is present
// and non-blank.
func enumField(payload map[string]interface{}, field string, allowed []string) error {
	raw, present := payload[field]
	if !present || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return &ValidationError{Kind: InvalidEnum, Field: field, Message: fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", "))}
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(s), a) {
			return nil
		}
	}
	return &ValidationError{Kind: InvalidEnum, Field: field, Message: fmt.Sprintf("%q is not one of %s", s, strings.Join(allowed, ", "))}
}
