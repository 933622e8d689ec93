package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/geo"
	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/tracker"
)

// DayController serves the officer's own day lifecycle.
type DayController struct {
	tracker *tracker.Tracker
}

func NewDayController(t *tracker.Tracker) *DayController {
	return &DayController{tracker: t}
}

type readingInput struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Odometer *float64 `json:"odometer"`
}

type activityInput struct {
	Type    string                 `json:"type"`
	Lat     *float64               `json:"lat"`
	Lng     *float64               `json:"lng"`
	Village string                 `json:"village"`
	Payload map[string]interface{} `json:"payload"`
	Photo   string                 `json:"photo"`
}

func (d *DayController) State(c *gin.Context) {
	c.JSON(http.StatusOK, d.tracker.State(middleware.OfficerID(c)))
}

func (d *DayController) StartDay(c *gin.Context) {
	var body readingInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	state, err := d.tracker.StartDay(c.Request.Context(), middleware.OfficerID(c), tracker.StartDayRequest{
		Lat:      body.Lat,
		Lng:      body.Lng,
		Odometer: body.Odometer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (d *DayController) LogActivity(c *gin.Context) {
	var body activityInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := d.tracker.LogActivity(c.Request.Context(), middleware.OfficerID(c), tracker.ActivityRequest{
		Type:    body.Type,
		Lat:     body.Lat,
		Lng:     body.Lng,
		Village: body.Village,
		Payload: body.Payload,
		Photo:   body.Photo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (d *DayController) EndDay(c *gin.Context) {
	var body readingInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	summary, err := d.tracker.EndDay(c.Request.Context(), middleware.OfficerID(c), tracker.EndDayRequest{
		Lat:      body.Lat,
		Lng:      body.Lng,
		Odometer: body.Odometer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Trail returns the active day's activity locations as GeoJSON.
func (d *DayController) Trail(c *gin.Context) {
	trail, err := d.tracker.Trail(middleware.OfficerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	body, err := geo.TrailGeoJSON(trail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}
