package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"occamy_tracker/internal/dashboard"
	"occamy_tracker/internal/models"
	"occamy_tracker/internal/tracker"
)

// DashboardController serves the admin views over the activity log.
type DashboardController struct {
	tracker      *tracker.Tracker
	photoBaseURL string
	now          func() time.Time
}

func NewDashboardController(t *tracker.Tracker, photoBaseURL string) *DashboardController {
	return &DashboardController{tracker: t, photoBaseURL: photoBaseURL, now: time.Now}
}

func filterFrom(c *gin.Context) dashboard.Filter {
	return dashboard.Filter{
		OfficerID: strings.TrimSpace(c.Query("officer")),
		Date:      strings.TrimSpace(c.Query("date")),
	}
}

func (d *DashboardController) entries(c *gin.Context) ([]models.ActivityEntry, bool) {
	all, err := d.tracker.Activities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return filterFrom(c).Apply(all), true
}

// Activities returns the raw entries and their display rows in log order.
func (d *DashboardController) Activities(c *gin.Context) {
	entries, ok := d.entries(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activities": entries,
		"rows":       dashboard.Project(entries, d.photoBaseURL),
		"count":      len(entries),
	})
}

func (d *DashboardController) Dashboard(c *gin.Context) {
	entries, ok := d.entries(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metrics":   dashboard.Aggregate(entries),
		"breakdown": dashboard.Breakdown(entries),
		"policy":    d.tracker.Policy(),
	})
}

// Export streams the report as XLSX (default) or CSV.
func (d *DashboardController) Export(c *gin.Context) {
	entries, ok := d.entries(c)
	if !ok {
		return
	}
	rows := dashboard.Project(entries, d.photoBaseURL)
	now := d.now()
	base := fmt.Sprintf("activity_report_%s", now.Format("20060102_150405"))

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := dashboard.WriteCSV(&buf, rows); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", base))
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	case "xlsx":
		f, err := dashboard.Workbook(dashboard.Aggregate(entries), rows, now)
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		buf, err := f.WriteToBuffer()
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", base))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv", "kind": "invalidEnum"})
		return
	}
	logrus.WithFields(logrus.Fields{"rows": len(rows), "format": format}).Info("Activity report exported.")
}
