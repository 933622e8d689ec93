package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"occamy_tracker/internal/models"
)

const (
	placeholder  = "-"
	notAvailable = "N/A"
)

// Row is the display projection of one log entry.
type Row struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Officer     string `json:"officer"`
	Type        string `json:"type"`
	Travel      string `json:"travel"`
	Village     string `json:"village"`
	GPS         string `json:"gps"`
	Proof       string `json:"proof"`
	PhotoInline bool   `json:"photoInline"`
}

// Project maps entries to display rows, preserving log order. Server-side photo
// paths are resolved against photoBaseURL; inline data: photos are kept as they are.
func Project(entries []models.ActivityEntry, photoBaseURL string) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			ID:          e.ID,
			Date:        orDefault(e.Date, notAvailable),
			Officer:     orDefault(e.Officer, notAvailable),
			Type:        string(e.Type),
			Travel:      travel(e.DistanceToday),
			Village:     villageOf(e),
			GPS:         gps(e),
			Proof:       PhotoLink(e.Photo, photoBaseURL),
			PhotoInline: IsInlinePhoto(e.Photo),
		})
	}
	return rows
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func travel(d *float64) string {
	if d == nil || *d == 0 {
		return placeholder
	}
	return FormatKm(*d) + " km"
}

// FormatKm renders a distance rounded to two decimals without trailing zeros.
func FormatKm(km float64) string {
	return strconv.FormatFloat(math.Round(km*100)/100, 'f', -1, 64)
}

func villageOf(e models.ActivityEntry) string {
	if v := strings.TrimSpace(e.Village); v != "" {
		return v
	}
	return orDefault(e.PayloadString("village"), notAvailable)
}

func gps(e models.ActivityEntry) string {
	if !e.HasLocation() {
		return notAvailable
	}
	return fmt.Sprintf("%.2f, %.2f", *e.Lat, *e.Lng)
}

// IsInlinePhoto reports whether the photo reference carries its own bytes.
func IsInlinePhoto(photo string) bool {
	return strings.HasPrefix(photo, "data:")
}

// PhotoLink returns the URL a viewer should open for the photo reference, or "-".
func PhotoLink(photo, baseURL string) string {
	switch {
	case photo == "":
		return placeholder
	case IsInlinePhoto(photo), baseURL == "":
		return photo
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(photo, "/")
}
