package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinate lies within the valid degree ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", c.Lng)
	}
	return nil
}

// Distance returns the great-circle distance in kilometers between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a past 1 near antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Between is Distance for two coordinates.
func Between(a, b Coordinate) float64 {
	return Distance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// PathLength sums the leg distances of consecutive points.
func PathLength(points []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Between(points[i-1], points[i])
	}
	return total
}

// Bearing calculates the initial bearing (direction) in degrees from a to b.
func Bearing(a, b Coordinate) float64 {
	lat1Rad := toRadians(a.Lat)
	lat2Rad := toRadians(b.Lat)
	deltaLon := toRadians(b.Lng - a.Lng)

	y := math.Sin(deltaLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)

	return math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
}

// Leg is one step of a trail with its length and initial heading.
type Leg struct {
	From       Coordinate `json:"from"`
	To         Coordinate `json:"to"`
	DistanceKm float64    `json:"distanceKm"`
	BearingDeg float64    `json:"bearingDeg"`
}

// Legs splits a trail into consecutive legs.
func Legs(points []Coordinate) []Leg {
	if len(points) < 2 {
		return []Leg{}
	}
	legs := make([]Leg, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		legs = append(legs, Leg{From: a, To: b, DistanceKm: Between(a, b), BearingDeg: Bearing(a, b)})
	}
	return legs
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
