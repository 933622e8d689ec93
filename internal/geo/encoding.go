package geo

import (
	"encoding/binary"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// EncodePoint marshals a coordinate as a little-endian WKB point (x=lng, y=lat).
func EncodePoint(c Coordinate) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat}).SetSRID(4326)
	return wkb.Marshal(p, binary.LittleEndian)
}

// TrailGeoJSON renders the waypoints as a GeoJSON LineString. A single waypoint is
// rendered as a Point and an empty trail as null geometry.
func TrailGeoJSON(points []Coordinate) ([]byte, error) {
	switch len(points) {
	case 0:
		return []byte("null"), nil
	case 1:
		return gjson.Marshal(geom.NewPointFlat(geom.XY, []float64{points[0].Lng, points[0].Lat}))
	}
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p.Lng, p.Lat)
	}
	return gjson.Marshal(geom.NewLineStringFlat(geom.XY, flat))
}
