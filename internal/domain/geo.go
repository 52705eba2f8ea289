package domain

import (
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Geo is a WGS-84 latitude/longitude pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParsePolygon parses a CAP polygon: space-separated "lat,lon" pairs. Pairs
// that fail to parse are skipped.
func ParsePolygon(polygon string) []Geo {
	var pts []Geo
	for _, pair := range strings.Fields(polygon) {
		latStr, lonStr, ok := strings.Cut(pair, ",")
		if !ok {
			continue
		}
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lon, err2 := strconv.ParseFloat(lonStr, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, Geo{Lat: lat, Lon: lon})
	}
	// CAP closes rings by repeating the first vertex.
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

// PolygonCentroid returns the spherical mean of a CAP polygon's vertices.
// ok is false when the polygon has no usable vertex.
func PolygonCentroid(polygon string) (Geo, bool) {
	pts := ParsePolygon(polygon)
	if len(pts) == 0 {
		return Geo{}, false
	}

	var sum r3.Vector
	for _, p := range pts {
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)).Vector)
	}
	if sum.Norm() == 0 {
		return Geo{}, false
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Geo{Lat: round6(ll.Lat.Degrees()), Lon: round6(ll.Lng.Degrees())}, true
}

func round6(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
