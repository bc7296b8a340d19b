package spatial

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)

func latLng(c models.Coord) s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// Distance returns the great-circle distance between two coordinates in meters
func Distance(a, b models.Coord) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * EarthRadiusMeters
}

// Bearing calculates the initial bearing (forward azimuth) from a to b.
// Returns degrees in [0, 360), where 0 is North and 90 is East.
func Bearing(a, b models.Coord) float64 {
	p1, p2 := latLng(a), latLng(b)
	lat1 := p1.Lat.Radians()
	lat2 := p2.Lat.Radians()
	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)
	bearingDeg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearingDeg+360, 360)
}

// Midpoint returns the point halfway along the great circle from a to b
func Midpoint(a, b models.Coord) models.Coord {
	mid := s2.Interpolate(0.5, s2.PointFromLatLng(latLng(a)), s2.PointFromLatLng(latLng(b)))
	ll := s2.LatLngFromPoint(mid)
	return models.Coord{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}
