package spatial

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// PathLength calculates the total length of a coordinate sequence in meters
func PathLength(coords []models.Coord) float64 {
	if len(coords) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1], coords[i])
	}
	return total
}

// Bounds is a latitude/longitude rectangle
type Bounds struct {
	rect s2.Rect
}

// BoundsOf returns the smallest rectangle containing every coordinate.
// The result is empty when coords is empty.
func BoundsOf(coords []models.Coord) Bounds {
	rect := s2.EmptyRect()
	for _, c := range coords {
		rect = rect.AddPoint(latLng(c))
	}
	return Bounds{rect: rect}
}

// NewBounds builds a rectangle from corner degrees. Longitude runs eastward
// from minLon to maxLon, so minLon > maxLon crosses the antimeridian.
func NewBounds(minLat, minLon, maxLat, maxLon float64) Bounds {
	lat := r1.IntervalFromPoint(minLat * math.Pi / 180).AddPoint(maxLat * math.Pi / 180)
	lng := s1.IntervalFromEndpoints(minLon*math.Pi/180, maxLon*math.Pi/180)
	return Bounds{rect: s2.Rect{Lat: lat, Lng: lng}}
}

// Empty reports whether the rectangle contains no points
func (b Bounds) Empty() bool {
	return b.rect.IsEmpty()
}

// Contains reports whether c lies inside the rectangle
func (b Bounds) Contains(c models.Coord) bool {
	return b.rect.ContainsLatLng(latLng(c))
}

// Center returns the rectangle's center
func (b Bounds) Center() models.Coord {
	ll := b.rect.Center()
	return models.Coord{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}

// Corners returns (minLat, minLon, maxLat, maxLon) in degrees
func (b Bounds) Corners() (float64, float64, float64, float64) {
	lo, hi := b.rect.Lo(), b.rect.Hi()
	return lo.Lat.Degrees(), lo.Lng.Degrees(), hi.Lat.Degrees(), hi.Lng.Degrees()
}
