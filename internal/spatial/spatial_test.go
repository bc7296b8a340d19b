package spatial

import (
	"math"
	"testing"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

func TestDistance(t *testing.T) {
	// One degree of latitude is roughly 111.2 km
	d := Distance(models.Coord{Lat: 0, Lon: 0}, models.Coord{Lat: 1, Lon: 0})
	if math.Abs(d-111195) > 100 {
		t.Errorf("distance = %v", d)
	}
	if Distance(models.Coord{Lat: 5, Lon: 5}, models.Coord{Lat: 5, Lon: 5}) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestBearing(t *testing.T) {
	north := Bearing(models.Coord{Lat: 0, Lon: 0}, models.Coord{Lat: 1, Lon: 0})
	if math.Abs(north) > 1e-9 {
		t.Errorf("bearing north = %v", north)
	}
	east := Bearing(models.Coord{Lat: 0, Lon: 0}, models.Coord{Lat: 0, Lon: 1})
	if math.Abs(east-90) > 1e-9 {
		t.Errorf("bearing east = %v", east)
	}
}

func TestPathLength(t *testing.T) {
	coords := []models.Coord{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}, {Lat: 2, Lon: 0}}
	got := PathLength(coords)
	want := Distance(coords[0], coords[2])
	if math.Abs(got-want) > 1 {
		t.Errorf("path length = %v, want %v", got, want)
	}
	if PathLength(coords[:1]) != 0 {
		t.Error("single point path should be zero")
	}
}

func TestBounds(t *testing.T) {
	b := BoundsOf([]models.Coord{{Lat: 10, Lon: 20}, {Lat: 30, Lon: 40}})
	if b.Empty() {
		t.Fatal("bounds should not be empty")
	}
	if !b.Contains(models.Coord{Lat: 20, Lon: 30}) {
		t.Error("center should be contained")
	}
	if b.Contains(models.Coord{Lat: 50, Lon: 30}) {
		t.Error("outside point reported as contained")
	}
	minLat, minLon, maxLat, maxLon := b.Corners()
	if math.Abs(minLat-10) > 1e-9 || math.Abs(minLon-20) > 1e-9 || math.Abs(maxLat-30) > 1e-9 || math.Abs(maxLon-40) > 1e-9 {
		t.Errorf("corners = %v %v %v %v", minLat, minLon, maxLat, maxLon)
	}
	if !BoundsOf(nil).Empty() {
		t.Error("bounds of nothing should be empty")
	}
}

func TestNewBoundsKeepsLongitudeOrder(t *testing.T) {
	wide := NewBounds(-80, -170, 80, 170)
	if !wide.Contains(models.Coord{Lat: 0, Lon: 0}) {
		t.Error("box -170..170 should contain (0,0)")
	}
	if wide.Contains(models.Coord{Lat: 0, Lon: 179}) {
		t.Error("box -170..170 should not contain lon 179")
	}

	across := NewBounds(-80, 170, 80, -170)
	if !across.Contains(models.Coord{Lat: 0, Lon: 179}) || !across.Contains(models.Coord{Lat: 0, Lon: -175}) {
		t.Error("box 170..-170 should contain points near the antimeridian")
	}
	if across.Contains(models.Coord{Lat: 0, Lon: 0}) {
		t.Error("box 170..-170 should not contain (0,0)")
	}

	flipped := NewBounds(15, 0, 5, 25)
	if !flipped.Contains(models.Coord{Lat: 10, Lon: 20}) {
		t.Error("latitude corners should be order-insensitive")
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(models.Coord{Lat: 0, Lon: 0}, models.Coord{Lat: 0, Lon: 10})
	if math.Abs(m.Lat) > 1e-9 || math.Abs(m.Lon-5) > 1e-9 {
		t.Errorf("midpoint = %v", m)
	}
}

func TestCircularMeanWrapsNorth(t *testing.T) {
	got := CircularMeanDegrees([]float64{350, 10}, nil)
	if math.Abs(got) > 1e-9 && math.Abs(got-360) > 1e-9 {
		t.Errorf("mean of 350 and 10 = %v, want 0", got)
	}
	if r := MeanResultantLength([]float64{90, 270}, nil); r > 1e-9 {
		t.Errorf("opposite angles resultant = %v, want 0", r)
	}
}

func TestSegmentHeading(t *testing.T) {
	segs := []models.RouteSegment{
		{Bearing: 90, DistanceMeters: 3000},
		{Bearing: 0, DistanceMeters: 0},
		{Bearing: 90, DistanceMeters: 1000},
	}
	h, ok := SegmentHeading(segs)
	if !ok {
		t.Fatal("expected a heading")
	}
	if math.Abs(h.Bearing-90) > 1e-9 || math.Abs(h.Concentration-1) > 1e-9 {
		t.Errorf("heading = %+v", h)
	}

	if _, ok := SegmentHeading([]models.RouteSegment{{DistanceMeters: 0}}); ok {
		t.Error("zero-length segments have no heading")
	}
}
