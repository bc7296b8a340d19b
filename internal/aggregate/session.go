// Package aggregate collapses probe records into unique geographic points.
package aggregate

import (
	"fmt"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// Outcome tells the caller what AddOrUpdatePoint did
type Outcome int

const (
	NotPlaced Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "not_placed"
	}
}

// Session is the aggregation state of one processing run: the unique points,
// the records that could not be placed, and the history of drawn segments.
//
// A Session is not safe for concurrent use; route.Coordinator serializes access.
type Session struct {
	points   map[models.Coord]*models.GeoPoint
	byID     map[int64]*models.GeoPoint
	order    []*models.GeoPoint
	unplaced []models.ProbeRecord
	segments []models.RouteSegment
	nextID   int64
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{
		points: make(map[models.Coord]*models.GeoPoint),
		byID:   make(map[int64]*models.GeoPoint),
	}
}

// AddOrUpdatePoint merges rec into the point at its exact coordinate, creating
// the point if needed. Records without finite coordinates are kept aside as
// unplaced and (nil, NotPlaced) is returned.
func (s *Session) AddOrUpdatePoint(rec models.ProbeRecord, suggested models.Role) (*models.GeoPoint, Outcome) {
	if !suggested.Valid() {
		panic(fmt.Sprintf("aggregate: unknown role %q", suggested))
	}
	if !rec.HasCoord() {
		s.unplaced = append(s.unplaced, rec)
		return nil, NotPlaced
	}

	key := rec.Coord()
	if p, ok := s.points[key]; ok {
		p.Probes = append(p.Probes, rec)
		// start/end take precedence over intermediate and never regress
		if suggested.Terminal() {
			p.Role = suggested
			p.Color = suggested.Color()
		}
		p.Description = BuildDescription(p.Probes)
		return p, Updated
	}

	s.nextID++
	probes := []models.ProbeRecord{rec}
	p := &models.GeoPoint{
		ID:          s.nextID,
		Coord:       key,
		Role:        suggested,
		Color:       suggested.Color(),
		Probes:      probes,
		Description: BuildDescription(probes),
	}
	s.points[key] = p
	s.byID[p.ID] = p
	s.order = append(s.order, p)
	return p, Created
}

// Point returns the point at c
func (s *Session) Point(c models.Coord) (*models.GeoPoint, bool) {
	p, ok := s.points[c]
	return p, ok
}

// PointByID returns the point with the given id
func (s *Session) PointByID(id int64) (*models.GeoPoint, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Points returns all points in discovery order
func (s *Session) Points() []*models.GeoPoint {
	out := make([]*models.GeoPoint, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of unique points
func (s *Session) Len() int {
	return len(s.order)
}

// Unplaced returns the records that carried no usable coordinate
func (s *Session) Unplaced() []models.ProbeRecord {
	out := make([]models.ProbeRecord, len(s.unplaced))
	copy(out, s.unplaced)
	return out
}

// RecordSegments appends drawn segments to the session history
func (s *Session) RecordSegments(segs ...models.RouteSegment) {
	s.segments = append(s.segments, segs...)
}

// Segments returns the drawn segment history in draw order
func (s *Session) Segments() []models.RouteSegment {
	out := make([]models.RouteSegment, len(s.segments))
	copy(out, s.segments)
	return out
}

// ResetPoints clears the point set and unplaced records, keeping segment history
func (s *Session) ResetPoints() {
	s.points = make(map[models.Coord]*models.GeoPoint)
	s.byID = make(map[int64]*models.GeoPoint)
	s.order = nil
	s.unplaced = nil
}

// Reset clears all session state. Point ids keep increasing so stale ids never resolve.
func (s *Session) Reset() {
	s.ResetPoints()
	s.segments = nil
}
