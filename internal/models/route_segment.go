package models

// RouteSegment is a directed edge between two points of one route traversal
type RouteSegment struct {
	RouteID string `json:"routeId"`
	Seq     int    `json:"seq"` // Emission order within the route
	From    Coord  `json:"from"`
	To      Coord  `json:"to"`

	// Derived geometry
	DistanceMeters float64 `json:"distanceMeters"`
	Bearing        float64 `json:"bearing"` // Degrees, 0 = North
}

// SegmentKey identifies a directed coordinate pair
type SegmentKey struct {
	From Coord
	To   Coord
}

// Key returns the directed dedup key of s
func (s RouteSegment) Key() SegmentKey {
	return SegmentKey{From: s.From, To: s.To}
}
