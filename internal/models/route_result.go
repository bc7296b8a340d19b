package models

import "time"

// DiagnosticKind classifies a recovered data problem
type DiagnosticKind string

const (
	DiagMalformedInput    DiagnosticKind = "MALFORMED_INPUT"
	DiagInvalidCoordinate DiagnosticKind = "INVALID_COORDINATE"
	DiagEmptyRoute        DiagnosticKind = "EMPTY_ROUTE"
	DiagSourceUnavailable DiagnosticKind = "SOURCE_UNAVAILABLE"
)

// Diagnostic is a per-row or per-route problem that was handled locally
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Route   string         `json:"route,omitempty"`
	Row     int            `json:"row,omitempty"`
	Message string         `json:"message"`
}

// Route run status values
const (
	StatusProcessed   = "processed"
	StatusEmpty       = "empty"
	StatusUnavailable = "unavailable"
)

// RouteResult reports what one ProcessRoute call did
type RouteResult struct {
	RouteID       string         `json:"routeId"`
	Status        string         `json:"status"`
	Records       int            `json:"records"`
	Unplaced      int            `json:"unplaced"` // Records with invalid coordinates
	PointsCreated int            `json:"pointsCreated"`
	PointsUpdated int            `json:"pointsUpdated"`
	Points        []Coord        `json:"points"` // Route order, first occurrence
	Segments      []RouteSegment `json:"segments"`
	Focal         *Coord         `json:"focal,omitempty"`
	PathMeters    float64        `json:"pathMeters"`
	Diagnostics   []Diagnostic   `json:"diagnostics,omitempty"`
	ProcessedAt   time.Time      `json:"processedAt"`
}

// Processed reports whether the route produced anything to draw
func (r *RouteResult) Processed() bool {
	return r.Status == StatusProcessed
}

// BatchSummary aggregates a ProcessBatch call
type BatchSummary struct {
	Attempted     int            `json:"attempted"`
	Parsed        int            `json:"parsed"`
	Failed        int            `json:"failed"`
	Empty         int            `json:"empty"`
	PointsCreated int            `json:"pointsCreated"`
	PointsUpdated int            `json:"pointsUpdated"`
	SegmentsDrawn int            `json:"segmentsDrawn"`
	Cancelled     bool           `json:"cancelled"`
	Routes        []*RouteResult `json:"routes"`
	Diagnostics   []Diagnostic   `json:"diagnostics,omitempty"`
}

// Add folds a route result into the summary
func (b *BatchSummary) Add(r *RouteResult) {
	b.Routes = append(b.Routes, r)
	switch r.Status {
	case StatusProcessed:
		b.Parsed++
	case StatusEmpty:
		b.Empty++
	case StatusUnavailable:
		b.Failed++
	}
	b.PointsCreated += r.PointsCreated
	b.PointsUpdated += r.PointsUpdated
	b.SegmentsDrawn += len(r.Segments)
	b.Diagnostics = append(b.Diagnostics, r.Diagnostics...)
}

// RouteRun is a persisted record of a processed route
type RouteRun struct {
	ID            int64        `json:"id" db:"id"`
	RouteID       string       `json:"routeId" db:"route_id"`
	Status        string       `json:"status" db:"status"`
	Records       int          `json:"records" db:"records"`
	Unplaced      int          `json:"unplaced" db:"unplaced"`
	PointsCreated int          `json:"pointsCreated" db:"points_created"`
	PointsUpdated int          `json:"pointsUpdated" db:"points_updated"`
	Segments      int          `json:"segments" db:"segments"`
	PathMeters    float64      `json:"pathMeters" db:"path_meters"`
	FocalLat      *float64     `json:"focalLat,omitempty" db:"focal_lat"`
	FocalLon      *float64     `json:"focalLon,omitempty" db:"focal_lon"`
	Diagnostics   []Diagnostic `json:"diagnostics,omitempty" db:"diagnostics_json"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
}

// NewRouteRun builds the persisted record for r
func NewRouteRun(r *RouteResult) RouteRun {
	run := RouteRun{
		RouteID:       r.RouteID,
		Status:        r.Status,
		Records:       r.Records,
		Unplaced:      r.Unplaced,
		PointsCreated: r.PointsCreated,
		PointsUpdated: r.PointsUpdated,
		Segments:      len(r.Segments),
		PathMeters:    r.PathMeters,
		Diagnostics:   r.Diagnostics,
		CreatedAt:     r.ProcessedAt,
	}
	if r.Focal != nil {
		lat, lon := r.Focal.Lat, r.Focal.Lon
		run.FocalLat = &lat
		run.FocalLon = &lon
	}
	return run
}
