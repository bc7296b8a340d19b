package models

// PointFilter represents filter parameters for querying points
type PointFilter struct {
	Role      string  `form:"role"`      // start, intermediate, end
	MinProbes int     `form:"minProbes"` // Minimum merged probe count
	MinLat    float64 `form:"minLat"`
	MaxLat    float64 `form:"maxLat"`
	MinLon    float64 `form:"minLon"`
	MaxLon    float64 `form:"maxLon"`
	Limit     int     `form:"limit"`
}

// SegmentFilter represents filter parameters for querying drawn segments
type SegmentFilter struct {
	RouteID     string  `form:"routeId"`
	MinDistance float64 `form:"minDistance"` // Meters
	Limit       int     `form:"limit"`
}

// RunFilter represents filter parameters for persisted route runs
type RunFilter struct {
	RouteID  string `form:"routeId"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// BatchRequest is the body of POST /api/v1/batches
type BatchRequest struct {
	RouteIDs []string `json:"routeIds"` // Empty means the configured targets file
}
