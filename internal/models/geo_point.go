package models

import (
	"fmt"
	"math"
)

// Role is the topological role of a point within a route
type Role string

const (
	RoleStart        Role = "start"
	RoleIntermediate Role = "intermediate"
	RoleEnd          Role = "end"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStart, RoleIntermediate, RoleEnd:
		return true
	}
	return false
}

// Terminal reports whether r marks either end of a route
func (r Role) Terminal() bool {
	return r == RoleStart || r == RoleEnd
}

// Color is the marker color the globe uses for r
func (r Role) Color() string {
	switch r {
	case RoleStart:
		return "purple"
	case RoleEnd:
		return "red"
	default:
		return "green"
	}
}

// Coord is an exact latitude/longitude pair in degrees.
// Two coordinates are the same location only if both components compare equal.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite
func (c Coord) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}

func (c Coord) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lon)
}

// GeoPoint is a unique location on the globe with every probe observed there
type GeoPoint struct {
	ID          int64            `json:"id"`
	Coord       Coord            `json:"coord"`
	Role        Role             `json:"role"`
	Color       string           `json:"color"`
	Probes      []ProbeRecord    `json:"probes"`
	Description PointDescription `json:"description"`

	// Handle is whatever the renderer attached when the marker was placed
	Handle any `json:"-"`
}

// ProbeCount returns the number of merged probes
func (p *GeoPoint) ProbeCount() int {
	return len(p.Probes)
}

// PointDescription is the structured info-box payload for a point
type PointDescription struct {
	Location   string             `json:"location"` // "lat, lon" with 5 decimals
	ProbeCount int                `json:"probeCount"`
	RTT        *RTTSummary        `json:"rtt,omitempty"`
	Probes     []ProbeDescription `json:"probes"`
}

// ProbeDescription renders one probe at a point
type ProbeDescription struct {
	Summary  string             `json:"summary"`
	Fields   []DescriptionField `json:"fields"`
	Hostname string             `json:"hostname,omitempty"`
}

// DescriptionField is a labelled value in a probe description
type DescriptionField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RTTSummary aggregates round-trip times of the probes at a point
type RTTSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
}
