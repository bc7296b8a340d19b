package models

import "math"

// ProbeRecord is one measurement row of a geolocated traceroute
type ProbeRecord struct {
	Row int `json:"row"` // 1-based row in the source text, header included

	// Core schema
	Hop        int      `json:"hop"`
	HopValid   bool     `json:"hopValid"`
	HopRaw     string   `json:"hopRaw,omitempty"`
	Protocol   string   `json:"protocol"`
	ProbeIndex int      `json:"probeIndex"`
	RTT        *float64 `json:"rtt,omitempty"` // Milliseconds, nil on timeout
	Latitude   float64  `json:"-"`             // NaN when unparseable
	Longitude  float64  `json:"-"`             // NaN when unparseable
	LatRaw     string   `json:"latRaw,omitempty"`
	LonRaw     string   `json:"lonRaw,omitempty"`

	// Pass-through columns (ip, from, reached, stats_*, ...)
	Extra map[string]string `json:"extra,omitempty"`
}

// HasCoord reports whether both coordinates are finite
func (r ProbeRecord) HasCoord() bool {
	return isFinite(r.Latitude) && isFinite(r.Longitude)
}

// Coord returns the record's coordinate. Only meaningful when HasCoord is true.
func (r ProbeRecord) Coord() Coord {
	return Coord{Lat: r.Latitude, Lon: r.Longitude}
}

// Source returns the responding address, preferring ip over from
func (r ProbeRecord) Source() string {
	if ip := r.Extra["ip"]; ip != "" {
		return ip
	}
	return r.Extra["from"]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
