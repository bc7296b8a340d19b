// Package segment derives directed route segments from ordered route points.
package segment

import (
	"fmt"
	"strings"

	"github.com/jengzang/tracemap-backend-go/internal/models"
	"github.com/jengzang/tracemap-backend-go/internal/spatial"
)

// Policy selects the scope of segment de-duplication
type Policy string

const (
	// PerRoute forgets emitted pairs after every Build call, so two routes
	// sharing an edge both draw it.
	PerRoute Policy = "route"
	// Global suppresses a directed pair already drawn by any route until Reset.
	Global Policy = "global"
)

// ParsePolicy maps a config value to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PerRoute:
		return PerRoute, nil
	case Global:
		return Global, nil
	}
	return "", fmt.Errorf("unknown segment dedup policy %q", s)
}

// Builder emits segments for route point sequences
type Builder struct {
	policy Policy
	drawn  map[models.SegmentKey]struct{} // Global policy only
}

// NewBuilder creates a builder with the given policy
func NewBuilder(policy Policy) *Builder {
	if policy == "" {
		policy = PerRoute
	}
	return &Builder{
		policy: policy,
		drawn:  make(map[models.SegmentKey]struct{}),
	}
}

// Policy returns the builder's dedup policy
func (b *Builder) Policy() Policy {
	return b.policy
}

// Build walks the ordered points of one route and returns its segments in
// traversal order. Zero-length pairs are skipped, and a directed pair is
// emitted at most once; the reverse direction is a different segment.
func (b *Builder) Build(ordered []models.Coord, routeID string) []models.RouteSegment {
	if routeID == "" {
		panic("segment: Build requires a route id")
	}
	if len(ordered) < 2 {
		return nil
	}

	seen := b.drawn
	if b.policy != Global {
		seen = make(map[models.SegmentKey]struct{}, len(ordered)-1)
	}

	segments := make([]models.RouteSegment, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		from, to := ordered[i-1], ordered[i]
		if from == to {
			continue
		}

		key := models.SegmentKey{From: from, To: to}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		segments = append(segments, models.RouteSegment{
			RouteID:        routeID,
			Seq:            len(segments),
			From:           from,
			To:             to,
			DistanceMeters: spatial.Distance(from, to),
			Bearing:        spatial.Bearing(from, to),
		})
	}

	return segments
}

// Reset forgets globally drawn pairs. It has no effect under PerRoute.
func (b *Builder) Reset() {
	b.drawn = make(map[models.SegmentKey]struct{})
}
