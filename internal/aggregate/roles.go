package aggregate

import "github.com/jengzang/tracemap-backend-go/internal/models"

// HopRange is the span of valid hop numbers in one route's probe batch
type HopRange struct {
	Min   int
	Max   int
	Valid bool
}

// ClassifyHops computes the hop range over records with a parseable hop
func ClassifyHops(records []models.ProbeRecord) HopRange {
	var hr HopRange
	for _, rec := range records {
		if !rec.HopValid {
			continue
		}
		if !hr.Valid {
			hr = HopRange{Min: rec.Hop, Max: rec.Hop, Valid: true}
			continue
		}
		if rec.Hop < hr.Min {
			hr.Min = rec.Hop
		}
		if rec.Hop > hr.Max {
			hr.Max = rec.Hop
		}
	}
	return hr
}

// Suggest returns the role a record suggests for its point.
// The last hop wins a tie, so a single-hop route is drawn as an end point.
func (h HopRange) Suggest(rec models.ProbeRecord) models.Role {
	if !h.Valid || !rec.HopValid {
		return models.RoleIntermediate
	}
	switch rec.Hop {
	case h.Max:
		return models.RoleEnd
	case h.Min:
		return models.RoleStart
	default:
		return models.RoleIntermediate
	}
}
