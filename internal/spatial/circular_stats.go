package spatial

import (
	"math"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// circularSums returns the weighted sine and cosine sums of angles in degrees
func circularSums(angles, weights []float64) (sumSin, sumCos, total float64) {
	for i, angle := range angles {
		w := 1.0
		if weights != nil {
			if i >= len(weights) {
				break
			}
			w = weights[i]
		}
		rad := angle * math.Pi / 180
		sumSin += w * math.Sin(rad)
		sumCos += w * math.Cos(rad)
		total += w
	}
	return sumSin, sumCos, total
}

// CircularMeanDegrees returns the weighted mean direction in [0, 360).
// weights may be nil for equal weights.
func CircularMeanDegrees(angles, weights []float64) float64 {
	sumSin, sumCos, _ := circularSums(angles, weights)
	deg := math.Atan2(sumSin, sumCos) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// MeanResultantLength ranges from 0 (no common direction) to 1 (all angles identical)
func MeanResultantLength(angles, weights []float64) float64 {
	sumSin, sumCos, total := circularSums(angles, weights)
	if total == 0 {
		return 0
	}
	return math.Sqrt(sumSin*sumSin+sumCos*sumCos) / total
}

// Heading is the length-weighted mean bearing of a set of segments
type Heading struct {
	Bearing       float64 `json:"bearing"`       // Degrees, 0 = North
	Concentration float64 `json:"concentration"` // Mean resultant length
}

// SegmentHeading computes the dominant direction of segs. ok is false when
// there is no segment with positive length.
func SegmentHeading(segs []models.RouteSegment) (h Heading, ok bool) {
	bearings := make([]float64, 0, len(segs))
	weights := make([]float64, 0, len(segs))
	for _, s := range segs {
		if s.DistanceMeters <= 0 {
			continue
		}
		bearings = append(bearings, s.Bearing)
		weights = append(weights, s.DistanceMeters)
	}
	if len(bearings) == 0 {
		return Heading{}, false
	}
	return Heading{
		Bearing:       CircularMeanDegrees(bearings, weights),
		Concentration: MeanResultantLength(bearings, weights),
	}, true
}
