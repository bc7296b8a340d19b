package stats

import (
	"math"
	"sort"
)

// Percentiles returns the p-th percentiles (0-100) of values, ignoring NaN.
// Uses linear interpolation between closest ranks.
func Percentiles(values []float64, ps ...float64) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}

	results := make([]float64, len(ps))
	if len(sorted) == 0 {
		return results
	}
	sort.Float64s(sorted)

	for i, p := range ps {
		p = math.Max(0, math.Min(100, p))
		index := p / 100 * float64(len(sorted)-1)
		lower := int(math.Floor(index))
		upper := int(math.Ceil(index))

		if lower == upper {
			results[i] = sorted[lower]
		} else {
			weight := index - float64(lower)
			results[i] = sorted[lower]*(1-weight) + sorted[upper]*weight
		}
	}

	return results
}

// Percentile returns a single percentile of values
func Percentile(values []float64, p float64) float64 {
	return Percentiles(values, p)[0]
}
