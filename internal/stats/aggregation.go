// Package stats holds the small numeric summaries used for probe round-trip times.
package stats

import (
	"math"
	"sort"
)

// Summary describes a sample of values
type Summary struct {
	Count  int
	Min    float64
	Mean   float64
	Median float64
	Max    float64
}

// Summarize computes a Summary, ignoring NaN values.
// The zero Summary is returned for an empty sample.
func Summarize(values []float64) Summary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Summary{}
	}

	sort.Float64s(clean)
	return Summary{
		Count:  len(clean),
		Min:    clean[0],
		Mean:   Mean(clean),
		Median: median(clean),
		Max:    clean[len(clean)-1],
	}
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median expects sorted input
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Round rounds v to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
