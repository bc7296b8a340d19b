package stats

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{12.5, math.NaN(), 3, 7.5})
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if s.Min != 3 || s.Max != 12.5 {
		t.Errorf("min/max = %v/%v", s.Min, s.Max)
	}
	if s.Median != 7.5 {
		t.Errorf("median = %v, want 7.5", s.Median)
	}
	if math.Abs(s.Mean-23.0/3) > 1e-9 {
		t.Errorf("mean = %v", s.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 2); got != 1.23 {
		t.Errorf("Round = %v", got)
	}
}

func TestPercentiles(t *testing.T) {
	values := []float64{4, 1, math.NaN(), 3, 2}
	got := Percentiles(values, 0, 50, 100, 75)
	want := []float64{1, 2.5, 4, 3.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("percentile %d = %v, want %v", i, got[i], want[i])
		}
	}
	if p := Percentile(nil, 50); p != 0 {
		t.Errorf("empty percentile = %v", p)
	}
}
