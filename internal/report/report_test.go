package report

import (
	"strings"
	"testing"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

func TestBatch(t *testing.T) {
	summary := &models.BatchSummary{}
	summary.Add(&models.RouteResult{
		RouteID:    "8.8.8.8",
		Status:     models.StatusProcessed,
		Records:    4,
		Points:     []models.Coord{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}},
		Segments:   []models.RouteSegment{{RouteID: "8.8.8.8"}},
		PathMeters: 157000,
	})
	summary.Add(&models.RouteResult{
		RouteID: "1.1.1.1",
		Status:  models.StatusUnavailable,
		Diagnostics: []models.Diagnostic{{
			Kind:    models.DiagSourceUnavailable,
			Route:   "1.1.1.1",
			Message: "route data not found",
		}},
	})
	summary.Attempted = 2

	out := Batch(summary, "route")

	for _, want := range []string{
		"Tracemap batch report",
		"2 attempted, 1 loaded, 0 empty, 1 failed",
		"dedup: route",
		"8.8.8.8",
		"157.0",
		"unavailable",
		"Diagnostics (1)",
		"SOURCE_UNAVAILABLE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "No routes were successfully loaded") {
		t.Error("report claims nothing loaded")
	}
}

func TestBatchNothingLoaded(t *testing.T) {
	summary := &models.BatchSummary{Attempted: 1, Cancelled: true}
	out := Batch(summary, "global")
	if !strings.Contains(out, "No routes were successfully loaded and processed") {
		t.Errorf("missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "Batch cancelled") {
		t.Errorf("missing cancellation line:\n%s", out)
	}
}

func TestDiagnostic(t *testing.T) {
	got := Diagnostic(models.Diagnostic{Kind: models.DiagInvalidCoordinate, Route: "r1", Row: 3, Message: "bad"})
	if got != "r1:3 INVALID_COORDINATE bad" {
		t.Errorf("Diagnostic = %q", got)
	}
}
