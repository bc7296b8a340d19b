package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jengzang/tracemap-backend-go/internal/database"
	"github.com/jengzang/tracemap-backend-go/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testResult(routeID string) *models.RouteResult {
	a := models.Coord{Lat: 10, Lon: 10}
	b := models.Coord{Lat: 20, Lon: 20}
	return &models.RouteResult{
		RouteID:       routeID,
		Status:        models.StatusProcessed,
		Records:       3,
		Unplaced:      1,
		PointsCreated: 2,
		Points:        []models.Coord{a, b},
		Segments: []models.RouteSegment{
			{RouteID: routeID, Seq: 0, From: a, To: b, DistanceMeters: 1500000, Bearing: 40},
		},
		Focal:      &a,
		PathMeters: 1500000,
		Diagnostics: []models.Diagnostic{
			{Kind: models.DiagInvalidCoordinate, Route: routeID, Row: 3, Message: "invalid coordinate"},
		},
		ProcessedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRouteRunCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	runs := NewRouteRunRepository(db)

	res := testResult("1.1.1.1")
	id, err := runs.Create(models.NewRouteRun(res), res.Segments)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	run, err := runs.GetRunByID(id)
	if err != nil {
		t.Fatalf("GetRunByID: %v", err)
	}
	if run == nil {
		t.Fatal("run not found")
	}
	if run.RouteID != "1.1.1.1" || run.Segments != 1 || run.Unplaced != 1 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.FocalLat == nil || *run.FocalLat != 10 {
		t.Errorf("focal lat = %v, want 10", run.FocalLat)
	}
	if len(run.Diagnostics) != 1 || run.Diagnostics[0].Kind != models.DiagInvalidCoordinate {
		t.Errorf("diagnostics = %+v", run.Diagnostics)
	}

	missing, err := runs.GetRunByID(id + 100)
	if err != nil || missing != nil {
		t.Errorf("missing run = %v, %v; want nil, nil", missing, err)
	}
}

func TestGetRunsFiltersAndPages(t *testing.T) {
	db := openTestDB(t)
	runs := NewRouteRunRepository(db)

	for _, id := range []string{"a", "b", "a"} {
		res := testResult(id)
		if _, err := runs.Create(models.NewRouteRun(res), nil); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	empty := &models.RouteResult{RouteID: "c", Status: models.StatusEmpty, ProcessedAt: time.Now()}
	if _, err := runs.Create(models.NewRouteRun(empty), nil); err != nil {
		t.Fatalf("Create empty: %v", err)
	}

	list, total, err := runs.GetRuns(models.RunFilter{RouteID: "a"})
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("route a: total=%d len=%d, want 2", total, len(list))
	}

	list, total, err = runs.GetRuns(models.RunFilter{Page: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("GetRuns page 2: %v", err)
	}
	if total != 4 || len(list) != 1 {
		t.Errorf("page 2: total=%d len=%d, want 4 and 1", total, len(list))
	}

	list, _, err = runs.GetRuns(models.RunFilter{Status: models.StatusEmpty})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].FocalLat != nil {
		t.Errorf("empty runs = %+v", list)
	}
}

func TestSegmentsPersistWithRun(t *testing.T) {
	db := openTestDB(t)
	runs := NewRouteRunRepository(db)
	segments := NewSegmentRepository(db)

	for _, id := range []string{"r1", "r2"} {
		res := testResult(id)
		if _, err := runs.Create(models.NewRouteRun(res), res.Segments); err != nil {
			t.Fatal(err)
		}
	}

	got, err := segments.GetSegments(models.SegmentFilter{RouteID: "r2"})
	if err != nil {
		t.Fatalf("GetSegments: %v", err)
	}
	if len(got) != 1 || got[0].RouteID != "r2" || got[0].To.Lat != 20 {
		t.Errorf("segments = %+v", got)
	}

	got, err = segments.GetSegments(models.SegmentFilter{MinDistance: 2000000})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no long segments, got %d", len(got))
	}

	counts, err := segments.CountByRoute()
	if err != nil {
		t.Fatal(err)
	}
	if counts["r1"] != 1 || counts["r2"] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if err := runs.DeleteAll(); err != nil {
		t.Fatal(err)
	}
	got, _ = segments.GetSegments(models.SegmentFilter{})
	if len(got) != 0 {
		t.Errorf("segments after DeleteAll = %d", len(got))
	}
}

func TestPointUpsert(t *testing.T) {
	db := openTestDB(t)
	points := NewPointRepository(db)

	p := models.GeoPoint{
		ID:     1,
		Coord:  models.Coord{Lat: 10, Lon: 10},
		Role:   models.RoleIntermediate,
		Probes: []models.ProbeRecord{{Row: 1}},
		Description: models.PointDescription{
			Location:   "10.00000, 10.00000",
			ProbeCount: 1,
		},
	}
	if err := points.Upsert([]models.GeoPoint{p}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	p.Role = models.RoleEnd
	p.Probes = append(p.Probes, models.ProbeRecord{Row: 2})
	p.Description.ProbeCount = 2
	if err := points.Upsert([]models.GeoPoint{p}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := points.GetPoints(models.PointFilter{})
	if err != nil {
		t.Fatalf("GetPoints: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	if got[0].Role != models.RoleEnd || got[0].ProbeCount != 2 || got[0].Description.ProbeCount != 2 {
		t.Errorf("unexpected point: %+v", got[0])
	}

	got, _ = points.GetPoints(models.PointFilter{Role: string(models.RoleStart)})
	if len(got) != 0 {
		t.Errorf("start points = %d, want 0", len(got))
	}

	if err := points.DeleteAll(); err != nil {
		t.Fatal(err)
	}
	got, _ = points.GetPoints(models.PointFilter{})
	if len(got) != 0 {
		t.Errorf("points after DeleteAll = %d", len(got))
	}
}
