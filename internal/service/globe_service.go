package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jengzang/tracemap-backend-go/internal/models"
	"github.com/jengzang/tracemap-backend-go/internal/render"
	"github.com/jengzang/tracemap-backend-go/internal/repository"
	"github.com/jengzang/tracemap-backend-go/internal/resolver"
	"github.com/jengzang/tracemap-backend-go/internal/route"
	"github.com/jengzang/tracemap-backend-go/internal/source"
	"github.com/jengzang/tracemap-backend-go/internal/spatial"
	tmstats "github.com/jengzang/tracemap-backend-go/internal/stats"
)

var (
	// ErrPointNotFound is returned when no point has the requested ID
	ErrPointNotFound = errors.New("point not found")
	// ErrInvalidRouteID is returned for blank route identifiers
	ErrInvalidRouteID = errors.New("route id must not be empty")
	// ErrNoTargets is returned when a batch has nothing to process
	ErrNoTargets = errors.New("no routes to process")
	// ErrNoSource is returned when a batch is requested without a route source
	ErrNoSource = errors.New("no route source configured")
)

// GlobeOptions configures a GlobeService
type GlobeOptions struct {
	Source           source.Source
	Resolver         resolver.Resolver
	ResolveHostnames bool
	TargetsFile      string // Used when a batch names no routes
}

// Stats summarizes the current session
type Stats struct {
	Points         int              `json:"points"`
	Unplaced       int              `json:"unplaced"`
	Segments       int              `json:"segments"`
	PathMeters     float64          `json:"pathMeters"`
	Policy         string           `json:"policy"`
	Bounds         *BoundsView      `json:"bounds,omitempty"`
	SegmentMeters  *LengthSummary   `json:"segmentMeters,omitempty"`
	Heading        *spatial.Heading `json:"heading,omitempty"`
	StoredSegments map[string]int   `json:"storedSegments"` // Persisted segment count per route
	LastCommandSeq int64            `json:"lastCommandSeq"`
}

// LengthSummary describes the distribution of segment lengths
type LengthSummary struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	Max float64 `json:"max"`
}

// BoundsView is the bounding box of the current points
type BoundsView struct {
	MinLat float64      `json:"minLat"`
	MinLon float64      `json:"minLon"`
	MaxLat float64      `json:"maxLat"`
	MaxLon float64      `json:"maxLon"`
	Center models.Coord `json:"center"`
}

// GlobeService handles route processing and queries over the shared session
type GlobeService struct {
	// writeMu orders session changes with their stored snapshot
	writeMu sync.Mutex

	coord    *route.Coordinator
	recorder *render.Recorder
	runs     *repository.RouteRunRepository
	points   *repository.PointRepository
	segments *repository.SegmentRepository
	opts     GlobeOptions
}

// NewGlobeService creates a new globe service
func NewGlobeService(
	coord *route.Coordinator,
	recorder *render.Recorder,
	runs *repository.RouteRunRepository,
	points *repository.PointRepository,
	segments *repository.SegmentRepository,
	opts GlobeOptions,
) *GlobeService {
	if opts.Resolver == nil {
		opts.Resolver = resolver.Nop{}
	}
	if recorder == nil {
		recorder = render.NewRecorder(0)
	}
	return &GlobeService{
		coord:    coord,
		recorder: recorder,
		runs:     runs,
		points:   points,
		segments: segments,
		opts:     opts,
	}
}

// ProcessRoute processes one route's raw text and persists the outcome
func (s *GlobeService) ProcessRoute(routeID, rawText string) (*models.RouteResult, error) {
	routeID = strings.TrimSpace(routeID)
	if routeID == "" {
		return nil, ErrInvalidRouteID
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result := s.coord.ProcessRoute(routeID, rawText)
	s.persist(result)
	return result, nil
}

// ProcessBatch fetches and processes routes from the configured source.
// With no routeIDs the targets file is read.
func (s *GlobeService) ProcessBatch(ctx context.Context, routeIDs []string) (*models.BatchSummary, error) {
	if s.opts.Source == nil {
		return nil, ErrNoSource
	}

	ids := make([]string, 0, len(routeIDs))
	for _, id := range routeIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 && len(routeIDs) == 0 && s.opts.TargetsFile != "" {
		targets, err := source.ReadTargetsFile(s.opts.TargetsFile)
		if err != nil {
			return nil, err
		}
		ids = targets
	}
	if len(ids) == 0 {
		return nil, ErrNoTargets
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// The batch starts from an empty point set
	if err := s.points.DeleteAll(); err != nil {
		log.Printf("[GlobeService] Failed to clear stored points: %v", err)
	}

	summary := s.coord.ProcessBatch(ctx, ids, s.opts.Source)
	for _, r := range summary.Routes {
		s.persist(r)
	}

	return summary, nil
}

func (s *GlobeService) persist(r *models.RouteResult) {
	if _, err := s.runs.Create(models.NewRouteRun(r), r.Segments); err != nil {
		log.Printf("[GlobeService] Failed to store run for route %s: %v", r.RouteID, err)
	}
	if len(r.Points) == 0 {
		return
	}
	if err := s.points.Upsert(s.coord.PointsAt(r.Points)); err != nil {
		log.Printf("[GlobeService] Failed to store points for route %s: %v", r.RouteID, err)
	}
}

// Points returns the current points matching the filter in discovery order
func (s *GlobeService) Points(filter models.PointFilter) []models.GeoPoint {
	var bounds *spatial.Bounds
	if filter.MinLat != 0 || filter.MaxLat != 0 || filter.MinLon != 0 || filter.MaxLon != 0 {
		b := spatial.NewBounds(filter.MinLat, filter.MinLon, filter.MaxLat, filter.MaxLon)
		bounds = &b
	}

	out := []models.GeoPoint{}
	for _, p := range s.coord.Points() {
		if filter.Role != "" && string(p.Role) != filter.Role {
			continue
		}
		if p.ProbeCount() < filter.MinProbes {
			continue
		}
		if bounds != nil && !bounds.Contains(p.Coord) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}

// Point returns one point. Probe hostnames are filled in when resolution is enabled.
func (s *GlobeService) Point(ctx context.Context, id int64) (*models.GeoPoint, error) {
	p, ok := s.coord.Point(id)
	if !ok {
		return nil, ErrPointNotFound
	}

	if s.opts.ResolveHostnames {
		probes := make([]models.ProbeDescription, len(p.Description.Probes))
		copy(probes, p.Description.Probes)
		for i := range probes {
			if i >= len(p.Probes) {
				break
			}
			ip := p.Probes[i].Source()
			if ip == "" {
				continue
			}
			name, err := s.opts.Resolver.LookupAddr(ctx, ip)
			if err != nil {
				if !errors.Is(err, resolver.ErrNoName) {
					log.Printf("[GlobeService] Reverse lookup of %s failed: %v", ip, err)
				}
				continue
			}
			probes[i].Hostname = name
		}
		p.Description.Probes = probes
	}

	return &p, nil
}

// Segments returns the drawn segments of the current session
func (s *GlobeService) Segments(filter models.SegmentFilter) []models.RouteSegment {
	out := []models.RouteSegment{}
	for _, seg := range s.coord.Segments() {
		if filter.RouteID != "" && seg.RouteID != filter.RouteID {
			continue
		}
		if seg.DistanceMeters < filter.MinDistance {
			continue
		}
		out = append(out, seg)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}

// StoredSegments returns persisted segments across all runs
func (s *GlobeService) StoredSegments(filter models.SegmentFilter) ([]models.RouteSegment, error) {
	return s.segments.GetSegments(filter)
}

// StoredPoints returns the persisted point snapshots
func (s *GlobeService) StoredPoints(filter models.PointFilter) ([]repository.PointRecord, error) {
	return s.points.GetPoints(filter)
}

// Runs returns persisted route runs, newest first
func (s *GlobeService) Runs(filter models.RunFilter) ([]models.RouteRun, int64, error) {
	return s.runs.GetRuns(filter)
}

// Run returns one persisted route run
func (s *GlobeService) Run(id int64) (*models.RouteRun, error) {
	return s.runs.GetRunByID(id)
}

// Commands returns render commands after seq and the latest sequence number
func (s *GlobeService) Commands(since int64) ([]render.Command, int64) {
	return s.recorder.Since(since), s.recorder.Last()
}

// Unplaced returns probes that had no valid coordinate
func (s *GlobeService) Unplaced() []models.ProbeRecord {
	return s.coord.Unplaced()
}

// Stats summarizes the session
func (s *GlobeService) Stats() (*Stats, error) {
	points := s.coord.Points()
	segs := s.coord.Segments()

	stats := &Stats{
		Points:         len(points),
		Unplaced:       len(s.coord.Unplaced()),
		Segments:       len(segs),
		Policy:         string(s.coord.Policy()),
		LastCommandSeq: s.recorder.Last(),
	}
	if len(segs) > 0 {
		lengths := make([]float64, len(segs))
		for i, seg := range segs {
			lengths[i] = seg.DistanceMeters
			stats.PathMeters += seg.DistanceMeters
		}
		p := tmstats.Percentiles(lengths, 50, 95, 100)
		stats.SegmentMeters = &LengthSummary{
			P50: tmstats.Round(p[0], 1),
			P95: tmstats.Round(p[1], 1),
			Max: tmstats.Round(p[2], 1),
		}
		if h, ok := spatial.SegmentHeading(segs); ok {
			stats.Heading = &h
		}
	}

	if len(points) > 0 {
		coords := make([]models.Coord, len(points))
		for i, p := range points {
			coords[i] = p.Coord
		}
		b := spatial.BoundsOf(coords)
		minLat, minLon, maxLat, maxLon := b.Corners()
		stats.Bounds = &BoundsView{
			MinLat: minLat, MinLon: minLon,
			MaxLat: maxLat, MaxLon: maxLon,
			Center: b.Center(),
		}
	}

	counts, err := s.segments.CountByRoute()
	if err != nil {
		return nil, fmt.Errorf("failed to count stored segments: %w", err)
	}
	stats.StoredSegments = counts

	return stats, nil
}

// Reset clears the session, the fetch cache and the stored point snapshot.
// Run history is kept.
func (s *GlobeService) Reset() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.coord.Reset()
	if inv, ok := s.opts.Source.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	if err := s.points.DeleteAll(); err != nil {
		return err
	}
	log.Printf("[GlobeService] Session reset")
	return nil
}

// ClearHistory removes stored runs and their segments
func (s *GlobeService) ClearHistory() error {
	return s.runs.DeleteAll()
}
