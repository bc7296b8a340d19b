// Package route coordinates parsing, point aggregation and segment building
// for traceroute routes against one shared aggregation session.
package route

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/tracemap-backend-go/internal/aggregate"
	"github.com/jengzang/tracemap-backend-go/internal/models"
	"github.com/jengzang/tracemap-backend-go/internal/parser"
	"github.com/jengzang/tracemap-backend-go/internal/render"
	"github.com/jengzang/tracemap-backend-go/internal/segment"
	"github.com/jengzang/tracemap-backend-go/internal/source"
)

const defaultFetchConcurrency = 8

// Options configures a Coordinator
type Options struct {
	Policy           segment.Policy
	FetchConcurrency int
}

// Coordinator owns the aggregation session. Route processing is serialized:
// each route is fully aggregated and its segments built before the next starts.
type Coordinator struct {
	mu         sync.Mutex
	session    *aggregate.Session
	builder    *segment.Builder
	renderer   render.Renderer
	fetchLimit int
}

// NewCoordinator creates a coordinator with an empty session
func NewCoordinator(renderer render.Renderer, opts Options) *Coordinator {
	if renderer == nil {
		renderer = render.Discard{}
	}
	limit := opts.FetchConcurrency
	if limit <= 0 {
		limit = defaultFetchConcurrency
	}
	return &Coordinator{
		session:    aggregate.NewSession(),
		builder:    segment.NewBuilder(opts.Policy),
		renderer:   renderer,
		fetchLimit: limit,
	}
}

// ProcessRoute parses one route's raw text, merges its probes into the session,
// and draws its segments. Data problems end up in the result's diagnostics.
func (c *Coordinator) ProcessRoute(routeID, rawText string) *models.RouteResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processRoute(routeID, rawText)
}

func (c *Coordinator) processRoute(routeID, rawText string) *models.RouteResult {
	result := &models.RouteResult{
		RouteID:     routeID,
		Points:      []models.Coord{},
		Segments:    []models.RouteSegment{},
		ProcessedAt: time.Now(),
	}

	records, diags := parser.Parse(rawText)
	for i := range diags {
		diags[i].Route = routeID
	}
	result.Diagnostics = diags
	result.Records = len(records)

	if len(records) == 0 {
		result.Status = models.StatusEmpty
		log.Printf("[Coordinator] Route %s: nothing to process", routeID)
		return result
	}

	hops := aggregate.ClassifyHops(records)
	seen := make(map[models.Coord]struct{})

	for _, rec := range records {
		p, outcome := c.session.AddOrUpdatePoint(rec, hops.Suggest(rec))
		switch outcome {
		case aggregate.Created:
			p.Handle = c.renderer.PlaceMarker(p)
			result.PointsCreated++
		case aggregate.Updated:
			c.renderer.UpdateMarker(p)
			result.PointsUpdated++
		default:
			result.Unplaced++
			log.Printf("[Coordinator] WARN route %s row %d: invalid coordinate (%q, %q), probe kept unplaced",
				routeID, rec.Row, rec.LatRaw, rec.LonRaw)
			result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
				Kind:    models.DiagInvalidCoordinate,
				Route:   routeID,
				Row:     rec.Row,
				Message: fmt.Sprintf("invalid coordinate %q, %q", rec.LatRaw, rec.LonRaw),
			})
			continue
		}

		if _, ok := seen[p.Coord]; !ok {
			seen[p.Coord] = struct{}{}
			result.Points = append(result.Points, p.Coord)
		}
	}

	segs := c.builder.Build(result.Points, routeID)
	c.session.RecordSegments(segs...)
	for _, seg := range segs {
		c.renderer.DrawEdge(seg)
		result.PathMeters += seg.DistanceMeters
	}
	if segs != nil {
		result.Segments = segs
	}

	if len(result.Points) > 0 {
		focal := result.Points[0]
		result.Focal = &focal
		c.renderer.CenterView(focal)
	}

	result.Status = models.StatusProcessed
	log.Printf("[Coordinator] Route %s: %d records, %d points created, %d updated, %d unplaced, %d segments",
		routeID, result.Records, result.PointsCreated, result.PointsUpdated, result.Unplaced, len(result.Segments))
	return result
}

type fetchResult struct {
	text string
	err  error
}

// ProcessBatch clears the point set, fetches every route concurrently, then
// processes them one at a time in input order. A failed fetch only affects its
// own route. Once ctx is done no further route is processed; work already done
// stays in the session.
func (c *Coordinator) ProcessBatch(ctx context.Context, routeIDs []string, src source.Source) *models.BatchSummary {
	summary := &models.BatchSummary{
		Attempted: len(routeIDs),
		Routes:    make([]*models.RouteResult, 0, len(routeIDs)),
	}

	fetched := make([]fetchResult, len(routeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fetchLimit)
	for i, id := range routeIDs {
		i, id := i, id
		g.Go(func() error {
			text, err := src.Fetch(gctx, id)
			fetched[i] = fetchResult{text: text, err: err}
			return nil
		})
	}
	g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.ResetPoints()
	log.Printf("[Coordinator] Starting batch of %d routes", len(routeIDs))

	for i, id := range routeIDs {
		if ctx.Err() != nil {
			summary.Cancelled = true
			log.Printf("[Coordinator] Batch cancelled after %d of %d routes", i, len(routeIDs))
			break
		}

		if err := fetched[i].err; err != nil {
			log.Printf("[Coordinator] Failed to fetch route %s: %v", id, err)
			summary.Add(&models.RouteResult{
				RouteID:     id,
				Status:      models.StatusUnavailable,
				Points:      []models.Coord{},
				Segments:    []models.RouteSegment{},
				ProcessedAt: time.Now(),
				Diagnostics: []models.Diagnostic{{
					Kind:    models.DiagSourceUnavailable,
					Route:   id,
					Message: err.Error(),
				}},
			})
			continue
		}

		summary.Add(c.processRoute(id, fetched[i].text))
	}

	if summary.Parsed == 0 {
		log.Printf("[Coordinator] No routes were successfully loaded and processed")
	} else {
		log.Printf("[Coordinator] Batch complete: %d/%d routes, %d points created, %d segments",
			summary.Parsed, summary.Attempted, summary.PointsCreated, summary.SegmentsDrawn)
	}
	return summary
}

// Reset clears the session, the global dedup state and the viewer
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Reset()
	c.builder.Reset()
	c.renderer.Clear()
	log.Printf("[Coordinator] Session reset")
}

// Points returns copies of the current points in discovery order
func (c *Coordinator) Points() []models.GeoPoint {
	c.mu.Lock()
	defer c.mu.Unlock()

	points := c.session.Points()
	out := make([]models.GeoPoint, len(points))
	for i, p := range points {
		out[i] = *p
	}
	return out
}

// Point returns a copy of the point with the given id
func (c *Coordinator) Point(id int64) (models.GeoPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.session.PointByID(id)
	if !ok {
		return models.GeoPoint{}, false
	}
	return *p, true
}

// PointsAt returns copies of the points at the given coordinates, skipping
// coordinates with no point
func (c *Coordinator) PointsAt(coords []models.Coord) []models.GeoPoint {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.GeoPoint, 0, len(coords))
	for _, coord := range coords {
		if p, ok := c.session.Point(coord); ok {
			out = append(out, *p)
		}
	}
	return out
}

// Segments returns the drawn segment history
func (c *Coordinator) Segments() []models.RouteSegment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Segments()
}

// Unplaced returns the records that could not be placed since the last reset
func (c *Coordinator) Unplaced() []models.ProbeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Unplaced()
}

// Policy returns the segment dedup policy in use
func (c *Coordinator) Policy() segment.Policy {
	return c.builder.Policy()
}
