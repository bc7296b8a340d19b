// Package render defines the boundary to the globe viewer.
package render

import (
	"sync"
	"time"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// Renderer receives presentation commands from the coordinator
type Renderer interface {
	// PlaceMarker draws a new point and returns a handle for later updates
	PlaceMarker(p *models.GeoPoint) any
	// UpdateMarker refreshes role and description of an existing point
	UpdateMarker(p *models.GeoPoint)
	// DrawEdge draws a directed segment
	DrawEdge(seg models.RouteSegment)
	// CenterView hints where the view should fly to
	CenterView(c models.Coord)
	// Clear removes every marker and edge
	Clear()
}

// Command operations
const (
	OpPlace  = "place"
	OpUpdate = "update"
	OpEdge   = "edge"
	OpCenter = "center"
	OpClear  = "clear"
)

// Command is one recorded presentation request
type Command struct {
	Seq         int64                    `json:"seq"`
	Op          string                   `json:"op"`
	PointID     int64                    `json:"pointId,omitempty"`
	Coord       *models.Coord            `json:"coord,omitempty"`
	Role        models.Role              `json:"role,omitempty"`
	Color       string                   `json:"color,omitempty"`
	Description *models.PointDescription `json:"description,omitempty"`
	Segment     *models.RouteSegment     `json:"segment,omitempty"`
	At          time.Time                `json:"at"`
}

// Recorder keeps an ordered command log that viewers poll by sequence number.
// With a limit the log is a ring holding the newest limit commands.
// It is safe for concurrent use.
type Recorder struct {
	mu       sync.RWMutex
	commands []Command
	head     int // Index of the oldest command once the ring is full
	nextSeq  int64
	limit    int
}

// NewRecorder creates a recorder keeping at most limit commands (0 = unbounded)
func NewRecorder(limit int) *Recorder {
	r := &Recorder{limit: limit}
	if limit > 0 {
		r.commands = make([]Command, 0, limit)
	}
	return r
}

func (r *Recorder) append(cmd Command) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	cmd.Seq = r.nextSeq
	cmd.At = time.Now()

	if r.limit <= 0 || len(r.commands) < r.limit {
		r.commands = append(r.commands, cmd)
	} else {
		r.commands[r.head] = cmd
		r.head = (r.head + 1) % r.limit
	}
	return cmd.Seq
}

// PlaceMarker records a place command; the handle is the command sequence number
func (r *Recorder) PlaceMarker(p *models.GeoPoint) any {
	coord := p.Coord
	desc := p.Description
	return r.append(Command{
		Op:          OpPlace,
		PointID:     p.ID,
		Coord:       &coord,
		Role:        p.Role,
		Color:       p.Color,
		Description: &desc,
	})
}

// UpdateMarker records an update command
func (r *Recorder) UpdateMarker(p *models.GeoPoint) {
	coord := p.Coord
	desc := p.Description
	r.append(Command{
		Op:          OpUpdate,
		PointID:     p.ID,
		Coord:       &coord,
		Role:        p.Role,
		Color:       p.Color,
		Description: &desc,
	})
}

// DrawEdge records an edge command
func (r *Recorder) DrawEdge(seg models.RouteSegment) {
	r.append(Command{Op: OpEdge, Segment: &seg})
}

// CenterView records a center command
func (r *Recorder) CenterView(c models.Coord) {
	r.append(Command{Op: OpCenter, Coord: &c})
}

// Clear records a clear command
func (r *Recorder) Clear() {
	r.append(Command{Op: OpClear})
}

// Since returns commands with a sequence number greater than seq, oldest first
func (r *Recorder) Since(seq int64) []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0)
	n := len(r.commands)
	for i := 0; i < n; i++ {
		cmd := r.commands[(r.head+i)%n]
		if cmd.Seq > seq {
			out = append(out, cmd)
		}
	}
	return out
}

// Last returns the latest sequence number
func (r *Recorder) Last() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextSeq
}

// Discard is a Renderer that drops every command
type Discard struct{}

func (Discard) PlaceMarker(*models.GeoPoint) any { return nil }
func (Discard) UpdateMarker(*models.GeoPoint)    {}
func (Discard) DrawEdge(models.RouteSegment)     {}
func (Discard) CenterView(models.Coord)          {}
func (Discard) Clear()                           {}
