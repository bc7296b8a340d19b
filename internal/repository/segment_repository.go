package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// SegmentRepository handles database operations for drawn route segments
type SegmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

func insertSegments(tx *sql.Tx, runID int64, segments []models.RouteSegment) error {
	if len(segments) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO route_segments (run_id, route_id, seq,
		from_lat, from_lon, to_lat, to_lon, distance_meters, bearing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range segments {
		_, err := stmt.Exec(runID, s.RouteID, s.Seq,
			s.From.Lat, s.From.Lon, s.To.Lat, s.To.Lon, s.DistanceMeters, s.Bearing)
		if err != nil {
			return fmt.Errorf("failed to insert segment %d of %s: %w", s.Seq, s.RouteID, err)
		}
	}

	return nil
}

// GetSegments retrieves persisted segments in draw order
func (r *SegmentRepository) GetSegments(filter models.SegmentFilter) ([]models.RouteSegment, error) {
	query := `SELECT route_id, seq, from_lat, from_lon, to_lat, to_lon, distance_meters, bearing
		FROM route_segments`

	var conditions []string
	var args []interface{}

	if filter.RouteID != "" {
		conditions = append(conditions, "route_id = ?")
		args = append(args, filter.RouteID)
	}
	if filter.MinDistance > 0 {
		conditions = append(conditions, "distance_meters >= ?")
		args = append(args, filter.MinDistance)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []models.RouteSegment{}
	for rows.Next() {
		var s models.RouteSegment
		err := rows.Scan(&s.RouteID, &s.Seq,
			&s.From.Lat, &s.From.Lon, &s.To.Lat, &s.To.Lon, &s.DistanceMeters, &s.Bearing)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, s)
	}

	return segments, rows.Err()
}

// CountByRoute returns the number of persisted segments per route
func (r *SegmentRepository) CountByRoute() (map[string]int, error) {
	rows, err := r.db.Query("SELECT route_id, COUNT(*) FROM route_segments GROUP BY route_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count segments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var routeID string
		var n int
		if err := rows.Scan(&routeID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan segment count: %w", err)
		}
		counts[routeID] = n
	}

	return counts, rows.Err()
}
