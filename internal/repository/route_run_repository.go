package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jengzang/tracemap-backend-go/internal/database"
	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// RouteRunRepository handles database operations for route runs
type RouteRunRepository struct {
	db *sql.DB
}

// NewRouteRunRepository creates a new route run repository
func NewRouteRunRepository(db *sql.DB) *RouteRunRepository {
	return &RouteRunRepository{db: db}
}

// Create stores a run together with the segments it drew and returns the run ID
func (r *RouteRunRepository) Create(run models.RouteRun, segments []models.RouteSegment) (int64, error) {
	var diagJSON sql.NullString
	if len(run.Diagnostics) > 0 {
		data, err := json.Marshal(run.Diagnostics)
		if err != nil {
			return 0, fmt.Errorf("failed to encode diagnostics: %w", err)
		}
		diagJSON = sql.NullString{String: string(data), Valid: true}
	}

	var id int64
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO route_runs (route_id, status, records, unplaced,
			points_created, points_updated, segments, path_meters, focal_lat, focal_lon,
			diagnostics_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RouteID, run.Status, run.Records, run.Unplaced,
			run.PointsCreated, run.PointsUpdated, run.Segments, run.PathMeters,
			run.FocalLat, run.FocalLon, diagJSON, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert route run: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get route run id: %w", err)
		}

		return insertSegments(tx, id, segments)
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetRuns retrieves runs with filtering and pagination, newest first
func (r *RouteRunRepository) GetRuns(filter models.RunFilter) ([]models.RouteRun, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.RouteID != "" {
		conditions = append(conditions, "route_id = ?")
		args = append(args, filter.RouteID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM route_runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count route runs: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	if filter.PageSize > 500 {
		filter.PageSize = 500
	}

	query := `SELECT id, route_id, status, records, unplaced, points_created, points_updated,
		segments, path_meters, focal_lat, focal_lon, diagnostics_json, created_at
		FROM route_runs` + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query route runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RouteRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}

	return runs, total, rows.Err()
}

// GetRunByID retrieves a single run, or nil when it does not exist
func (r *RouteRunRepository) GetRunByID(id int64) (*models.RouteRun, error) {
	row := r.db.QueryRow(`SELECT id, route_id, status, records, unplaced, points_created, points_updated,
		segments, path_meters, focal_lat, focal_lon, diagnostics_json, created_at
		FROM route_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// DeleteAll removes every run and the segments recorded with them
func (r *RouteRunRepository) DeleteAll() error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM route_segments"); err != nil {
			return fmt.Errorf("failed to delete route segments: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM route_runs"); err != nil {
			return fmt.Errorf("failed to delete route runs: %w", err)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (models.RouteRun, error) {
	var run models.RouteRun
	var focalLat, focalLon sql.NullFloat64
	var diagJSON sql.NullString

	err := s.Scan(
		&run.ID, &run.RouteID, &run.Status, &run.Records, &run.Unplaced,
		&run.PointsCreated, &run.PointsUpdated, &run.Segments, &run.PathMeters,
		&focalLat, &focalLon, &diagJSON, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan route run: %w", err)
	}

	if focalLat.Valid && focalLon.Valid {
		run.FocalLat = &focalLat.Float64
		run.FocalLon = &focalLon.Float64
	}
	if diagJSON.Valid && diagJSON.String != "" {
		if err := json.Unmarshal([]byte(diagJSON.String), &run.Diagnostics); err != nil {
			return run, fmt.Errorf("failed to decode diagnostics for run %d: %w", run.ID, err)
		}
	}

	return run, nil
}
