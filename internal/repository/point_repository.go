package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jengzang/tracemap-backend-go/internal/database"
	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// PointRecord is the persisted snapshot of a geo point
type PointRecord struct {
	ID          int64                   `json:"id"`
	Coord       models.Coord            `json:"coord"`
	Role        models.Role             `json:"role"`
	ProbeCount  int                     `json:"probeCount"`
	Description models.PointDescription `json:"description"`
}

// PointRepository persists the latest state of each geo point
type PointRepository struct {
	db *sql.DB
}

// NewPointRepository creates a new point repository
func NewPointRepository(db *sql.DB) *PointRepository {
	return &PointRepository{db: db}
}

// Upsert writes the current state of the given points
func (r *PointRepository) Upsert(points []models.GeoPoint) error {
	if len(points) == 0 {
		return nil
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO geo_points (id, lat, lon, role, probe_count, description_json, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				lat = excluded.lat,
				lon = excluded.lon,
				role = excluded.role,
				probe_count = excluded.probe_count,
				description_json = excluded.description_json,
				updated_at = CURRENT_TIMESTAMP`)
		if err != nil {
			return fmt.Errorf("failed to prepare point upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			desc, err := json.Marshal(p.Description)
			if err != nil {
				return fmt.Errorf("failed to encode description of point %d: %w", p.ID, err)
			}
			if _, err := stmt.Exec(p.ID, p.Coord.Lat, p.Coord.Lon, string(p.Role), p.ProbeCount(), string(desc)); err != nil {
				return fmt.Errorf("failed to upsert point %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// GetPoints retrieves persisted points matching the filter
func (r *PointRepository) GetPoints(filter models.PointFilter) ([]PointRecord, error) {
	query := "SELECT id, lat, lon, role, probe_count, description_json FROM geo_points"

	var conditions []string
	var args []interface{}

	if filter.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.MinProbes > 0 {
		conditions = append(conditions, "probe_count >= ?")
		args = append(args, filter.MinProbes)
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
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	points := []PointRecord{}
	for rows.Next() {
		var p PointRecord
		var role, desc string
		if err := rows.Scan(&p.ID, &p.Coord.Lat, &p.Coord.Lon, &role, &p.ProbeCount, &desc); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		p.Role = models.Role(role)
		if err := json.Unmarshal([]byte(desc), &p.Description); err != nil {
			return nil, fmt.Errorf("failed to decode description of point %d: %w", p.ID, err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// DeleteAll removes every persisted point
func (r *PointRepository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM geo_points"); err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}
