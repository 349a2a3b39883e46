package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/models"
)

// GetShapePoints returns the points of a shape in sequence order.
func (c *Client) GetShapePoints(ctx context.Context, shapeID string) ([]models.Coordinate, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT lon, lat FROM shapes
		WHERE shape_id = ?
		ORDER BY shape_pt_sequence`, shapeID)
	if err != nil {
		return nil, err
	}

	var points []models.Coordinate
	for rows.Next() {
		var pt models.Coordinate
		if err := rows.Scan(&pt.Lon, &pt.Lat); err != nil {
			_ = rows.Close()
			return nil, err
		}
		points = append(points, pt)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNotFound
	}
	return points, nil
}

// insertShapePoints writes shape points with cumulative shape_dist_traveled in meters.
func insertShapePoints(ctx context.Context, tx *sql.Tx, shapeID string, points []models.Coordinate) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO shapes (
			shape_id, lat, lon, shape_pt_sequence, shape_dist_traveled
		) VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	distance := 0.0
	for i, pt := range points {
		if i > 0 {
			distance += geometry.Haversine(points[i-1], pt)
		}
		if _, err := stmt.ExecContext(ctx, shapeID, pt.Lat, pt.Lon, i, distance); err != nil {
			return fmt.Errorf("error inserting shapes: %w", err)
		}
	}
	return nil
}
