package gtfsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
)

// InsertPatterns stores patterns with their halts and control points. Shape
// points are stored separately with InsertShape.
func (c *Client) InsertPatterns(ctx context.Context, patterns []models.Pattern) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "insert_patterns")

	if err := insertPatterns(ctx, tx, patterns); err != nil {
		return err
	}
	return tx.Commit()
}

func insertPatterns(ctx context.Context, tx *sql.Tx, patterns []models.Pattern) error {
	patternStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO patterns (id, route_id, name, shape_id)
		VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer patternStmt.Close() // nolint:errcheck

	haltStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pattern_halts (
			pattern_id, stop_sequence, halt_kind, halt_id,
			default_travel_time, default_dwell_time, timepoint
		) VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer haltStmt.Close() // nolint:errcheck

	for _, p := range patterns {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pattern %s: %w", p.ID, err)
		}
		if _, err := patternStmt.ExecContext(ctx, p.ID, p.RouteID, p.Name, toNullString(p.ShapeID)); err != nil {
			return fmt.Errorf("error inserting pattern %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pattern_halts WHERE pattern_id = ?`, p.ID); err != nil {
			return err
		}
		for i, h := range p.Halts {
			kind, id := haltColumns(h.Ref)
			if _, err := haltStmt.ExecContext(ctx,
				p.ID, i, kind, id,
				h.DefaultTravelTime, h.DefaultDwellTime, boolToInt(h.Timepoint),
			); err != nil {
				return fmt.Errorf("error inserting halt %d of pattern %s: %w", i, p.ID, err)
			}
		}
		if err := replaceControlPoints(ctx, tx, p.ID, p.ControlPoints); err != nil {
			return err
		}
	}
	return nil
}

func haltColumns(ref models.HaltRef) (sql.NullString, sql.NullString) {
	switch r := ref.(type) {
	case models.StopRef:
		return toNullString(string(models.HaltKindStop)), toNullString(r.StopID)
	case models.LocationRef:
		return toNullString(string(models.HaltKindLocation)), toNullString(r.LocationID)
	case models.LocationGroupRef:
		return toNullString(string(models.HaltKindLocationGroup)), toNullString(r.LocationGroupID)
	case nil:
	}
	return sql.NullString{}, sql.NullString{}
}

func replaceControlPoints(ctx context.Context, tx *sql.Tx, patternID string, points []models.ControlPoint) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM control_points WHERE pattern_id = ?`, patternID); err != nil {
		return fmt.Errorf("error clearing control points of pattern %s: %w", patternID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO control_points (
			pattern_id, sequence, lon, lat, distance, point_type, stop_sequence, halt_kind, halt_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for i, cp := range points {
		kind, id := haltColumns(cp.Halt)
		if _, err := stmt.ExecContext(ctx,
			patternID, i, cp.Point.Lon, cp.Point.Lat, cp.Distance, string(cp.Kind),
			toNullInt64(cp.HaltIndex, cp.IsStop()), kind, id,
		); err != nil {
			return fmt.Errorf("error inserting control point %d of pattern %s: %w", i, patternID, err)
		}
	}
	return nil
}

// GetPattern loads a pattern with its halts, control points and shape.
func (c *Client) GetPattern(ctx context.Context, id string) (models.Pattern, error) {
	var (
		p       models.Pattern
		shapeID sql.NullString
	)
	err := c.DB.QueryRowContext(ctx, `SELECT id, route_id, name, shape_id FROM patterns WHERE id = ?`, id).
		Scan(&p.ID, &p.RouteID, &p.Name, &shapeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pattern{}, ErrNotFound
	}
	if err != nil {
		return models.Pattern{}, err
	}
	p.ShapeID = shapeID.String

	if p.Halts, err = c.patternHalts(ctx, id); err != nil {
		return models.Pattern{}, err
	}
	if p.ControlPoints, err = c.controlPoints(ctx, id); err != nil {
		return models.Pattern{}, err
	}
	p.Shape = []models.Coordinate{}
	if p.ShapeID != "" {
		shape, err := c.GetShapePoints(ctx, p.ShapeID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return models.Pattern{}, err
		}
		if shape != nil {
			p.Shape = shape
		}
	}
	return p, nil
}

func (c *Client) patternHalts(ctx context.Context, patternID string) ([]models.PatternHalt, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT halt_kind, halt_id, default_travel_time, default_dwell_time, timepoint
		FROM pattern_halts
		WHERE pattern_id = ?
		ORDER BY stop_sequence`, patternID)
	if err != nil {
		return nil, err
	}

	halts := []models.PatternHalt{}
	for rows.Next() {
		var (
			kind, haltID sql.NullString
			h            models.PatternHalt
			timepoint    int64
		)
		if err := rows.Scan(&kind, &haltID, &h.DefaultTravelTime, &h.DefaultDwellTime, &timepoint); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ref, err := models.NewHaltRef(models.HaltKind(kind.String), haltID.String)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		h.Ref = ref
		h.Timepoint = timepoint != 0
		halts = append(halts, h)
	}
	return halts, closeRows(rows)
}

func (c *Client) controlPoints(ctx context.Context, patternID string) ([]models.ControlPoint, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT lon, lat, distance, point_type, stop_sequence, halt_kind, halt_id
		FROM control_points
		WHERE pattern_id = ?
		ORDER BY sequence`, patternID)
	if err != nil {
		return nil, err
	}

	points := []models.ControlPoint{}
	for rows.Next() {
		var (
			cp           models.ControlPoint
			pointType    string
			haltIndex    sql.NullInt64
			kind, haltID sql.NullString
		)
		if err := rows.Scan(&cp.Point.Lon, &cp.Point.Lat, &cp.Distance, &pointType, &haltIndex, &kind, &haltID); err != nil {
			_ = rows.Close()
			return nil, err
		}
		cp.Kind = models.ControlPointKind(pointType)
		cp.HaltIndex = -1
		if haltIndex.Valid {
			cp.HaltIndex = int(haltIndex.Int64)
		}
		if cp.Halt, err = models.NewHaltRef(models.HaltKind(kind.String), haltID.String); err != nil {
			_ = rows.Close()
			return nil, err
		}
		points = append(points, cp)
	}
	return points, closeRows(rows)
}

// ListPatterns returns pattern headers without halts or geometry.
func (c *Client) ListPatterns(ctx context.Context) ([]models.Pattern, error) {
	rows, err := c.DB.QueryContext(ctx, `SELECT id, route_id, name, shape_id FROM patterns ORDER BY id`)
	if err != nil {
		return nil, err
	}

	patterns := []models.Pattern{}
	for rows.Next() {
		var (
			p       models.Pattern
			shapeID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.RouteID, &p.Name, &shapeID); err != nil {
			_ = rows.Close()
			return nil, err
		}
		p.ShapeID = shapeID.String
		patterns = append(patterns, p)
	}
	return patterns, closeRows(rows)
}

// ReplacePatternGeometry stores a new shape for a pattern, replaces its
// control points and points its trips at the shape. The previous shape is
// dropped when no other pattern uses it.
func (c *Client) ReplacePatternGeometry(ctx context.Context, patternID, shapeID string, shape []models.Coordinate, points []models.ControlPoint) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "replace_pattern_geometry")

	previous, err := patternShapeID(ctx, tx, patternID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shapes WHERE shape_id = ?`, shapeID); err != nil {
		return err
	}
	if err := insertShapePoints(ctx, tx, shapeID, shape); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE patterns SET shape_id = ? WHERE id = ?`, shapeID, patternID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE trips SET shape_id = ? WHERE pattern_id = ?`, shapeID, patternID); err != nil {
		return err
	}
	if err := replaceControlPoints(ctx, tx, patternID, points); err != nil {
		return err
	}
	if previous != "" && previous != shapeID {
		if err := dropUnusedShape(ctx, tx, previous); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ClearPatternShape detaches the shape from a pattern and its trips and
// resets the control points. It returns the id of the detached shape.
func (c *Client) ClearPatternShape(ctx context.Context, patternID string, points []models.ControlPoint) (string, error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "clear_pattern_shape")

	previous, err := patternShapeID(ctx, tx, patternID)
	if err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE patterns SET shape_id = NULL WHERE id = ?`, patternID); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE trips SET shape_id = NULL WHERE pattern_id = ?`, patternID); err != nil {
		return "", err
	}
	if err := replaceControlPoints(ctx, tx, patternID, points); err != nil {
		return "", err
	}
	if previous != "" {
		if err := dropUnusedShape(ctx, tx, previous); err != nil {
			return "", err
		}
	}

	return previous, tx.Commit()
}

func patternShapeID(ctx context.Context, tx *sql.Tx, patternID string) (string, error) {
	var shapeID sql.NullString
	err := tx.QueryRowContext(ctx, `SELECT shape_id FROM patterns WHERE id = ?`, patternID).Scan(&shapeID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return shapeID.String, err
}

func dropUnusedShape(ctx context.Context, tx *sql.Tx, shapeID string) error {
	var users int
	err := tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM patterns WHERE shape_id = ?) +
		       (SELECT COUNT(*) FROM trips WHERE shape_id = ?)`, shapeID, shapeID).Scan(&users)
	if err != nil {
		return err
	}
	if users > 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM shapes WHERE shape_id = ?`, shapeID)
	return err
}
