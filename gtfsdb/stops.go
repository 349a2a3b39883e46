package gtfsdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/utils"
)

// InsertStops upserts stops in a single transaction.
func (c *Client) InsertStops(ctx context.Context, stops []models.Stop) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "insert_stops")

	if err := insertStops(ctx, tx, stops); err != nil {
		return err
	}
	return tx.Commit()
}

func insertStops(ctx context.Context, tx *sql.Tx, stops []models.Stop) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO stops (id, code, name, lat, lon)
		VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, s := range stops {
		if err := utils.ValidateCoordinate(s.Coordinate()); err != nil {
			return fmt.Errorf("stop %s: %w", s.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, s.ID, sql.NullString{}, s.Name, s.Lat, s.Lon); err != nil {
			return fmt.Errorf("error inserting stop %s: %w", s.ID, err)
		}
	}
	return nil
}

// GetStop returns a stop by id or ErrNotFound.
func (c *Client) GetStop(ctx context.Context, id string) (models.Stop, error) {
	var s models.Stop
	err := c.DB.QueryRowContext(ctx, `SELECT id, name, lat, lon FROM stops WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.Lat, &s.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stop{}, ErrNotFound
	}
	return s, err
}

// InsertLocations upserts flex zones. Polygons are stored as [lon, lat] JSON rings.
func (c *Client) InsertLocations(ctx context.Context, locations []models.Location) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "insert_locations")

	if err := insertLocations(ctx, tx, locations); err != nil {
		return err
	}
	return tx.Commit()
}

func insertLocations(ctx context.Context, tx *sql.Tx, locations []models.Location) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO locations (id, name, polygon) VALUES (?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, l := range locations {
		for _, vertex := range l.Polygon {
			if err := utils.ValidateCoordinate(vertex); err != nil {
				return fmt.Errorf("location %s: %w", l.ID, err)
			}
		}
		polygon, err := json.Marshal(l.Polygon)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, l.ID, l.Name, string(polygon)); err != nil {
			return fmt.Errorf("error inserting location %s: %w", l.ID, err)
		}
	}
	return nil
}

// InsertLocationGroups upserts groups and replaces their membership.
func (c *Client) InsertLocationGroups(ctx context.Context, groups []models.LocationGroup) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "insert_location_groups")

	for _, g := range groups {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO location_groups (id, name) VALUES (?, ?)`, g.ID, g.Name); err != nil {
			return fmt.Errorf("error inserting location group %s: %w", g.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM location_group_members WHERE location_group_id = ?`, g.ID); err != nil {
			return err
		}
		for i, member := range g.LocationIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO location_group_members (location_group_id, member_id, sequence) VALUES (?, ?, ?)`,
				g.ID, member, i); err != nil {
				return fmt.Errorf("error inserting member %s of group %s: %w", member, g.ID, err)
			}
		}
	}
	return tx.Commit()
}

// Catalog loads every stop, location and location group into a Locator.
func (c *Client) Catalog(ctx context.Context) (*geometry.Catalog, error) {
	catalog := geometry.NewCatalog()

	rows, err := c.DB.QueryContext(ctx, `SELECT id, name, lat, lon FROM stops`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.Name, &s.Lat, &s.Lon); err != nil {
			_ = rows.Close()
			return nil, err
		}
		catalog.AddStop(s)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = c.DB.QueryContext(ctx, `SELECT id, name, polygon FROM locations`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			l       models.Location
			polygon string
		)
		if err := rows.Scan(&l.ID, &l.Name, &polygon); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if err := json.Unmarshal([]byte(polygon), &l.Polygon); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decoding polygon of location %s: %w", l.ID, err)
		}
		catalog.AddLocation(l)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = c.DB.QueryContext(ctx, `
		SELECT g.id, g.name, m.member_id
		FROM location_groups g
		LEFT JOIN location_group_members m ON m.location_group_id = g.id
		ORDER BY g.id, m.sequence`)
	if err != nil {
		return nil, err
	}
	groups := make(map[string]*models.LocationGroup)
	var order []string
	for rows.Next() {
		var (
			id, name string
			member   sql.NullString
		)
		if err := rows.Scan(&id, &name, &member); err != nil {
			_ = rows.Close()
			return nil, err
		}
		g, ok := groups[id]
		if !ok {
			g = &models.LocationGroup{ID: id, Name: name}
			groups[id] = g
			order = append(order, id)
		}
		if member.Valid {
			g.LocationIDs = append(g.LocationIDs, member.String)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	for _, id := range order {
		catalog.AddLocationGroup(*groups[id])
	}

	return catalog, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}
