package gtfsdb

import (
	"context"
	"database/sql"
	"fmt"

	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
)

// InsertTrips stores trips and their stop times. RouteID is taken from the
// owning pattern.
func (c *Client) InsertTrips(ctx context.Context, trips []models.Trip) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "insert_trips")

	if err := insertTrips(ctx, tx, trips); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTrips(ctx context.Context, tx *sql.Tx, trips []models.Trip) error {
	tripStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trips (id, route_id, service_id, pattern_id, shape_id)
		SELECT ?, p.route_id, ?, p.id, p.shape_id FROM patterns p WHERE p.id = ?;
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer tripStmt.Close() // nolint:errcheck

	for _, t := range trips {
		res, err := tripStmt.ExecContext(ctx, t.ID, t.ServiceID, t.PatternID)
		if err != nil {
			return fmt.Errorf("error inserting trip %s: %w", t.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("trip %s references unknown pattern %s: %w", t.ID, t.PatternID, ErrNotFound)
		}
		if err := writeStopTimes(ctx, tx, t); err != nil {
			return err
		}
	}
	return nil
}

func writeStopTimes(ctx context.Context, tx *sql.Tx, t models.Trip) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO stop_times (
			trip_id, stop_sequence, arrival_time, departure_time, timepoint
		) VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for i, st := range t.StopTimes {
		if _, err := stmt.ExecContext(ctx, t.ID, i, st.Arrival, st.Departure, boolToInt(st.Timepoint)); err != nil {
			return fmt.Errorf("error inserting stop time %d of trip %s: %w", i, t.ID, err)
		}
	}
	return nil
}

// ListTripsForPattern returns the pattern's trips with stop times ordered by
// halt index.
func (c *Client) ListTripsForPattern(ctx context.Context, patternID string) ([]models.Trip, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT t.id, t.service_id, st.arrival_time, st.departure_time, st.timepoint
		FROM trips t
		LEFT JOIN stop_times st ON st.trip_id = t.id
		WHERE t.pattern_id = ?
		ORDER BY t.id, st.stop_sequence`, patternID)
	if err != nil {
		return nil, err
	}

	trips := []models.Trip{}
	for rows.Next() {
		var (
			id, serviceID string
			arrival       sql.NullInt64
			departure     sql.NullInt64
			timepoint     sql.NullInt64
		)
		if err := rows.Scan(&id, &serviceID, &arrival, &departure, &timepoint); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if len(trips) == 0 || trips[len(trips)-1].ID != id {
			trips = append(trips, models.Trip{
				ID:        id,
				PatternID: patternID,
				ServiceID: serviceID,
				StopTimes: []models.StopTime{},
			})
		}
		if !arrival.Valid {
			continue
		}
		last := &trips[len(trips)-1]
		last.StopTimes = append(last.StopTimes, models.StopTime{
			Arrival:   int(arrival.Int64),
			Departure: int(departure.Int64),
			Timepoint: timepoint.Int64 != 0,
		})
	}
	return trips, closeRows(rows)
}

// ReplaceStopTimes rewrites the stop times of every given trip in one
// transaction.
func (c *Client) ReplaceStopTimes(ctx context.Context, trips []models.Trip) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, c.config.logger(), "replace_stop_times")

	for _, t := range trips {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stop_times WHERE trip_id = ?`, t.ID); err != nil {
			return err
		}
		if err := writeStopTimes(ctx, tx, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}
