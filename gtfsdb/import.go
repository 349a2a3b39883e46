package gtfsdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
)

// ImportMetadata records the last feed that was loaded.
type ImportMetadata struct {
	FileHash   string
	FileSource string
	ImportTime int64
}

// ImportFeed parses a GTFS static zip and replaces the store's contents with
// it. Identical bytes from the same source are skipped; the returned bool
// reports whether an import happened.
func (c *Client) ImportFeed(ctx context.Context, b []byte, source string) (bool, error) {
	logger := c.config.logger()
	hash := hashFeed(b)

	previous, err := c.GetImportMetadata(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err == nil && previous.FileHash == hash && previous.FileSource == source {
		logging.LogOperation(logger, "gtfs_import_skipped_unchanged",
			slog.String("source", source),
			slog.String("hash", hash))
		return false, nil
	}

	startTime := time.Now()
	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return false, fmt.Errorf("parsing GTFS static data: %w", err)
	}

	feed := derivePatterns(staticData, logger)

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.RollbackLogged(tx, logger, "import_feed")

	if err := clearAllGTFSData(ctx, tx); err != nil {
		return false, err
	}
	if err := insertStops(ctx, tx, feed.stops); err != nil {
		return false, err
	}
	for shapeID, points := range feed.shapes {
		if err := insertShapePoints(ctx, tx, shapeID, points); err != nil {
			return false, err
		}
	}
	if err := insertPatterns(ctx, tx, feed.patterns); err != nil {
		return false, err
	}
	if err := insertTrips(ctx, tx, feed.trips); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO import_metadata (id, file_hash, file_source, import_time)
		VALUES (1, ?, ?, ?)`, hash, source, time.Now().UnixNano()); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("error committing transaction: %w", err)
	}

	c.importRuntime = time.Since(startTime)
	logging.LogOperation(logger, "gtfs_import_complete",
		slog.String("source", source),
		slog.Int("warnings", len(staticData.Warnings)),
		slog.Int("stops", len(feed.stops)),
		slog.Int("patterns", len(feed.patterns)),
		slog.Int("trips", len(feed.trips)),
		slog.Duration("duration", c.importRuntime))

	if c.config.verbose {
		counts, err := c.TableCounts()
		if err != nil {
			return true, err
		}
		staticCounts := staticDataCounts(staticData)
		for table, n := range counts {
			logger.Debug("table count", slog.String("table", table), slog.Int("rows", n),
				slog.Int("static", staticCounts[table]))
		}
	}

	return true, nil
}

func (c *Client) processAndStoreGTFSDataWithSource(b []byte, source string) error {
	_, err := c.ImportFeed(context.Background(), b, source)
	return err
}

// GetImportMetadata returns the last import or ErrNotFound.
func (c *Client) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	var m ImportMetadata
	err := c.DB.QueryRowContext(ctx, `SELECT file_hash, file_source, import_time FROM import_metadata WHERE id = 1`).
		Scan(&m.FileHash, &m.FileSource, &m.ImportTime)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportMetadata{}, ErrNotFound
	}
	return m, err
}

func hashFeed(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// clearAllGTFSData empties every feed table. Import metadata is kept.
func clearAllGTFSData(ctx context.Context, tx *sql.Tx) error {
	tables := []string{
		"stop_times", "trips", "control_points", "pattern_halts", "patterns",
		"shapes", "location_group_members", "location_groups", "locations", "stops",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	return nil
}

type derivedFeed struct {
	stops    []models.Stop
	shapes   map[string][]models.Coordinate
	patterns []models.Pattern
	trips    []models.Trip
}

// derivePatterns groups trips that share a route, an ordered stop list and a
// shape into patterns. Halt defaults come from the first trip of each group.
func derivePatterns(staticData *gtfs.Static, logger *slog.Logger) derivedFeed {
	feed := derivedFeed{shapes: make(map[string][]models.Coordinate)}
	catalog := geometry.NewCatalog()
	stopNames := make(map[string]string)

	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			logger.Warn("skipping stop without coordinates", slog.String("stop_id", s.Id))
			continue
		}
		stop := models.Stop{ID: s.Id, Name: s.Name, Lat: *s.Latitude, Lon: *s.Longitude}
		feed.stops = append(feed.stops, stop)
		catalog.AddStop(stop)
		stopNames[s.Id] = s.Name
	}

	for _, s := range staticData.Shapes {
		points := make([]models.Coordinate, 0, len(s.Points))
		for _, pt := range s.Points {
			points = append(points, models.Coordinate{Lon: pt.Longitude, Lat: pt.Latitude})
		}
		if len(points) > 0 {
			feed.shapes[s.ID] = points
		}
	}

	trips := make([]gtfs.ScheduledTrip, len(staticData.Trips))
	copy(trips, staticData.Trips)
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })

	patternIDs := make(map[string]string)
	perRoute := make(map[string]int)

	for _, t := range trips {
		if len(t.StopTimes) == 0 || t.Route == nil {
			continue
		}
		stopTimes := make([]gtfs.ScheduledStopTime, len(t.StopTimes))
		copy(stopTimes, t.StopTimes)
		sort.Slice(stopTimes, func(i, j int) bool { return stopTimes[i].StopSequence < stopTimes[j].StopSequence })

		shapeID := ""
		if t.Shape != nil {
			if _, ok := feed.shapes[t.Shape.ID]; ok {
				shapeID = t.Shape.ID
			}
		}

		stopIDs := make([]string, len(stopTimes))
		for i, st := range stopTimes {
			if st.Stop != nil {
				stopIDs[i] = st.Stop.Id
			}
		}
		key := t.Route.Id + "|" + strings.Join(stopIDs, ",") + "|" + shapeID

		patternID, ok := patternIDs[key]
		if !ok {
			perRoute[t.Route.Id]++
			patternID = fmt.Sprintf("%s:%d", t.Route.Id, perRoute[t.Route.Id])
			patternIDs[key] = patternID

			pattern := models.Pattern{
				ID:      patternID,
				RouteID: t.Route.Id,
				Name:    pickFirstAvailable(t.Headsign, stopNames[stopIDs[len(stopIDs)-1]]),
				ShapeID: shapeID,
				Halts:   haltsFromStopTimes(stopTimes),
			}
			located := geometry.LocateHalts(pattern.Halts, catalog, logger)
			pattern.ControlPoints = geometry.ControlPointsFromHalts(located)
			feed.patterns = append(feed.patterns, pattern)
		}

		serviceID := ""
		if t.Service != nil {
			serviceID = t.Service.Id
		}
		trip := models.Trip{
			ID:        t.ID,
			PatternID: patternID,
			ServiceID: serviceID,
			StopTimes: make([]models.StopTime, len(stopTimes)),
		}
		for i, st := range stopTimes {
			trip.StopTimes[i] = models.StopTime{
				Arrival:   seconds(st.ArrivalTime),
				Departure: seconds(st.DepartureTime),
				Timepoint: st.ExactTimes,
			}
		}
		feed.trips = append(feed.trips, trip)
	}

	return feed
}

// haltsFromStopTimes derives halt defaults so that chaining them reproduces
// the given times: arrival = previous departure + travel + dwell.
func haltsFromStopTimes(stopTimes []gtfs.ScheduledStopTime) []models.PatternHalt {
	halts := make([]models.PatternHalt, len(stopTimes))
	for i, st := range stopTimes {
		var ref models.HaltRef
		if st.Stop != nil {
			ref = models.StopRef{StopID: st.Stop.Id}
		}
		arrival, departure := seconds(st.ArrivalTime), seconds(st.DepartureTime)
		dwell := max(departure-arrival, 0)
		travel := 0
		if i > 0 {
			travel = max(arrival-seconds(stopTimes[i-1].DepartureTime)-dwell, 0)
		}
		halts[i] = models.PatternHalt{
			Ref:               ref,
			DefaultTravelTime: travel,
			DefaultDwellTime:  dwell,
			Timepoint:         st.ExactTimes,
		}
	}
	return halts
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
