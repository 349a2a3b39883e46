package gtfs

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"editor.datatools.dev/internal/events"
	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/patterns"
)

// Pattern returns a stored pattern with halts, control points and shape.
func (manager *Manager) Pattern(ctx context.Context, patternID string) (models.Pattern, error) {
	return manager.GtfsDB.GetPattern(ctx, patternID)
}

// Patterns lists every stored pattern without halts or geometry.
func (manager *Manager) Patterns(ctx context.Context) ([]models.Pattern, error) {
	return manager.GtfsDB.ListPatterns(ctx)
}

// GenerateShape derives a new shape for the pattern and commits it unless a
// newer request for the same pattern has started in the meantime.
func (manager *Manager) GenerateShape(ctx context.Context, patternID string, opts patterns.Options) (models.Pattern, error) {
	pattern, err := manager.GtfsDB.GetPattern(ctx, patternID)
	if err != nil {
		return models.Pattern{}, err
	}

	built, err := manager.builder.Build(ctx, pattern, manager, opts)
	if err != nil {
		manager.recordBuildFailure(err)
		return models.Pattern{}, err
	}

	shapeID := uuid.NewString()
	err = manager.builder.Commit(built, func(g patterns.Geometry) error {
		return manager.GtfsDB.ReplacePatternGeometry(ctx, g.PatternID, shapeID, g.Shape, g.ControlPoints)
	})
	if err != nil {
		manager.recordBuildFailure(err)
		return models.Pattern{}, err
	}

	mode := "straight"
	if opts.FollowStreets {
		mode = "streets"
	}
	manager.metrics.ShapesGenerated.WithLabelValues(mode).Inc()

	updated, err := manager.GtfsDB.GetPattern(ctx, patternID)
	if err != nil {
		return models.Pattern{}, err
	}

	event := events.NewEvent(events.KindShapeUpdated, updated)
	event.FollowStreets = opts.FollowStreets
	event.ControlPoints = len(updated.ControlPoints)
	event.Generation = built.Generation
	manager.publish(event)

	return updated, nil
}

func (manager *Manager) recordBuildFailure(err error) {
	reason := "error"
	switch {
	case errors.Is(err, patterns.ErrNoGeometry):
		reason = "no_geometry"
	case errors.Is(err, patterns.ErrSuperseded):
		reason = "superseded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = "cancelled"
	}
	manager.metrics.ShapeBuildFailures.WithLabelValues(reason).Inc()
}

// DeleteShape drops the pattern's shape and resets its control points to the
// halt positions. In-flight builds for the pattern are superseded.
func (manager *Manager) DeleteShape(ctx context.Context, patternID string) (models.Pattern, error) {
	pattern, err := manager.GtfsDB.GetPattern(ctx, patternID)
	if err != nil {
		return models.Pattern{}, err
	}

	located := geometry.LocateHalts(pattern.Halts, manager, manager.logger.With(slog.String("pattern_id", patternID)))
	controlPoints := geometry.ControlPointsFromHalts(located)

	var previous string
	err = manager.builder.Supersede(patternID, func() error {
		var err error
		previous, err = manager.GtfsDB.ClearPatternShape(ctx, patternID, controlPoints)
		return err
	})
	if err != nil {
		return models.Pattern{}, err
	}
	manager.metrics.ShapesDeleted.Inc()

	updated, err := manager.GtfsDB.GetPattern(ctx, patternID)
	if err != nil {
		return models.Pattern{}, err
	}

	event := events.NewEvent(events.KindShapeDeleted, updated)
	event.ShapeID = previous
	event.ControlPoints = len(controlPoints)
	manager.publish(event)

	return updated, nil
}

// ShapeIssues reports stop control points farther than thresholdMeters from
// their halts, plus halts with no travel time from the previous one. A
// threshold of zero uses the configured default.
func (manager *Manager) ShapeIssues(ctx context.Context, patternID string, thresholdMeters float64) (models.ShapeIssuesEntry, error) {
	pattern, err := manager.GtfsDB.GetPattern(ctx, patternID)
	if err != nil {
		return models.ShapeIssuesEntry{}, err
	}
	if thresholdMeters <= 0 {
		thresholdMeters = manager.config.threshold()
	}

	issues := geometry.ShapeFitIssues(pattern.ControlPoints, manager, thresholdMeters)
	manager.metrics.ShapeFitIssues.Observe(float64(len(issues)))

	return models.ShapeIssuesEntry{
		PatternID:       patternID,
		ThresholdMeters: thresholdMeters,
		Issues:          issues,
		ZeroTravelTime:  patterns.ZeroTravelTimeHalts(pattern),
	}, nil
}

// NormalizeStopTimes rewrites the stop times of every trip on the pattern
// from startIndex onward and stores the result.
func (manager *Manager) NormalizeStopTimes(ctx context.Context, patternID string, startIndex int, interpolate bool) (models.NormalizeResultEntry, error) {
	pattern, err := manager.GtfsDB.GetPattern(ctx, patternID)
	if err != nil {
		return models.NormalizeResultEntry{}, err
	}
	trips, err := manager.GtfsDB.ListTripsForPattern(ctx, patternID)
	if err != nil {
		return models.NormalizeResultEntry{}, err
	}

	normalized, err := patterns.NormalizeStopTimes(pattern, trips, startIndex, interpolate)
	if err != nil {
		return models.NormalizeResultEntry{}, err
	}
	if err := manager.GtfsDB.ReplaceStopTimes(ctx, normalized); err != nil {
		return models.NormalizeResultEntry{}, err
	}

	manager.metrics.NormalizeRequests.WithLabelValues(strconv.FormatBool(interpolate)).Inc()
	manager.metrics.TripsNormalized.Add(float64(len(normalized)))

	event := events.NewEvent(events.KindStopTimesNormalized, pattern)
	event.StartIndex = startIndex
	event.Interpolated = interpolate
	event.TripsUpdated = len(normalized)
	manager.publish(event)

	return models.NormalizeResultEntry{
		PatternID:    patternID,
		StartIndex:   startIndex,
		Interpolated: interpolate,
		TripsUpdated: len(normalized),
		Trips:        normalized,
	}, nil
}

// publish failures are logged; the edit itself is already committed.
func (manager *Manager) publish(event events.Event) {
	if err := manager.publisher.Publish(event); err != nil {
		logging.LogError(manager.logger, "failed to publish pattern event", err,
			slog.String("kind", event.Kind),
			slog.String("pattern_id", event.PatternID))
	}
}
