package patterns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/routing"
)

var (
	ErrNoGeometry = errors.New("could not derive geometry from halts: some halts may be unreachable by the street network")
	// ErrSuperseded is returned when a newer build for the same pattern
	// started before this one could be committed.
	ErrSuperseded = errors.New("geometry build superseded by a newer request")
)

type Options struct {
	FollowStreets  bool `json:"followStreets"`
	AvoidMotorways bool `json:"avoidMotorways"`
}

// Geometry is a derived shape waiting to be committed.
type Geometry struct {
	PatternID     string
	Generation    uint64
	Segments      [][]models.Coordinate
	Shape         []models.Coordinate
	ControlPoints []models.ControlPoint
}

type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// GeometryBuilder derives pattern shapes. Builds for the same pattern are
// ordered by generation: starting a build cancels the previous one and only
// the latest generation may commit.
type GeometryBuilder struct {
	router routing.Router
	logger *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
	running     map[string]inflight
}

// NewGeometryBuilder creates a builder. router may be nil when no routing
// provider is configured, in which case only straight-line builds succeed.
func NewGeometryBuilder(router routing.Router, logger *slog.Logger) *GeometryBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeometryBuilder{
		router:      router,
		logger:      logger.With(slog.String("component", "geometry_builder")),
		generations: make(map[string]uint64),
		running:     make(map[string]inflight),
	}
}

func (b *GeometryBuilder) begin(ctx context.Context, patternID string) (context.Context, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.running[patternID]; ok {
		prev.cancel()
	}
	b.generations[patternID]++
	gen := b.generations[patternID]

	buildCtx, cancel := context.WithCancel(ctx)
	b.running[patternID] = inflight{generation: gen, cancel: cancel}
	return buildCtx, gen
}

func (b *GeometryBuilder) finish(patternID string, gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.running[patternID]; ok && cur.generation == gen {
		cur.cancel()
		delete(b.running, patternID)
	}
}

// Current reports whether gen is the latest build generation for the pattern.
func (b *GeometryBuilder) Current(patternID string, gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generations[patternID] == gen
}

// Build derives segments and control points for the pattern's halts.
// Nothing is persisted; pass the result to Commit.
func (b *GeometryBuilder) Build(ctx context.Context, pattern models.Pattern, locator geometry.Locator, opts Options) (Geometry, error) {
	buildCtx, gen := b.begin(ctx, pattern.ID)
	defer b.finish(pattern.ID, gen)

	logger := b.logger.With(
		slog.String("pattern_id", pattern.ID),
		slog.Uint64("generation", gen))

	located := geometry.LocateHalts(pattern.Halts, locator, logger)
	coords := geometry.Coordinates(located)

	var segments [][]models.Coordinate
	if !opts.FollowStreets {
		segments = geometry.StraightSegments(coords)
	} else {
		if b.router == nil {
			return Geometry{}, fmt.Errorf("%w: %w", ErrNoGeometry, routing.ErrNotConfigured)
		}
		if len(coords) < 2 {
			return Geometry{}, ErrNoGeometry
		}
		routed, err := b.router.Route(buildCtx, coords, routing.Options{AvoidMotorways: opts.AvoidMotorways})
		if err != nil {
			if !b.Current(pattern.ID, gen) {
				return Geometry{}, ErrSuperseded
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Geometry{}, ctxErr
			}
			logging.LogError(logger, "routing failed for pattern", err,
				slog.Int("halts", len(coords)),
				slog.Bool("avoid_motorways", opts.AvoidMotorways))
			return Geometry{}, fmt.Errorf("%w: %w", ErrNoGeometry, err)
		}
		segments = routed
	}

	segments = geometry.NonEmpty(segments)
	if len(segments) == 0 {
		return Geometry{}, ErrNoGeometry
	}

	controlPoints := geometry.ControlPointsFromSegments(located, segments)
	if len(controlPoints) == 0 {
		return Geometry{}, ErrNoGeometry
	}

	logging.LogOperation(logger, "pattern_geometry_built",
		slog.Int("segments", len(segments)),
		slog.Int("control_points", len(controlPoints)),
		slog.Bool("follow_streets", opts.FollowStreets))

	return Geometry{
		PatternID:     pattern.ID,
		Generation:    gen,
		Segments:      segments,
		Shape:         geometry.Flatten(segments),
		ControlPoints: controlPoints,
	}, nil
}

// Commit runs persist only if g is still the newest build for its pattern.
// The builder is locked while persist runs so commits for one pattern are
// applied in generation order.
func (b *GeometryBuilder) Commit(g Geometry, persist func(Geometry) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.generations[g.PatternID] != g.Generation {
		b.logger.Info("discarding superseded geometry",
			slog.String("pattern_id", g.PatternID),
			slog.Uint64("generation", g.Generation),
			slog.Uint64("current_generation", b.generations[g.PatternID]))
		return ErrSuperseded
	}
	return persist(g)
}

// Supersede invalidates every build started so far for the pattern, cancels
// the in-flight one and runs persist under the commit lock. It is used by
// edits that replace geometry without building, such as deleting a shape.
func (b *GeometryBuilder) Supersede(patternID string, persist func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.running[patternID]; ok {
		prev.cancel()
		delete(b.running, patternID)
	}
	b.generations[patternID]++
	return persist()
}
