package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
)

// Chain tries each provider in order and returns the first usable result.
// Unconfigured providers are skipped.
type Chain struct {
	routers  []Router
	observer Observer
	logger   *slog.Logger
}

func NewChain(logger *slog.Logger, observer Observer, routers ...Router) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		routers:  routers,
		observer: observer,
		logger:   logger.With(slog.String("component", "routing")),
	}
}

func (c *Chain) Name() string { return "chain" }

// Configured reports whether any provider can be tried. A nil or empty
// chain routes nothing.
func (c *Chain) Configured() bool {
	return c != nil && len(c.routers) > 0
}

func (c *Chain) Route(ctx context.Context, points []models.Coordinate, opts Options) ([][]models.Coordinate, error) {
	var lastErr error
	for _, router := range c.routers {
		start := time.Now()
		segments, err := router.Route(ctx, points, opts)
		elapsed := time.Since(start)

		switch {
		case errors.Is(err, ErrNotConfigured):
			c.observe(router.Name(), OutcomeSkipped, elapsed)
			continue
		case ctx.Err() != nil:
			c.observe(router.Name(), OutcomeCancelled, elapsed)
			return nil, ctx.Err()
		case err != nil:
			c.observe(router.Name(), OutcomeError, elapsed)
			logging.LogError(c.logger, "routing provider failed", err,
				slog.String("provider", router.Name()),
				slog.Int("points", len(points)))
			lastErr = err
			continue
		}

		if len(geometry.NonEmpty(segments)) == 0 {
			c.observe(router.Name(), OutcomeEmpty, elapsed)
			lastErr = ErrNoRoute
			continue
		}

		c.observe(router.Name(), OutcomeOK, elapsed)
		logging.LogOperation(c.logger, "route_resolved",
			slog.String("provider", router.Name()),
			slog.Int("segments", len(segments)),
			slog.Duration("elapsed", elapsed))
		return segments, nil
	}

	if lastErr == nil {
		return nil, ErrNotConfigured
	}
	if errors.Is(lastErr, ErrNoRoute) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", ErrNoRoute, lastErr)
}

func (c *Chain) observe(provider, outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRoute(provider, outcome, elapsed)
	}
}
