package gtfs

import (
	"log/slog"
	"time"

	"editor.datatools.dev/internal/appconf"
	"editor.datatools.dev/internal/events"
	"editor.datatools.dev/internal/metrics"
	"editor.datatools.dev/internal/routing"
)

// DefaultShapeFitThresholdMeters is how far a stop control point may sit from
// its halt before the shape is flagged.
const DefaultShapeFitThresholdMeters = 20.0

type Config struct {
	GtfsURL      string // local zip path or http(s) URL; empty starts with an empty store
	GTFSDataPath string // SQLite path, ":memory:" in tests
	Env          appconf.Environment
	Verbose      bool

	ShapeFitThresholdMeters float64
	// RefreshInterval re-imports a remote feed periodically. Zero disables it.
	RefreshInterval time.Duration

	Router    routing.Router
	Publisher events.Publisher
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}

func (config Config) threshold() float64 {
	if config.ShapeFitThresholdMeters > 0 {
		return config.ShapeFitThresholdMeters
	}
	return DefaultShapeFitThresholdMeters
}
