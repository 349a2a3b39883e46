package app

import (
	"log/slog"

	"editor.datatools.dev/internal/appconf"
	"editor.datatools.dev/internal/gtfs"
	"editor.datatools.dev/internal/i18n"
	"editor.datatools.dev/internal/metrics"
)

// Application holds the dependencies shared by the HTTP handlers, helpers
// and middleware.
type Application struct {
	Config      appconf.Config
	GtfsConfig  gtfs.Config
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Metrics     *metrics.Collector
	Messages    *i18n.Catalog
}
