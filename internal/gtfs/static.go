package gtfs

import (
	"context"
	"log/slog"
	"time"

	"editor.datatools.dev/internal/logging"
)

// importFeed loads the configured source into the store. Unchanged feeds
// are skipped by the store.
func (manager *Manager) importFeed(ctx context.Context) error {
	var (
		imported bool
		err      error
	)
	if manager.isLocalFile {
		imported, err = manager.GtfsDB.ImportFromFile(ctx, manager.gtfsSource)
	} else {
		imported, err = manager.GtfsDB.DownloadAndStore(ctx, manager.gtfsSource)
	}

	switch {
	case err != nil:
		manager.metrics.FeedImports.WithLabelValues("failed").Inc()
		return err
	case imported:
		manager.metrics.FeedImports.WithLabelValues("imported").Inc()
	default:
		manager.metrics.FeedImports.WithLabelValues("skipped").Inc()
	}

	if manager.config.Verbose {
		logging.LogOperation(manager.logger, "gtfs_feed_loaded",
			slog.String("source", manager.gtfsSource),
			slog.Bool("imported", imported),
			slog.Duration("duration", manager.GtfsDB.ImportRuntime()))
	}
	return nil
}

// updateStaticGTFS re-imports a remote feed on a fixed interval until shutdown.
func (manager *Manager) updateStaticGTFS(interval time.Duration) {
	defer manager.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			err := manager.importFeed(ctx)
			if err == nil {
				err = manager.RefreshCatalog(ctx)
			}
			cancel()

			if err != nil {
				logging.LogError(manager.logger, "error updating GTFS data", err,
					slog.String("source", manager.gtfsSource))
				continue
			}
		case <-manager.shutdownChan:
			manager.logger.Info("shutting down static GTFS updates")
			return
		}
	}
}
