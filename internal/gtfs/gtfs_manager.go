package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"editor.datatools.dev/gtfsdb"
	"editor.datatools.dev/internal/events"
	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/metrics"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/patterns"
)

// Manager owns the feed store and exposes the pattern editing operations.
type Manager struct {
	GtfsDB *gtfsdb.Client

	config      Config
	gtfsSource  string
	isLocalFile bool
	logger      *slog.Logger
	metrics     *metrics.Collector
	publisher   events.Publisher
	builder     *patterns.GeometryBuilder

	catalogMutex sync.RWMutex
	catalog      *geometry.Catalog
	lastUpdated  time.Time

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitGTFSManager opens the store, imports the configured feed and loads the
// halt catalog.
func InitGTFSManager(config Config) (*Manager, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := config.Metrics
	if collector == nil {
		collector = metrics.NewCollector()
	}
	publisher := config.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	isLocalFile := !strings.HasPrefix(config.GtfsURL, "http://") && !strings.HasPrefix(config.GtfsURL, "https://")

	dbConfig := gtfsdb.NewConfig(config.GTFSDataPath, config.Env, config.Verbose)
	dbConfig.Logger = logger
	client, err := gtfsdb.NewClient(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GTFS database client: %w", err)
	}

	manager := &Manager{
		GtfsDB:       client,
		config:       config,
		gtfsSource:   config.GtfsURL,
		isLocalFile:  isLocalFile,
		logger:       logger,
		metrics:      collector,
		publisher:    publisher,
		builder:      patterns.NewGeometryBuilder(config.Router, logger),
		catalog:      geometry.NewCatalog(),
		shutdownChan: make(chan struct{}),
	}

	if config.GtfsURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := manager.importFeed(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("error loading GTFS data: %w", err)
		}
	}

	if err := manager.RefreshCatalog(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}

	if !isLocalFile && config.RefreshInterval > 0 {
		manager.wg.Add(1)
		go manager.updateStaticGTFS(config.RefreshInterval)
	}

	return manager, nil
}

// Shutdown stops background refreshes and closes the store.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
		manager.publisher.Close()
		if manager.GtfsDB != nil {
			_ = manager.GtfsDB.Close()
		}
	})
}

// RefreshCatalog reloads stops, locations and location groups from the store.
func (manager *Manager) RefreshCatalog(ctx context.Context) error {
	catalog, err := manager.GtfsDB.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("error loading halt catalog: %w", err)
	}

	manager.catalogMutex.Lock()
	manager.catalog = catalog
	manager.lastUpdated = time.Now()
	manager.catalogMutex.Unlock()
	return nil
}

// Locate resolves a halt reference against the current catalog.
func (manager *Manager) Locate(ref models.HaltRef) (models.Coordinate, bool) {
	manager.catalogMutex.RLock()
	defer manager.catalogMutex.RUnlock()
	return manager.catalog.Locate(ref)
}

// LastUpdated is when the halt catalog was last loaded.
func (manager *Manager) LastUpdated() time.Time {
	manager.catalogMutex.RLock()
	defer manager.catalogMutex.RUnlock()
	return manager.lastUpdated
}

func (manager *Manager) ShapeFitThreshold() float64 {
	return manager.config.threshold()
}
