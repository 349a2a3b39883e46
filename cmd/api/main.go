package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"editor.datatools.dev/internal/app"
	"editor.datatools.dev/internal/appconf"
	"editor.datatools.dev/internal/events"
	"editor.datatools.dev/internal/gtfs"
	"editor.datatools.dev/internal/i18n"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/metrics"
	"editor.datatools.dev/internal/restapi"
	"editor.datatools.dev/internal/routing"
	"editor.datatools.dev/internal/webui"
)

// flags holds the settings that come from the command line.
type flags struct {
	config          appconf.Config
	gtfsURL         string
	dataPath        string
	configPath      string
	logLevel        string
	refreshInterval time.Duration
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var f flags
	var env, apiKeys, exemptKeys string

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&f.config.Port, "port", 4000, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", "test", "Comma separated API keys")
	fs.StringVar(&exemptKeys, "exempt-api-keys", "", "Comma separated API keys that bypass rate limiting")
	fs.IntVar(&f.config.RateLimit, "rate-limit", 100, "Requests per second per API key; negative disables limiting")
	fs.StringVar(&f.gtfsURL, "gtfs-url", "", "Path or URL of a static GTFS zip file")
	fs.StringVar(&f.dataPath, "data-path", "./editor.db", "SQLite database path")
	fs.StringVar(&f.configPath, "config", "", "YAML service config file")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.BoolVar(&f.config.Verbose, "verbose", false, "Log import details")
	fs.DurationVar(&f.refreshInterval, "refresh-interval", 0, "Re-import a remote feed at this interval; 0 disables it")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if f.config.Port < 1 || f.config.Port > 65535 {
		return flags{}, fmt.Errorf("invalid port %d", f.config.Port)
	}
	if f.refreshInterval < 0 {
		return flags{}, fmt.Errorf("invalid refresh interval %s", f.refreshInterval)
	}

	f.config.Env = appconf.EnvFlagToEnvironment(env)
	f.config.ApiKeys = appconf.SplitList(apiKeys)
	f.config.ExemptApiKeys = appconf.SplitList(exemptKeys)
	return f, nil
}

// newRouter chains the configured routing engines, Valhalla first. It
// returns nil when no engine is configured so street following reports
// "not configured" instead of a routing failure.
func newRouter(cfg appconf.RoutingConfig, collector *metrics.Collector, logger *slog.Logger) routing.Router {
	var routers []routing.Router
	if cfg.Valhalla.URL != "" {
		routers = append(routers, routing.NewValhallaClient(cfg.Valhalla, nil))
	}
	if cfg.GraphHopper.URL != "" || len(cfg.GraphHopper.Keys) > 0 {
		routers = append(routers, routing.NewGraphHopperClient(cfg.GraphHopper, nil, logger))
	}
	chain := routing.NewChain(logger, collector, routers...)
	if !chain.Configured() {
		return nil
	}
	return chain
}

func newPublisher(cfg appconf.EventsConfig, collector *metrics.Collector, logger *slog.Logger) events.Publisher {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix, collector, logger)
	if err != nil {
		logging.LogError(logger, "failed to connect to NATS, pattern events disabled", err,
			slog.String("component", "events"))
		return events.NopPublisher{}
	}
	return publisher
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	logger := logging.NewStructuredLogger(stdout, logging.ParseLevel(f.logLevel))
	slog.SetDefault(logger)

	serviceConfig, err := appconf.LoadServiceConfig(f.configPath)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	gtfsConfig := gtfs.Config{
		GtfsURL:                 f.gtfsURL,
		GTFSDataPath:            f.dataPath,
		Env:                     f.config.Env,
		Verbose:                 f.config.Verbose,
		ShapeFitThresholdMeters: serviceConfig.ShapeFit.ThresholdMeters,
		RefreshInterval:         f.refreshInterval,
		Router:                  newRouter(serviceConfig.Routing, collector, logger),
		Publisher:               newPublisher(serviceConfig.Events, collector, logger),
		Metrics:                 collector,
		Logger:                  logger,
	}

	gtfsManager, err := gtfs.InitGTFSManager(gtfsConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize GTFS manager: %w", err)
	}
	defer gtfsManager.Shutdown()

	messages, err := i18n.Load()
	if err != nil {
		return err
	}

	application := &app.Application{
		Config:      f.config,
		GtfsConfig:  gtfsConfig,
		Logger:      logger,
		GtfsManager: gtfsManager,
		Metrics:     collector,
		Messages:    messages,
	}

	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	var extraRoutes []func(*httprouter.Router)
	if f.config.Env != appconf.Production {
		webUI := &webui.WebUI{Application: application}
		extraRoutes = append(extraRoutes, webUI.SetWebUIRoutes)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", f.config.Port),
		Handler:      api.Handler(extraRoutes...),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", f.config.Env.String())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
