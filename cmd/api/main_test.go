package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editor.datatools.dev/internal/appconf"
	"editor.datatools.dev/internal/events"
	"editor.datatools.dev/internal/metrics"
	"editor.datatools.dev/internal/routing"
)

func TestParseFlagsDefaults(t *testing.T) {
	f, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 4000, f.config.Port)
	assert.Equal(t, appconf.Development, f.config.Env)
	assert.Equal(t, []string{"test"}, f.config.ApiKeys)
	assert.Empty(t, f.config.ExemptApiKeys)
	assert.Equal(t, 100, f.config.RateLimit)
	assert.Equal(t, "./editor.db", f.dataPath)
	assert.Equal(t, "info", f.logLevel)
	assert.Zero(t, f.refreshInterval)
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{
		"-port", "8080",
		"-env", "production",
		"-api-keys", "alpha, beta,,",
		"-exempt-api-keys", "internal",
		"-rate-limit", "-1",
		"-gtfs-url", "https://example.com/gtfs.zip",
		"-refresh-interval", "1h",
		"-verbose",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 8080, f.config.Port)
	assert.Equal(t, appconf.Production, f.config.Env)
	assert.Equal(t, []string{"alpha", "beta"}, f.config.ApiKeys)
	assert.Equal(t, []string{"internal"}, f.config.ExemptApiKeys)
	assert.Equal(t, -1, f.config.RateLimit)
	assert.Equal(t, "https://example.com/gtfs.zip", f.gtfsURL)
	assert.Equal(t, time.Hour, f.refreshInterval)
	assert.True(t, f.config.Verbose)
}

func TestParseFlagsRejectsInvalidValues(t *testing.T) {
	tests := [][]string{
		{"-port", "0"},
		{"-port", "70000"},
		{"-refresh-interval", "-5m"},
		{"-rate-limit", "many"},
	}
	for _, args := range tests {
		_, err := parseFlags(args, io.Discard)
		assert.Error(t, err, "args %v", args)
	}
}

func TestNewRouterWithoutEngines(t *testing.T) {
	router := newRouter(appconf.RoutingConfig{}, metrics.NewCollector(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	// A typed nil *Chain inside the interface would defeat the builder's nil check.
	assert.True(t, router == nil)
}

func TestNewRouterWithEngines(t *testing.T) {
	cfg := appconf.RoutingConfig{
		Valhalla:    routing.ValhallaConfig{URL: "http://valhalla.local/route"},
		GraphHopper: routing.GraphHopperConfig{Keys: []string{"k1"}},
	}
	router := newRouter(cfg, metrics.NewCollector(), nil)
	require.NotNil(t, router)
	chain, ok := router.(*routing.Chain)
	require.True(t, ok)
	assert.True(t, chain.Configured())
}

func TestNewPublisherWithoutNATS(t *testing.T) {
	publisher := newPublisher(appconf.EventsConfig{}, metrics.NewCollector(), nil)
	assert.IsType(t, events.NopPublisher{}, publisher)
}
