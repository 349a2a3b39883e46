package appconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editor.datatools.dev/internal/models"
)

func TestEnvFlagToEnvironment(t *testing.T) {
	assert.Equal(t, Test, EnvFlagToEnvironment("test"))
	assert.Equal(t, Production, EnvFlagToEnvironment("Production"))
	assert.Equal(t, Development, EnvFlagToEnvironment("development"))
	assert.Equal(t, Development, EnvFlagToEnvironment("staging"))
	assert.Equal(t, "production", Production.String())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServiceConfig(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := LoadServiceConfig("")
		require.NoError(t, err)
		assert.Equal(t, models.PatternToStopDistanceThresholdMeters, cfg.ShapeFit.ThresholdMeters)
		assert.Equal(t, "editor", cfg.Events.SubjectPrefix)
	})

	t.Run("reads routing providers", func(t *testing.T) {
		path := writeConfig(t, `
routing:
  valhalla:
    url: http://valhalla.local/route
    precision: 6
  graphhopper:
    keys: [k1, k2]
    point_limit: 50
    alternates:
      - bbox: [-123, 47, -122, 48]
        url: http://regional.local/
shape_fit:
  threshold_meters: 35
`)
		cfg, err := LoadServiceConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "http://valhalla.local/route", cfg.Routing.Valhalla.URL)
		assert.Equal(t, []string{"k1", "k2"}, cfg.Routing.GraphHopper.Keys)
		assert.Equal(t, 50, cfg.Routing.GraphHopper.PointLimit)
		require.Len(t, cfg.Routing.GraphHopper.Alternates, 1)
		assert.Equal(t, models.BoundingBox{-123, 47, -122, 48}, cfg.Routing.GraphHopper.Alternates[0].BBox)
		assert.Equal(t, 35.0, cfg.ShapeFit.ThresholdMeters)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		path := writeConfig(t, `
shape_fit:
  threshold_meters: -1
events:
  nats_url: "not a url"
`)
		_, err := LoadServiceConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ThresholdMeters")
		assert.Contains(t, err.Error(), "NATSURL")
	})

	t.Run("alternate needs a url or key", func(t *testing.T) {
		path := writeConfig(t, `
routing:
  graphhopper:
    alternates:
      - bbox: [0, 0, 1, 1]
`)
		_, err := LoadServiceConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadServiceConfig(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"VALHALLA_URL":             "http://v/route",
		"GRAPH_HOPPER_URL":         "http://gh/",
		"GRAPH_HOPPER_KEY":         "a, b",
		"GRAPH_HOPPER_POINT_LIMIT": "12",
		"NATS_URL":                 "nats://127.0.0.1:4222",
	}
	cfg := DefaultServiceConfig()
	require.NoError(t, applyEnvOverrides(&cfg, func(k string) string { return env[k] }))

	assert.Equal(t, "http://v/route", cfg.Routing.Valhalla.URL)
	assert.Equal(t, "http://gh/", cfg.Routing.GraphHopper.URL)
	assert.Equal(t, []string{"a", "b"}, cfg.Routing.GraphHopper.Keys)
	assert.Equal(t, 12, cfg.Routing.GraphHopper.PointLimit)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Events.NATSURL)

	env["GRAPH_HOPPER_POINT_LIMIT"] = "lots"
	assert.Error(t, applyEnvOverrides(&cfg, func(k string) string { return env[k] }))
}
