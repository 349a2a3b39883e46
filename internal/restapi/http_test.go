package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editor.datatools.dev/internal/app"
	"editor.datatools.dev/internal/appconf"
	"editor.datatools.dev/internal/gtfs"
	"editor.datatools.dev/internal/i18n"
	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/metrics"
	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/routing"
)

type stubRouter struct {
	segments [][]models.Coordinate
	err      error
}

func (s *stubRouter) Name() string { return "stub" }

func (s *stubRouter) Route(context.Context, []models.Coordinate, routing.Options) ([][]models.Coordinate, error) {
	return s.segments, s.err
}

// createTestApi creates a new restAPI instance with a GTFS manager initialized for use in tests.
func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWithRouter(t, nil)
}

func createTestApiWithRouter(t *testing.T, router routing.Router) *RestAPI {
	t.Helper()
	collector := metrics.NewCollector()
	gtfsConfig := gtfs.Config{
		GtfsURL:      models.FixturePath(t, "editor.zip"),
		GTFSDataPath: ":memory:",
		Env:          appconf.Test,
		Router:       router,
		Metrics:      collector,
	}
	gtfsManager, err := gtfs.InitGTFSManager(gtfsConfig)
	require.NoError(t, err)
	t.Cleanup(gtfsManager.Shutdown)

	app := &app.Application{
		Config: appconf.Config{
			Env:     appconf.Test,
			ApiKeys: []string{"TEST"},
		},
		GtfsConfig:  gtfsConfig,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		GtfsManager: gtfsManager,
		Metrics:     collector,
		Messages:    i18n.MustLoad(),
	}

	return &RestAPI{Application: app}
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	return serveApiRequest(t, api, http.MethodGet, endpoint, "", nil)
}

// serveApiRequest sends one request through the full middleware stack and
// decodes the response envelope.
func serveApiRequest(t *testing.T, api *RestAPI, method, endpoint, body string, headers map[string]string) (*http.Response, models.ResponseModel) {
	t.Helper()
	var response models.ResponseModel
	resp := serveApiRequestInto(t, api, method, endpoint, body, headers, &response)
	return resp, response
}

func serveApiRequestInto(t *testing.T, api *RestAPI, method, endpoint, body string, headers map[string]string, dst any) *http.Response {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+endpoint, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.CloseLogged(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	err = json.NewDecoder(resp.Body).Decode(dst)
	require.NoError(t, err)

	return resp
}

// entryOf returns data.entry of a decoded envelope.
func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "data.entry should be an object")
	return entry
}

func referencesOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	refs, ok := data["references"].(map[string]interface{})
	require.True(t, ok)
	return refs
}

type validationResponse struct {
	Code        int                 `json:"code"`
	Text        string              `json:"text"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func TestHealthz(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, model.Code)
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestMetricsEndpointNeedsNoKey(t *testing.T) {
	api := createTestApi(t)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "editor_feed_imports_total")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/editor/nothing-here?key=TEST")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)
}

func TestWrongMethodIsNotAllowed(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiRequest(t, api, http.MethodPut, "/api/editor/pattern/R1:1/shape?key=TEST", "{}", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, model.Code)
}

func TestEndpointsRequireValidApiKey(t *testing.T) {
	api := createTestApi(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/editor/feed-info"},
		{http.MethodGet, "/api/editor/patterns"},
		{http.MethodGet, "/api/editor/pattern/R1:1"},
		{http.MethodPost, "/api/editor/pattern/R1:1/shape"},
		{http.MethodDelete, "/api/editor/pattern/R1:1/shape"},
		{http.MethodGet, "/api/editor/pattern/R1:1/shape-issues"},
		{http.MethodPost, "/api/editor/pattern/R1:1/normalize-stop-times"},
		{http.MethodGet, "/api/editor/shape/SH1"},
		{http.MethodPost, "/api/editor/booking-rule/validate"},
	}

	for _, e := range endpoints {
		t.Run(e.method+" "+e.path, func(t *testing.T) {
			resp, model := serveApiRequest(t, api, e.method, e.path+"?key=INVALID", "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, http.StatusUnauthorized, model.Code)
			assert.Equal(t, "permission denied", model.Text)
		})
	}

	// nothing was changed by the rejected requests
	pattern, err := api.GtfsManager.Pattern(context.Background(), "R1:1")
	require.NoError(t, err)
	assert.Equal(t, "SH1", pattern.ShapeID)
}

func TestInvalidApiKeyMessageIsLocalized(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiRequest(t, api, http.MethodGet, "/api/editor/patterns?key=nope", "", map[string]string{
		"Accept-Language": "fr-CA,fr;q=0.9",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "permission refusée", model.Text)
}
