package restapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editor.datatools.dev/internal/logging"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestRequestLoggingMiddleware(t *testing.T) {
	t.Run("logs HTTP request details", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("shape saved"))
		})

		req := httptest.NewRequest("POST", "/api/editor/pattern/R1:1/shape?key=secret", nil)
		req.Header.Set("User-Agent", "editor-ui/2.0")
		recorder := httptest.NewRecorder()
		NewRequestLoggingMiddleware(logger)(testHandler).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "shape saved", recorder.Body.String())

		lines := decodeLogLines(t, &buf)
		require.Len(t, lines, 1)
		line := lines[0]
		assert.Equal(t, "INFO", line["level"])
		assert.Equal(t, "http_request", line["msg"])
		assert.Equal(t, "POST", line["method"])
		assert.Equal(t, "/api/editor/pattern/R1:1/shape", line["path"])
		assert.Equal(t, float64(http.StatusCreated), line["status"])
		assert.Equal(t, float64(len("shape saved")), line["bytes"])
		assert.Equal(t, "editor-ui/2.0", line["user_agent"])
		assert.Equal(t, "http_server", line["component"])
		assert.Contains(t, line, "duration_ms")
		assert.NotContains(t, buf.String(), "secret")
	})

	t.Run("defaults status to 200", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		recorder := httptest.NewRecorder()
		NewRequestLoggingMiddleware(logger)(testHandler).ServeHTTP(recorder, httptest.NewRequest("GET", "/healthz", nil))

		lines := decodeLogLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, float64(http.StatusOK), lines[0]["status"])
		assert.Equal(t, "", lines[0]["user_agent"])
	})

	t.Run("assigns a request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		recorder := httptest.NewRecorder()
		NewRequestLoggingMiddleware(logger)(okHandler()).ServeHTTP(recorder, httptest.NewRequest("GET", "/healthz", nil))

		requestID := recorder.Header().Get("X-Request-ID")
		require.NotEmpty(t, requestID)
		lines := decodeLogLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, requestID, lines[0]["request_id"])
	})

	t.Run("propagates an incoming request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		req := httptest.NewRequest("GET", "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-42")
		recorder := httptest.NewRecorder()
		NewRequestLoggingMiddleware(logger)(okHandler()).ServeHTTP(recorder, req)

		assert.Equal(t, "req-42", recorder.Header().Get("X-Request-ID"))
		assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	})

	t.Run("exposes the request logger in context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context()).Info("handler called", slog.String("pattern_id", "R1:1"))
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "req-7")
		NewRequestLoggingMiddleware(logger)(testHandler).ServeHTTP(httptest.NewRecorder(), req)

		lines := decodeLogLines(t, &buf)
		require.Len(t, lines, 2)
		assert.Equal(t, "handler called", lines[0]["msg"])
		assert.Equal(t, "req-7", lines[0]["request_id"])
		assert.Equal(t, "R1:1", lines[0]["pattern_id"])
		assert.Equal(t, "http_request", lines[1]["msg"])
	})
}

func TestRequestLoggingIntegration(t *testing.T) {
	var buf bytes.Buffer
	api := createTestApi(t)
	api.Logger = logging.NewStructuredLogger(&buf, slog.LevelInfo)

	resp, _ := serveApiAndRetrieveEndpoint(t, api, "/api/editor/pattern/R1:1?key=INVALID")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	output := buf.String()
	assert.Contains(t, output, `"status":401`)
	assert.Contains(t, output, `"path":"/api/editor/pattern/R1:1"`)
	assert.NotContains(t, output, "INVALID")
}
