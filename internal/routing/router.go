package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"editor.datatools.dev/internal/logging"
	"editor.datatools.dev/internal/models"
)

var (
	// ErrNotConfigured is returned by a provider with no endpoint or key.
	ErrNotConfigured = errors.New("routing provider is not configured")
	// ErrNoRoute is returned when a provider answers without usable geometry.
	ErrNoRoute = errors.New("routing provider returned no route")
)

// Options tune a routing request.
type Options struct {
	AvoidMotorways bool
}

// Router turns an ordered list of halt coordinates into one segment per
// consecutive pair.
type Router interface {
	Name() string
	Route(ctx context.Context, points []models.Coordinate, opts Options) ([][]models.Coordinate, error)
}

// Observer receives one call per provider attempt.
type Observer interface {
	ObserveRoute(provider, outcome string, elapsed time.Duration)
}

// Route attempt outcomes reported to an Observer.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeEmpty     = "empty"
	OutcomeSkipped   = "skipped"
	OutcomeCancelled = "cancelled"
)

// StatusError reports a non-2xx answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
}

const defaultTimeout = 30 * time.Second

func defaultHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTimeout}
}

// doJSON issues the request and decodes a JSON body into out. Non-2xx
// answers become a *StatusError carrying the provider's "message" field
// when there is one.
func doJSON(ctx context.Context, client *http.Client, provider, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", provider, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer logging.CloseLogged(resp.Body,
		slog.Default().With(slog.String("component", "routing_"+provider)),
		"http_response_body")

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(b, &problem)
		msg := problem.Message
		if msg == "" {
			msg = problem.Error
		}
		return &StatusError{Provider: provider, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", provider, err)
	}
	return nil
}
