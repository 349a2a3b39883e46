package gtfsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"editor.datatools.dev/internal/appconf"
	"editor.datatools.dev/internal/logging"
)

var ErrNotFound = errors.New("not found")

// Client is the main entry point for the pattern store
type Client struct {
	config        Config
	DB            *sql.DB
	importRuntime time.Duration
}

// NewClient opens the database and applies the schema.
func NewClient(config Config) (*Client, error) {
	if config.Env == appconf.Test && !config.inMemory() {
		return nil, fmt.Errorf("test database must use in-memory storage, got %q", config.DBPath)
	}

	db, err := createDB(config)
	if err != nil {
		return nil, err
	}
	if config.verbose {
		logging.LogOperation(config.logger(), "database_schema_ready",
			slog.String("db_path", config.DBPath))
	}

	return &Client{
		config: config,
		DB:     db,
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime is the wall time of the last import that was not skipped.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// DownloadAndStore downloads a GTFS zip from url and imports it.
func (c *Client) DownloadAndStore(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer logging.CloseLogged(resp.Body, c.config.logger(), "gtfs_download_body")

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	return c.ImportFeed(ctx, b, url)
}

// ImportFromFile imports GTFS data from a local zip file.
func (c *Client) ImportFromFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	return c.ImportFeed(ctx, data, path)
}
