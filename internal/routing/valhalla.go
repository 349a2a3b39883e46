package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/models"
)

// ValhallaConfig points at a Valhalla /route endpoint.
type ValhallaConfig struct {
	URL       string `yaml:"url"`
	Precision int    `yaml:"precision" validate:"omitempty,min=1,max=10"`
	Costing   string `yaml:"costing"`
}

// ValhallaClient routes over a Valhalla server. Each response leg becomes
// one segment.
type ValhallaClient struct {
	url        string
	precision  int
	costing    string
	httpClient *http.Client
}

func NewValhallaClient(config ValhallaConfig, httpClient *http.Client) *ValhallaClient {
	precision := config.Precision
	if precision == 0 {
		precision = geometry.PrecisionValhalla
	}
	costing := config.Costing
	if costing == "" {
		costing = "bus"
	}
	return &ValhallaClient{
		url:        config.URL,
		precision:  precision,
		costing:    costing,
		httpClient: defaultHTTPClient(httpClient),
	}
}

func (c *ValhallaClient) Name() string { return "valhalla" }

type valhallaLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type valhallaRequest struct {
	Locations      []valhallaLocation         `json:"locations"`
	CostingOptions map[string]valhallaCosting `json:"costing_options"`
	Costing        string                     `json:"costing"`
	Units          string                     `json:"units"`
}

type valhallaCosting struct {
	AvoidMotorways bool `json:"avoid_motorways"`
}

type valhallaResponse struct {
	Trip struct {
		Legs []struct {
			Shape string `json:"shape"`
		} `json:"legs"`
	} `json:"trip"`
}

func (c *ValhallaClient) Route(ctx context.Context, points []models.Coordinate, opts Options) ([][]models.Coordinate, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	if len(points) < 2 {
		return nil, ErrNoRoute
	}

	request := valhallaRequest{
		Locations: make([]valhallaLocation, len(points)),
		CostingOptions: map[string]valhallaCosting{
			"auto": {AvoidMotorways: opts.AvoidMotorways},
		},
		Costing: c.costing,
		Units:   "kilometers",
	}
	for i, p := range points {
		request.Locations[i] = valhallaLocation{Lat: p.Lat, Lon: p.Lon}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	endpoint := c.url + "?" + url.Values{"json": {string(payload)}}.Encode()

	var response valhallaResponse
	if err := doJSON(ctx, c.httpClient, c.Name(), http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	segments := make([][]models.Coordinate, 0, len(response.Trip.Legs))
	for i, leg := range response.Trip.Legs {
		line, err := geometry.DecodePolyline(leg.Shape, c.precision)
		if err != nil {
			return nil, fmt.Errorf("decoding valhalla leg %d: %w", i, err)
		}
		segments = append(segments, line)
	}
	if len(geometry.NonEmpty(segments)) == 0 {
		return nil, ErrNoRoute
	}
	return segments, nil
}
