package routing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"editor.datatools.dev/internal/geometry"
	"editor.datatools.dev/internal/models"
)

const (
	DefaultGraphHopperURL = "https://graphhopper.com/api/1/"
	defaultPointLimit     = 30
	defaultProfile        = "car"
)

var waypointInstruction = regexp.MustCompile(`Waypoint (\d+)`)

// Alternate overrides the GraphHopper URL or key for requests whose points
// all fall inside BBox.
type Alternate struct {
	BBox models.BoundingBox `yaml:"bbox"`
	URL  string             `yaml:"url" validate:"required_without=Key"`
	Key  string             `yaml:"key" validate:"required_without=URL"`
}

type GraphHopperConfig struct {
	URL        string      `yaml:"url"`
	Keys       []string    `yaml:"keys"`
	PointLimit int         `yaml:"point_limit" validate:"omitempty,min=0"`
	Profile    string      `yaml:"profile"`
	Alternates []Alternate `yaml:"alternates" validate:"dive"`
}

// GraphHopperClient routes over the GraphHopper route API. Long point lists
// are split into chunks that share their boundary point.
type GraphHopperClient struct {
	url        string
	keys       *KeyRotator
	pointLimit int
	profile    string
	alternates []Alternate
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGraphHopperClient(config GraphHopperConfig, httpClient *http.Client, logger *slog.Logger) *GraphHopperClient {
	base := config.URL
	if base == "" {
		base = DefaultGraphHopperURL
	}
	limit := config.PointLimit
	if limit <= 2 {
		limit = defaultPointLimit
	}
	profile := config.Profile
	if profile == "" {
		profile = defaultProfile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHopperClient{
		url:        withTrailingSlash(base),
		keys:       NewKeyRotator(config.Keys),
		pointLimit: limit,
		profile:    profile,
		alternates: config.Alternates,
		httpClient: defaultHTTPClient(httpClient),
		logger:     logger.With(slog.String("component", "graphhopper")),
	}
}

func (c *GraphHopperClient) Name() string { return "graphhopper" }

func (c *GraphHopperClient) Route(ctx context.Context, points []models.Coordinate, opts Options) ([][]models.Coordinate, error) {
	if c.keys.Len() == 0 {
		return nil, ErrNotConfigured
	}
	if len(points) < 2 {
		return nil, ErrNoRoute
	}

	var segments [][]models.Coordinate
	for _, chunk := range ChunkPoints(points, c.pointLimit) {
		path, err := c.routeChunk(ctx, chunk, opts)
		if err != nil {
			return nil, err
		}
		legs, err := splitLegs(path)
		if err != nil {
			return nil, err
		}
		segments = append(segments, legs...)
	}
	if len(geometry.NonEmpty(segments)) == 0 {
		return nil, ErrNoRoute
	}
	return segments, nil
}

// ChunkPoints splits points into runs of at most limit points. Each run
// after the first starts on the previous run's last point.
func ChunkPoints(points []models.Coordinate, limit int) [][]models.Coordinate {
	if limit < 2 {
		limit = 2
	}
	var chunks [][]models.Coordinate
	for start := 0; start < len(points)-1; start += limit - 1 {
		end := min(start+limit, len(points))
		chunks = append(chunks, points[start:end])
		if end == len(points) {
			break
		}
	}
	return chunks
}

type graphHopperInstruction struct {
	Text     string `json:"text"`
	Interval []int  `json:"interval"`
}

type graphHopperPath struct {
	Points       string                   `json:"points"`
	Instructions []graphHopperInstruction `json:"instructions"`
}

type graphHopperResponse struct {
	Paths   []graphHopperPath `json:"paths"`
	Message string            `json:"message"`
}

type graphHopperPriority struct {
	If         string  `json:"if"`
	MultiplyBy float64 `json:"multiply_by"`
}

type graphHopperPostRequest struct {
	CHDisable   bool `json:"ch.disable"`
	CustomModel struct {
		Priority []graphHopperPriority `json:"priority"`
	} `json:"custom_model"`
	Debug   bool         `json:"debug"`
	Points  [][2]float64 `json:"points"`
	Profile string       `json:"profile"`
}

// endpoint resolves the base URL and key for a chunk, applying every
// alternate whose box contains all points. Later alternates win.
func (c *GraphHopperClient) endpoint(points []models.Coordinate) (string, string) {
	base, key := c.url, c.keys.Next()
	for _, alt := range c.alternates {
		if alt.URL == "" && alt.Key == "" {
			c.logger.Warn("alternate graphhopper server has neither url nor key")
			continue
		}
		if !allInside(alt.BBox, points) {
			continue
		}
		if alt.URL != "" {
			base = withTrailingSlash(alt.URL)
		}
		if alt.Key != "" {
			key = alt.Key
		}
	}
	return base, key
}

func (c *GraphHopperClient) routeChunk(ctx context.Context, points []models.Coordinate, opts Options) (graphHopperPath, error) {
	base, key := c.endpoint(points)

	var response graphHopperResponse
	var err error
	if opts.AvoidMotorways {
		body := graphHopperPostRequest{
			CHDisable: true,
			Debug:     true,
			Points:    make([][2]float64, len(points)),
			Profile:   c.profile,
		}
		body.CustomModel.Priority = []graphHopperPriority{{If: "road_class == MOTORWAY", MultiplyBy: 0.1}}
		for i, p := range points {
			body.Points[i] = [2]float64{p.Lon, p.Lat}
		}
		endpoint := base + "route?" + url.Values{"key": {key}}.Encode()
		err = doJSON(ctx, c.httpClient, c.Name(), http.MethodPost, endpoint, body, &response)
	} else {
		query := url.Values{
			"key":     {key},
			"vehicle": {c.profile},
			"debug":   {"true"},
			"type":    {"json"},
		}
		for _, p := range points {
			query.Add("point", formatLatLon(p))
		}
		err = doJSON(ctx, c.httpClient, c.Name(), http.MethodGet, base+"route?"+query.Encode(), nil, &response)
	}
	if err != nil {
		return graphHopperPath{}, err
	}
	if len(response.Paths) == 0 {
		if response.Message != "" {
			return graphHopperPath{}, fmt.Errorf("%w: %s", ErrNoRoute, response.Message)
		}
		return graphHopperPath{}, ErrNoRoute
	}
	return response.Paths[0], nil
}

// splitLegs cuts the decoded path at every "Waypoint N" instruction and at
// the final instruction. Without intermediate waypoints the whole path is a
// single leg.
func splitLegs(path graphHopperPath) ([][]models.Coordinate, error) {
	line, err := geometry.DecodePolyline(path.Points, geometry.PrecisionGoogle)
	if err != nil {
		return nil, fmt.Errorf("decoding graphhopper path: %w", err)
	}

	boundaries := []int{0}
	for i, ins := range path.Instructions {
		if len(ins.Interval) == 0 {
			continue
		}
		if waypointInstruction.MatchString(ins.Text) || i == len(path.Instructions)-1 {
			boundaries = append(boundaries, ins.Interval[0])
		}
	}
	if len(boundaries) <= 2 {
		return [][]models.Coordinate{line}, nil
	}

	legs := make([][]models.Coordinate, 0, len(boundaries)-1)
	for i := 1; i < len(boundaries); i++ {
		from := min(boundaries[i-1], len(line))
		to := min(boundaries[i]+1, len(line))
		if from > to {
			from = to
		}
		legs = append(legs, line[from:to])
	}
	return legs, nil
}

func allInside(box models.BoundingBox, points []models.Coordinate) bool {
	for _, p := range points {
		if !box.Contains(p) {
			return false
		}
	}
	return true
}

func formatLatLon(c models.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
