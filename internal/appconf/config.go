package appconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"editor.datatools.dev/internal/models"
	"editor.datatools.dev/internal/routing"
)

// Config holds the settings that come from command-line flags.
type Config struct {
	Port          int
	Env           Environment
	ApiKeys       []string
	ExemptApiKeys []string
	RateLimit     int
	Verbose       bool
}

// ServiceConfig holds the settings read from the YAML config file.
type ServiceConfig struct {
	Routing  RoutingConfig  `yaml:"routing"`
	Events   EventsConfig   `yaml:"events"`
	ShapeFit ShapeFitConfig `yaml:"shape_fit"`
}

type RoutingConfig struct {
	Valhalla    routing.ValhallaConfig    `yaml:"valhalla"`
	GraphHopper routing.GraphHopperConfig `yaml:"graphhopper"`
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url" validate:"omitempty,url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type ShapeFitConfig struct {
	ThresholdMeters float64 `yaml:"threshold_meters" validate:"gte=0"`
}

// DefaultServiceConfig is used when no config file is given.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Events:   EventsConfig{SubjectPrefix: "editor"},
		ShapeFit: ShapeFitConfig{ThresholdMeters: models.PatternToStopDistanceThresholdMeters},
	}
}

// LoadServiceConfig loads .env into the environment, reads the YAML file at
// path (if any), applies environment overrides and validates the result.
func LoadServiceConfig(path string) (ServiceConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultServiceConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ServiceConfig{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ServiceConfig{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg, os.Getenv); err != nil {
		return ServiceConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *ServiceConfig, getenv func(string) string) error {
	if v := getenv("VALHALLA_URL"); v != "" {
		cfg.Routing.Valhalla.URL = v
	}
	if v := getenv("GRAPH_HOPPER_URL"); v != "" {
		cfg.Routing.GraphHopper.URL = v
	}
	if v := getenv("GRAPH_HOPPER_KEY"); v != "" {
		cfg.Routing.GraphHopper.Keys = SplitList(v)
	}
	if v := getenv("GRAPH_HOPPER_POINT_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GRAPH_HOPPER_POINT_LIMIT: %q", v)
		}
		cfg.Routing.GraphHopper.PointLimit = limit
	}
	if v := getenv("NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
	return nil
}

var validate = validator.New()

// Validate checks struct tags and returns every failing field.
func (c ServiceConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SplitList splits a comma-separated flag or variable, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
