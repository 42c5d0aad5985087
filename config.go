package waypoint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/viant/waypoint/internal/logging"
	"github.com/viant/waypoint/policy"
	"github.com/viant/waypoint/service/driver"
	"github.com/viant/waypoint/service/meta"
	"github.com/viant/waypoint/service/projector"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. WAYPOINT_SESSION_CAPACITY
const EnvPrefix = "WAYPOINT_"

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML and environment variables with LoadConfig.
type Config struct {
	Session     SessionConfig      `json:"session" yaml:"session"`
	Driver      DriverConfig       `json:"driver" yaml:"driver"`
	Checkpoints driver.Checkpoints `json:"checkpoints" yaml:"checkpoints"`
	Projection  ProjectionConfig   `json:"projection" yaml:"projection"`
	Workflow    WorkflowConfig     `json:"workflow" yaml:"workflow"`
	Policy      policy.Policy      `json:"policy" yaml:"policy"`
	HTTP        HTTPConfig         `json:"http" yaml:"http"`
	Logging     logging.Config     `json:"logging" yaml:"logging"`
	Tracing     TracingConfig      `json:"tracing" yaml:"tracing"`
}

type SessionConfig struct {
	// Capacity bounds the number of live sessions
	Capacity int `json:"capacity" yaml:"capacity"`
}

type DriverConfig struct {
	// MaxSteps bounds the actions executed by a single advance
	MaxSteps int `json:"maxSteps" yaml:"maxSteps"`
}

type ProjectionConfig struct {
	Fields []projector.FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type WorkflowConfig struct {
	// URL locates the workflow definition
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// StepsURL enables file based step history under the given location
	StepsURL string `json:"stepsURL,omitempty" yaml:"stepsURL,omitempty"`
}

type HTTPConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Output is a file path; empty writes to stdout
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultConfig returns a Config populated with default values. Callers may
// modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{Capacity: 128},
		Driver:  DriverConfig{MaxSteps: driver.DefaultMaxSteps},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Logging: *logging.DefaultConfig(),
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Session.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("session.capacity must be > 0"))
	}
	if c.Driver.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("driver.maxSteps must be > 0"))
	}
	if err := c.Checkpoints.Validate(); err != nil {
		errs = append(errs, err)
	}
	seen := map[string]bool{}
	for _, field := range c.Projection.Fields {
		if field.Name == "" {
			errs = append(errs, fmt.Errorf("projection field name was empty"))
			continue
		}
		if seen[field.Name] {
			errs = append(errs, fmt.Errorf("duplicate projection field %s", field.Name))
		}
		seen[field.Name] = true
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from the YAML document at URL (any afs
// location, optional), then applies WAYPOINT_* environment overrides.
//
// Precedence (highest to lowest):
//  1. Environment variables (WAYPOINT_SESSION_CAPACITY -> session.capacity)
//  2. YAML document
//  3. DefaultConfig
func LoadConfig(ctx context.Context, URL string, metaService *meta.Service) (*Config, error) {
	k := koanf.New(".")
	defaults, err := yamlv3.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err = k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if URL != "" {
		if metaService == nil {
			metaService = meta.New(nil, "")
		}
		content, err := metaService.Download(ctx, URL)
		if err != nil {
			return nil, err
		}
		if err = k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
		}
	}

	known := map[string]string{}
	for _, key := range k.Keys() {
		known[strings.ToLower(key)] = key
	}
	if err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		if actual, ok := known[key]; ok {
			return actual
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Checkpoints.Init()
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
