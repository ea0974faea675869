// Package config loads and validates the runtime configuration and
// the technology catalog.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/adoptioncheck/radar/internal/core"
)

const (
	DefaultConcurrency    = 8
	DefaultRequestTimeout = 15 * time.Second
	DefaultGitHubDelay    = 500 * time.Millisecond
	DefaultTopNInsights   = 5
	DefaultDBPath         = "data/radar.db"
)

// Config is the explicit configuration value passed into the pipeline
// entry point. There is no process-wide configuration state.
type Config struct {
	DBPath         string        `json:"dbPath,omitempty"`
	Concurrency    int           `json:"concurrency,omitempty" validate:"omitempty,min=1,max=64"`
	RequestTimeout Duration      `json:"requestTimeout,omitempty"`
	GitHubDelay    Duration      `json:"githubDelay,omitempty"`
	HypeThreshold  float64       `json:"hypeThreshold,omitempty" validate:"omitempty,gt=1"`
	MinorThreshold float64       `json:"minorThreshold,omitempty" validate:"omitempty,gt=1"`
	TopNInsights   int           `json:"topNInsights,omitempty" validate:"omitempty,min=1"`
	Technologies   []core.TechnologySpec `json:"technologies" validate:"required,min=1,dive"`

	// GitHubToken comes from the environment, never from the file.
	GitHubToken string `json:"-"`
}

// Duration wraps time.Duration with JSON string encoding ("500ms", "15s").
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Default returns the configuration with the built-in catalog, so the
// tool runs with zero configuration.
func Default() Config {
	cfg := Config{
		DBPath:         DefaultDBPath,
		Concurrency:    DefaultConcurrency,
		RequestTimeout: Duration(DefaultRequestTimeout),
		GitHubDelay:    Duration(DefaultGitHubDelay),
		HypeThreshold:  10.0,
		MinorThreshold: 1.5,
		TopNInsights:   DefaultTopNInsights,
		Technologies:   defaultCatalog(),
	}
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	return cfg
}

// Load reads a JSON config file over the defaults. An empty path
// returns Default(). A broken or invalid file is a fatal
// configuration error: the caller aborts the run.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", core.ErrNoCatalog, err)
	}

	// A file-provided catalog replaces the built-in one entirely; a
	// file without one keeps the built-ins and only overrides knobs.
	builtin := cfg.Technologies
	cfg.Technologies = nil
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", core.ErrNoCatalog, path, err)
	}
	if len(cfg.Technologies) == 0 {
		cfg.Technologies = builtin
	}
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate resolves PURL identifiers and checks the catalog's shape.
func (c *Config) Validate() error {
	if len(c.Technologies) == 0 {
		return core.ErrNoCatalog
	}

	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Technologies))
	for i := range c.Technologies {
		spec := &c.Technologies[i]
		if seen[spec.Name] {
			return fmt.Errorf("duplicate technology %q", spec.Name)
		}
		seen[spec.Name] = true

		if err := core.ApplyPURLs(spec); err != nil {
			return err
		}
	}
	return nil
}

// Lists returns the strategic list names present in the catalog, in
// first-seen order.
func (c Config) Lists() []string {
	var lists []string
	seen := make(map[string]bool)
	for _, t := range c.Technologies {
		if !seen[t.List] {
			seen[t.List] = true
			lists = append(lists, t.List)
		}
	}
	return lists
}

// ForList returns the specs belonging to one strategic list.
func (c Config) ForList(list string) []core.TechnologySpec {
	var specs []core.TechnologySpec
	for _, t := range c.Technologies {
		if t.List == list {
			specs = append(specs, t)
		}
	}
	return specs
}
