package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/autotile/internal/autotile"
	"github.com/lawnchairsociety/autotile/internal/logger"
	"github.com/lawnchairsociety/autotile/internal/store"
)

// Config holds the autotile configuration file.
type Config struct {
	Rules     RulesConfig     `yaml:"rules"`
	Solver    SolverConfig    `yaml:"solver"`
	Store     store.Config    `yaml:"store"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   logger.Config   `yaml:"logging"`
}

// RulesConfig selects the rule file.
type RulesConfig struct {
	// Path to a rule file. Empty uses the embedded default rules.
	Path string `yaml:"path"`
}

// SolverConfig holds tile resolution settings.
type SolverConfig struct {
	Seed          int64 `yaml:"seed"`
	FallbackTile  int   `yaml:"fallback_tile"`
	AmbiguousTile int   `yaml:"ambiguous_tile"`

	// Compass is "standard" or "mirrored" (east and west swapped).
	Compass string `yaml:"compass"`

	RetireUnresolvable bool `yaml:"retire_unresolvable"`
	DebugOverlay       bool `yaml:"debug_overlay"`
}

// TelemetryConfig toggles OTLP trace export.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a Config with the default marker tiles and a local
// SQLite store.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Seed:          1,
			FallbackTile:  autotile.DefaultFallbackTile,
			AmbiguousTile: autotile.DefaultAmbiguousTile,
			Compass:       "standard",
		},
		Store:   store.DefaultConfig("data/autotile.db"),
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist, the defaults are used.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	config.Logging.ApplyEnv()
	return config, nil
}

// ApplyEnv applies AUTOTILE_* environment variable overrides
func (c *Config) ApplyEnv() error {
	if seed := os.Getenv("AUTOTILE_SEED"); seed != "" {
		v, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid AUTOTILE_SEED %q: %w", seed, err)
		}
		c.Solver.Seed = v
	}

	if rules := os.Getenv("AUTOTILE_RULES"); rules != "" {
		c.Rules.Path = rules
	}

	if driver := os.Getenv("AUTOTILE_STORE_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	return nil
}

// Validate checks settings that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	var errs []error

	if _, err := autotile.CompassByName(c.Solver.Compass); err != nil {
		errs = append(errs, err)
	}
	if c.Solver.FallbackTile == c.Solver.AmbiguousTile {
		errs = append(errs, fmt.Errorf("fallback_tile and ambiguous_tile must differ, both are %d", c.Solver.FallbackTile))
	}

	switch store.DialectType(c.Store.Driver) {
	case store.DialectSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite driver"))
		}
	case store.DialectPostgres:
		if c.Store.Postgres.Host == "" || c.Store.Postgres.Database == "" {
			errs = append(errs, errors.New("store.postgres needs a host and database"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	return errors.Join(errs...)
}

// SolverOptions converts the solver section to engine options
func (c *Config) SolverOptions() (autotile.Options, error) {
	compass, err := autotile.CompassByName(c.Solver.Compass)
	if err != nil {
		return autotile.Options{}, err
	}
	return autotile.Options{
		Seed:               c.Solver.Seed,
		FallbackTile:       c.Solver.FallbackTile,
		AmbiguousTile:      c.Solver.AmbiguousTile,
		Compass:            compass,
		RetireUnresolvable: c.Solver.RetireUnresolvable,
		DebugOverlay:       c.Solver.DebugOverlay,
	}, nil
}

// LoadRules loads the configured rule file, or the embedded defaults
func (c *Config) LoadRules() (*autotile.RuleSet, error) {
	if c.Rules.Path == "" {
		return autotile.DefaultRules(), nil
	}
	return autotile.LoadRules(c.Rules.Path)
}

// RulesName returns a short label for the configured rules
func (c *Config) RulesName() string {
	if c.Rules.Path == "" {
		return "default"
	}
	return c.Rules.Path
}
