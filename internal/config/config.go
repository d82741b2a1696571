// Package config loads golda settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/regress"
)

// Config holds all golda configuration.
type Config struct {
	Source   string   `env:"SOURCE"`
	Schema   Schema   `envPrefix:"SCHEMA_"`
	Sampling Sampling `envPrefix:"SAMPLING_"`
	Runner   Runner   `envPrefix:"RUNNER_"`
	LogLevel string   `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool     `env:"LOG_JSON" envDefault:"false"`
}

// Schema describes the person-level input table.
type Schema struct {
	IDColumn     string   `env:"ID_COLUMN" envDefault:"id"`
	FixedColumns []string `env:"FIXED_COLUMNS" envSeparator:"," envDefault:"male,exposure"`
	ValuePrefix  string   `env:"VALUE_PREFIX" envDefault:"tol"`
	TimeBase     int      `env:"TIME_BASE" envDefault:"11"`
	TimeColumn   string   `env:"TIME_COLUMN" envDefault:"time"`
	ValueColumn  string   `env:"VALUE_COLUMN" envDefault:"tolerance"`
}

// Sampling holds posterior sampling settings.
type Sampling struct {
	Draws int    `env:"DRAWS" envDefault:"4000"`
	Seed  uint64 `env:"SEED" envDefault:"1"`
}

// Runner holds per-entity fitting settings.
type Runner struct {
	Workers int           `env:"WORKERS" envDefault:"1"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

// Prefix is prepended to every environment variable name.
const Prefix = "GOLDA_"

// Load reads configuration from GOLDA_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads GOLDA_* environment variables into target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks settings that the environment parser cannot.
func (c Config) Validate() error {
	if c.Schema.IDColumn == "" {
		return fmt.Errorf("schema id column must be set")
	}
	if c.Schema.ValuePrefix == "" {
		return fmt.Errorf("schema value prefix must be set")
	}
	if c.Sampling.Draws < 1 {
		return fmt.Errorf("sampling draws must be positive, got %d", c.Sampling.Draws)
	}
	if c.Runner.Workers < 0 {
		return fmt.Errorf("runner workers must not be negative, got %d", c.Runner.Workers)
	}
	return nil
}

// Pattern returns the value column naming scheme.
func (s Schema) Pattern() panel.ColumnPattern {
	return panel.ColumnPattern{Prefix: s.ValuePrefix, TimeBase: s.TimeBase}
}

// LongSpec returns the wide-to-long conversion described by the schema.
func (s Schema) LongSpec() panel.LongSpec {
	return panel.LongSpec{
		IDColumn:     s.IDColumn,
		FixedColumns: s.FixedColumns,
		Pattern:      s.Pattern(),
		TimeColumn:   s.TimeColumn,
		ValueColumn:  s.ValueColumn,
	}
}

// WideSpec returns the long-to-wide conversion described by the schema.
func (s Schema) WideSpec() panel.WideSpec {
	return panel.WideSpec{
		IDColumn:    s.IDColumn,
		TimeColumn:  s.TimeColumn,
		ValueColumn: s.ValueColumn,
		Pattern:     s.Pattern(),
	}
}

// CSVOptions returns loader options keyed by the schema's id column.
func (s Schema) CSVOptions() *panel.CSVOptions {
	opts := panel.DefaultCSVOptions()
	opts.IDColumn = s.IDColumn
	return opts
}

// SamplerConfig returns the regression sampler settings.
func (s Sampling) SamplerConfig() regress.SamplerConfig {
	return regress.SamplerConfig{Draws: s.Draws, Seed: s.Seed}
}
