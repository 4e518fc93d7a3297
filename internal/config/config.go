// Package config holds the settings of the gophergap command line tool.
//
// Settings are loaded with priority env > file > defaults, then validated.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the whole configuration of the tool.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Solver    SolverConfig    `yaml:"solver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Output    OutputConfig    `yaml:"output"`
}

// LogConfig describes how logs are written on stderr.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// SolverConfig bounds each search.
type SolverConfig struct {
	MaxExpansions int           `yaml:"max_expansions" validate:"gte=0"` // 0 means no limit
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`        // 0 means no limit
	Jobs          int           `yaml:"jobs" validate:"gte=1,lte=256"`   // How many problem files are solved concurrently
}

// TelemetryConfig describes where traces and metrics go.
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=none stdout"`
	MetricsFile   string `yaml:"metrics_file"` // Prometheus textfile, not written if empty
}

// OutputConfig describes how results are printed.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=text yaml"`
	Color  string `yaml:"color" validate:"oneof=auto always never"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info", Format: "text"},
		Solver:    SolverConfig{Jobs: 1},
		Telemetry: TelemetryConfig{TraceExporter: "none"},
		Output:    OutputConfig{Format: "text", Color: "auto"},
	}
}

// Load returns the default configuration, overridden by the YAML file at path, if path is not empty,
// then by GOPHERGAP_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("could not load config file %q: %w", path, err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv("GOPHERGAP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GOPHERGAP_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GOPHERGAP_MAX_EXPANSIONS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GOPHERGAP_MAX_EXPANSIONS: %w", err)
		}
		cfg.Solver.MaxExpansions = i
	}
	if v := os.Getenv("GOPHERGAP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GOPHERGAP_TIMEOUT: %w", err)
		}
		cfg.Solver.Timeout = d
	}
	if v := os.Getenv("GOPHERGAP_TRACE_EXPORTER"); v != "" {
		cfg.Telemetry.TraceExporter = v
	}
	return nil
}

// Validate checks every field has an allowed value.
func (c Config) Validate() error {
	return validate.Struct(c)
}
