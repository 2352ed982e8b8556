// Package config loads runtime settings for the treeprop command.
//
// Priority (lowest to highest): built-in defaults, a YAML file, TREEPROP_*
// environment variables, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TREEPROP_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the command's settings.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Load.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SamplingConfig controls batch draws.
type SamplingConfig struct {
	Seed    int64 `yaml:"seed"`
	Samples int   `yaml:"samples" validate:"gte=1"`
	Workers int   `yaml:"workers" validate:"gte=0"` // 0 = GOMAXPROCS
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile, when set, receives the metrics after the command finishes.
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Sampling: SamplingConfig{
			Seed:    0,
			Samples: 1000,
			Workers: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load merges defaults, the file at path (optional; a missing file is not an
// error) and the environment, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadEnv applies TREEPROP_* overrides. Unparsable numbers are reported
// rather than skipped.
func loadEnv(cfg *Config) error {
	if v, ok := lookup("SEED"); ok {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("SEED", err)
		}
		cfg.Sampling.Seed = i
	}
	if v, ok := lookup("SAMPLES"); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return envError("SAMPLES", err)
		}
		cfg.Sampling.Samples = i
	}
	if v, ok := lookup("WORKERS"); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return envError("WORKERS", err)
		}
		cfg.Sampling.Workers = i
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup("METRICS_TEXTFILE"); ok {
		cfg.Metrics.Textfile = v
	}

	return nil
}

func lookup(name string) (string, bool) {
	v := os.Getenv(EnvPrefix + name)

	return v, v != ""
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err)
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
