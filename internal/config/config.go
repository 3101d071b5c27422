// Package config loads service settings from YAML with PYRAMID_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Generator GeneratorConfig `yaml:"generator"`
	Game      GameConfig      `yaml:"game"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// GeneratorConfig caps the restart and resample loops.
type GeneratorConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	MaxRegenerations int `yaml:"max_regenerations"`
	SampleDraws      int `yaml:"sample_draws"`
}

// GameConfig bounds what players may ask for.
type GameConfig struct {
	DefaultLevels int  `yaml:"default_levels"`
	MinLevels     int  `yaml:"min_levels"`
	MaxLevels     int  `yaml:"max_levels"`
	Parity        bool `yaml:"parity"`
	AutoNext      bool `yaml:"auto_next"`
}

type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"` // zero disables limiting
	Burst     int     `yaml:"burst"`
}

// TracingConfig picks the span exporter for serve.
type TracingConfig struct {
	Exporter string `yaml:"exporter"` // none|stdout|otlp
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Generator: GeneratorConfig{
			MaxAttempts:      1000,
			MaxRegenerations: 100,
			SampleDraws:      50,
		},
		Game: GameConfig{
			DefaultLevels: 5,
			MinLevels:     2,
			MaxLevels:     6,
			Parity:        false,
		},
		Sessions:  SessionsConfig{TTL: time.Hour},
		RateLimit: RateLimitConfig{PerSecond: 20, Burst: 40},
		Tracing:   TracingConfig{Exporter: "none"},
	}
}

// Load reads the config like Read and validates the result.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Read loads path over the defaults (an empty path skips the file) and
// applies environment overrides without validating, so callers can layer
// flag overrides before calling Validate.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Generator.MaxAttempts < 1 {
		errs = append(errs, errors.New("generator.max_attempts must be >= 1"))
	}
	if c.Generator.MaxRegenerations < 0 {
		errs = append(errs, errors.New("generator.max_regenerations must be >= 0"))
	}
	if c.Generator.SampleDraws < 1 {
		errs = append(errs, errors.New("generator.sample_draws must be >= 1"))
	}
	if c.Game.MinLevels < 2 {
		errs = append(errs, errors.New("game.min_levels must be >= 2"))
	}
	if c.Game.MaxLevels < c.Game.MinLevels {
		errs = append(errs, errors.New("game.max_levels must be >= game.min_levels"))
	}
	if c.Game.DefaultLevels < c.Game.MinLevels || c.Game.DefaultLevels > c.Game.MaxLevels {
		errs = append(errs, errors.New("game.default_levels must lie within [min_levels, max_levels]"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q unknown", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q unknown", c.Log.Format))
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must be >= 0"))
	}
	switch c.Tracing.Exporter {
	case "", "none", "stdout":
	case "otlp":
		if c.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint is required for the otlp exporter"))
		}
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter %q unknown", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	boolean := func(key string, dst *bool) error {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}

	str("PYRAMID_ADDR", &c.Server.Addr)
	str("PYRAMID_LOG_LEVEL", &c.Log.Level)
	str("PYRAMID_LOG_FORMAT", &c.Log.Format)
	str("PYRAMID_TRACE_EXPORTER", &c.Tracing.Exporter)
	str("PYRAMID_OTLP_ENDPOINT", &c.Tracing.Endpoint)
	return errors.Join(
		integer("PYRAMID_MAX_ATTEMPTS", &c.Generator.MaxAttempts),
		integer("PYRAMID_MAX_REGENERATIONS", &c.Generator.MaxRegenerations),
		integer("PYRAMID_DEFAULT_LEVELS", &c.Game.DefaultLevels),
		integer("PYRAMID_MAX_LEVELS", &c.Game.MaxLevels),
		boolean("PYRAMID_PARITY", &c.Game.Parity),
		duration("PYRAMID_SESSION_TTL", &c.Sessions.TTL),
	)
}
