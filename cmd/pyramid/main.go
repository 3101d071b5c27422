package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"svw.info/pyramid/internal/config"
	"svw.info/pyramid/internal/generator"
	"svw.info/pyramid/internal/hint"
	"svw.info/pyramid/internal/infrastructure/storage"
	"svw.info/pyramid/internal/ports"
	"svw.info/pyramid/internal/solver"
	"svw.info/pyramid/internal/usecase"
	"svw.info/pyramid/internal/validator"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "pyramid",
	Short:         "Generate and play logic pyramid puzzles",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text|json (overrides config)")
	rootCmd.AddCommand(serveCmd, generateCmd, playCmd, sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app is the wired service graph shared by the commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	uc     *usecase.Service
	store  *storage.Sessions
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, cfg.Validate()
}

func newLogger(c config.LogConfig) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(c.Level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(c.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newApp wires generator → solver/validator/hinter → use cases. The session
// store is only opened when withSessions is set; callers must close().
func newApp(withSessions bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log)

	g := generator.NewPyramidGenerator(generator.Limits{
		MaxAttempts:      cfg.Generator.MaxAttempts,
		MaxRegenerations: cfg.Generator.MaxRegenerations,
		SampleDraws:      cfg.Generator.SampleDraws,
	}, logger)
	s := solver.NewExhaustiveSolver()

	a := &app{cfg: cfg, logger: logger}
	var store ports.SessionStore
	if withSessions {
		a.store, err = storage.OpenSessions(storage.Config{TTL: cfg.Sessions.TTL, Logger: logger})
		if err != nil {
			return nil, err
		}
		store = a.store
	}
	a.uc = usecase.NewService(g, s, validator.New(), hint.NewNextToggle(s), store, usecase.Bounds{
		DefaultLevels: cfg.Game.DefaultLevels,
		MinLevels:     cfg.Game.MinLevels,
		MaxLevels:     cfg.Game.MaxLevels,
	}, logger)
	return a, nil
}

func (a *app) limiter() *rate.Limiter {
	if a.cfg.RateLimit.PerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(a.cfg.RateLimit.PerSecond), max(a.cfg.RateLimit.Burst, 1))
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing session store", "err", err)
		}
	}
}
