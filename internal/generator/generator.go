package generator

import (
	"errors"
	"io"
	"log/slog"
)

var (
	// ErrInvalidLevels is returned for a depth below two.
	ErrInvalidLevels = errors.New("pyramid needs at least 2 levels")
	// ErrGenerationFailed is returned once an attempt budget is exhausted.
	ErrGenerationFailed = errors.New("pyramid generation failed")
)

// Limits caps the restart and resample loops.
type Limits struct {
	MaxAttempts      int // construction restarts per pyramid
	MaxRegenerations int // pyramids discarded while looking for a non-trivial start
	SampleDraws      int // random base rows tried per pyramid
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxAttempts: 1000, MaxRegenerations: 100, SampleDraws: 50}
}

// PyramidGenerator builds pyramids top-down from a fixed target, restarting
// from the top whenever a level has no consistent continuation.
type PyramidGenerator struct {
	Limits Limits
	Logger *slog.Logger
}

// NewPyramidGenerator wires a generator. The zero Limits selects
// DefaultLimits; otherwise non-positive attempt and draw counts fall back to
// their defaults and MaxRegenerations is taken as given, so zero disables
// regeneration.
func NewPyramidGenerator(l Limits, logger *slog.Logger) *PyramidGenerator {
	d := DefaultLimits()
	if l == (Limits{}) {
		l = d
	}
	if l.MaxAttempts <= 0 {
		l.MaxAttempts = d.MaxAttempts
	}
	if l.SampleDraws <= 0 {
		l.SampleDraws = d.SampleDraws
	}
	l.MaxRegenerations = max(l.MaxRegenerations, 0)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PyramidGenerator{Limits: l, Logger: logger}
}
