package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/logic"
	"svw.info/pyramid/internal/ports"
)

var (
	errNotConfigured = errors.New("usecase dependency not configured")
	// ErrLevelsOutOfRange is returned when a request asks for a depth the
	// service does not offer.
	ErrLevelsOutOfRange = errors.New("levels out of range")
)

var tracer = otel.Tracer("svw.info/pyramid/internal/usecase")

// Bounds limits the depths players may request.
type Bounds struct {
	DefaultLevels int
	MinLevels     int
	MaxLevels     int
}

type Service struct {
	Generator ports.Generator
	Solver    ports.Solver
	Validator ports.Validator
	Hinter    ports.Hinter
	Sessions  ports.SessionStore
	Bounds    Bounds
	Logger    *slog.Logger

	now   func() time.Time
	newID func() string
	locks sync.Map // session ID -> *sync.Mutex
}

func NewService(g ports.Generator, s ports.Solver, v ports.Validator, h ports.Hinter, st ports.SessionStore, b Bounds, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		Generator: g, Solver: s, Validator: v, Hinter: h, Sessions: st,
		Bounds: b, Logger: logger,
		now:   time.Now,
		newID: newSessionID,
	}
}

// Settings fills in the default depth and checks the bounds.
func (u *Service) Settings(s domain.Settings) (domain.Settings, error) {
	if s.Levels == 0 {
		s.Levels = u.Bounds.DefaultLevels
	}
	if (u.Bounds.MinLevels > 0 && s.Levels < u.Bounds.MinLevels) || (u.Bounds.MaxLevels > 0 && s.Levels > u.Bounds.MaxLevels) {
		return s, fmt.Errorf("%w: %d not in [%d, %d]", ErrLevelsOutOfRange, s.Levels, u.Bounds.MinLevels, u.Bounds.MaxLevels)
	}
	return s, nil
}

func (u *Service) seed(seed int64) int64 {
	if seed == 0 {
		return u.now().UnixNano()
	}
	return seed
}

// NewPyramid generates a solvable pyramid. A zero seed is time-derived.
func (u *Service) NewPyramid(ctx context.Context, seed int64, s domain.Settings) (*domain.Pyramid, ports.Stats, error) {
	if u.Generator == nil {
		return nil, ports.Stats{}, errNotConfigured
	}
	s, err := u.Settings(s)
	if err != nil {
		return nil, ports.Stats{}, err
	}
	ctx, span := tracer.Start(ctx, "usecase.NewPyramid", trace.WithAttributes(settingsAttrs(s)...))
	defer span.End()
	p, st, err := u.Generator.Generate(ctx, u.seed(seed), s)
	recordResult(span, st, err)
	return p, st, err
}

// NewGame generates a pyramid with a starting row that does not solve it.
func (u *Service) NewGame(ctx context.Context, seed int64, s domain.Settings) (*domain.GameState, ports.Stats, error) {
	if u.Generator == nil {
		return nil, ports.Stats{}, errNotConfigured
	}
	s, err := u.Settings(s)
	if err != nil {
		return nil, ports.Stats{}, err
	}
	ctx, span := tracer.Start(ctx, "usecase.NewGame", trace.WithAttributes(settingsAttrs(s)...))
	defer span.End()
	st, stats, err := u.Generator.NewGame(ctx, u.seed(seed), s)
	recordResult(span, stats, err)
	return st, stats, err
}

// Toggle flips one base input and recomputes the pyramid.
func (u *Service) Toggle(st *domain.GameState, index int) (*domain.GameState, error) {
	return logic.Toggle(st, index)
}

func (u *Service) Validate(ctx context.Context, p *domain.Pyramid) (bool, []domain.Cell, error) {
	if u.Validator == nil {
		return false, nil, errNotConfigured
	}
	return u.Validator.Validate(ctx, p)
}

func (u *Service) Solve(ctx context.Context, st *domain.GameState) (domain.Solution, ports.Stats, error) {
	if u.Solver == nil {
		return domain.Solution{}, ports.Stats{}, errNotConfigured
	}
	return u.Solver.Solve(ctx, st)
}

// Count reports how many base rows solve p.
func (u *Service) Count(ctx context.Context, p *domain.Pyramid) (int, ports.Stats, error) {
	if u.Solver == nil {
		return 0, ports.Stats{}, errNotConfigured
	}
	return u.Solver.Count(ctx, p)
}

func (u *Service) Hint(ctx context.Context, st *domain.GameState) (domain.Hint, bool, error) {
	if u.Hinter == nil {
		return domain.Hint{}, false, errNotConfigured
	}
	return u.Hinter.Hint(ctx, st)
}

func settingsAttrs(s domain.Settings) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("pyramid.levels", s.Levels),
		attribute.Bool("pyramid.parity", s.Parity),
	}
}

func recordResult(span trace.Span, st ports.Stats, err error) {
	span.SetAttributes(
		attribute.Int("pyramid.attempts", st.Attempts),
		attribute.Int("pyramid.nodes", st.Nodes),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
