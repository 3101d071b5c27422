package ports

import (
	"context"
	"time"

	"svw.info/pyramid/internal/domain"
)

// Stats captures performance characteristics of an operation.
type Stats struct {
	Attempts int
	Nodes    int
	Duration time.Duration
}

// Generator builds solvable pyramids and non-trivial starting states.
type Generator interface {
	Generate(ctx context.Context, seed int64, s domain.Settings) (*domain.Pyramid, Stats, error)
	NewGame(ctx context.Context, seed int64, s domain.Settings) (*domain.GameState, Stats, error)
}

// Solver finds the cheapest way to solve a game state.
type Solver interface {
	Solve(ctx context.Context, s *domain.GameState) (domain.Solution, Stats, error)
	Count(ctx context.Context, p *domain.Pyramid) (int, Stats, error)
}

// Validator checks a pyramid's shape and bottom-up consistency.
type Validator interface {
	Validate(ctx context.Context, p *domain.Pyramid) (ok bool, conflicts []domain.Cell, err error)
}

// Hinter suggests the next base input to toggle.
type Hinter interface {
	Hint(ctx context.Context, s *domain.GameState) (domain.Hint, bool, error)
}

// SessionStore keeps live player sessions for the lifetime of the process.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Load(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
