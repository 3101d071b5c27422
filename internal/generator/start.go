package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/infrastructure/metrics"
	"svw.info/pyramid/internal/logic"
	"svw.info/pyramid/internal/ports"
)

// SampleNonTrivialStart draws up to draws random base rows and returns the
// first whose top value differs from the target. It reports false when every
// draw already solved the puzzle.
func SampleNonTrivialStart(rng *rand.Rand, p *domain.Pyramid, draws int) ([]bool, bool) {
	width := len(p.Base())
	row := make([]bool, width)
	for i := 0; i < draws; i++ {
		for j := range row {
			row[j] = rng.Intn(2) == 1
		}
		if logic.Evaluate(p, row) != p.Target {
			return row, true
		}
	}
	return nil, false
}

// NewGame generates a pyramid and pairs it with a base row that does not
// already solve it, regenerating the pyramid when sampling comes up empty.
func (g *PyramidGenerator) NewGame(ctx context.Context, seed int64, s domain.Settings) (*domain.GameState, ports.Stats, error) {
	start := time.Now()
	if s.Levels < 2 {
		return nil, ports.Stats{}, fmt.Errorf("%w: got %d", ErrInvalidLevels, s.Levels)
	}
	rng := rand.New(rand.NewSource(seed))
	var total ports.Stats
	for regen := 0; regen <= g.Limits.MaxRegenerations; regen++ {
		p, st, err := g.generate(ctx, rng, s)
		total.Attempts += st.Attempts
		total.Nodes += st.Nodes
		if err != nil {
			total.Duration = time.Since(start)
			return nil, total, err
		}
		if base, ok := SampleNonTrivialStart(rng, p, g.Limits.SampleDraws); ok {
			total.Duration = time.Since(start)
			metrics.ObserveGeneration(s.Levels, s.Parity, total.Attempts, total.Duration)
			return logic.NewState(p, base), total, nil
		}
		metrics.StartRegenerated()
		g.Logger.Debug("no non-trivial start sampled, regenerating",
			"regeneration", regen+1, "levels", s.Levels, "draws", g.Limits.SampleDraws)
	}
	metrics.GenerationFailed("start")
	total.Duration = time.Since(start)
	return nil, total, fmt.Errorf("%w: no non-trivial start after %d regenerations", ErrGenerationFailed, g.Limits.MaxRegenerations)
}
