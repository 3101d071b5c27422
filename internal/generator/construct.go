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

// Generate builds a solvable pyramid for the settings. The same seed and
// settings always yield the same pyramid.
func (g *PyramidGenerator) Generate(ctx context.Context, seed int64, s domain.Settings) (*domain.Pyramid, ports.Stats, error) {
	start := time.Now()
	if s.Levels < 2 {
		return nil, ports.Stats{}, fmt.Errorf("%w: got %d", ErrInvalidLevels, s.Levels)
	}
	rng := rand.New(rand.NewSource(seed))
	p, st, err := g.generate(ctx, rng, s)
	st.Duration = time.Since(start)
	if err == nil {
		metrics.ObserveGeneration(s.Levels, s.Parity, st.Attempts, st.Duration)
	}
	return p, st, err
}

func (g *PyramidGenerator) generate(ctx context.Context, rng *rand.Rand, s domain.Settings) (*domain.Pyramid, ports.Stats, error) {
	ops := s.Operators()
	tt := logic.BuildTruthTable(ops)

	target := rng.Intn(2) == 1
	if s.Target != nil {
		target = *s.Target
	}

	nodes := 0
	for attempt := 1; attempt <= g.Limits.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, ports.Stats{Attempts: attempt - 1, Nodes: nodes}, err
		}
		levels, n, ok := construct(rng, tt, ops, target, s.Levels)
		nodes += n
		if !ok {
			g.Logger.Debug("dead end, restarting pyramid",
				"attempt", attempt, "levels", s.Levels, "parity", s.Parity)
			continue
		}
		p := &domain.Pyramid{Target: target, Operators: ops, Levels: levels}
		if !logic.Consistent(p) {
			panic("generator: constructed pyramid is inconsistent")
		}
		return p, ports.Stats{Attempts: attempt, Nodes: nodes}, nil
	}
	metrics.GenerationFailed("construct")
	return nil, ports.Stats{Attempts: g.Limits.MaxAttempts, Nodes: nodes},
		fmt.Errorf("%w: no consistent pyramid of %d levels after %d attempts", ErrGenerationFailed, s.Levels, g.Limits.MaxAttempts)
}

// construct runs one top-down pass. It reports false as soon as a level's
// row cannot be produced by any operator tuple, abandoning the pass.
func construct(rng *rand.Rand, tt logic.TruthTable, ops domain.OperatorSet, target bool, depth int) ([]domain.Level, int, bool) {
	levels := make([]domain.Level, 1, depth)
	levels[0] = domain.Level{Operators: []domain.Operator{}, Values: []bool{target}}
	nodes := 0
	for len(levels) < depth {
		combos := logic.Enumerate(tt, levels[len(levels)-1].Values, ops)
		nodes += len(combos)
		if len(combos) == 0 {
			return nil, nodes, false
		}
		c := combos[rng.Intn(len(combos))]
		in := c.Inputs[rng.Intn(len(c.Inputs))]
		levels = append(levels, domain.Level{
			Operators: c.Operators,
			Values:    append([]bool(nil), in...),
		})
	}
	return levels, nodes, true
}
