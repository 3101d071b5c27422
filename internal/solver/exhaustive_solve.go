package solver

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/logic"
	"svw.info/pyramid/internal/ports"
)

// Solve returns the solving base row reachable with the fewest toggles from
// the current one. Ties go to the lowest toggle mask.
func (s *ExhaustiveSolver) Solve(ctx context.Context, st *domain.GameState) (domain.Solution, ports.Stats, error) {
	start := time.Now()
	base := st.BaseInputs()
	n := len(base)
	if n > MaxWidth {
		return domain.Solution{}, ports.Stats{}, fmt.Errorf("%w: %d inputs", ErrTooWide, n)
	}
	if logic.Evaluate(st.Pyramid, base) == st.Target() {
		return domain.Solution{Base: append([]bool(nil), base...), Toggles: []int{}}, ports.Stats{Duration: time.Since(start)}, nil
	}

	row := make([]bool, n)
	best, bestCost := uint32(0), n+1
	nodes := 0
	limit := uint32(1) << uint(n)
	for mask := uint32(1); mask < limit; mask++ {
		if mask%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Solution{}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, err
			}
		}
		cost := bits.OnesCount32(mask)
		if cost >= bestCost {
			continue
		}
		nodes++
		apply(base, mask, row)
		if logic.Evaluate(st.Pyramid, row) == st.Target() {
			best, bestCost = mask, cost
			if cost == 1 {
				break
			}
		}
	}
	stats := ports.Stats{Nodes: nodes, Duration: time.Since(start)}
	if bestCost > n {
		return domain.Solution{}, stats, ErrUnsolvable
	}
	apply(base, best, row)
	return domain.Solution{Base: row, Toggles: toggles(best)}, stats, nil
}
