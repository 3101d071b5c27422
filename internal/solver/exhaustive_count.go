package solver

import (
	"context"
	"fmt"
	"time"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/logic"
	"svw.info/pyramid/internal/ports"
)

// Count reports how many base rows solve the pyramid.
func (s *ExhaustiveSolver) Count(ctx context.Context, p *domain.Pyramid) (int, ports.Stats, error) {
	start := time.Now()
	n := len(p.Base())
	if n > MaxWidth {
		return 0, ports.Stats{}, fmt.Errorf("%w: %d inputs", ErrTooWide, n)
	}
	zero := make([]bool, n)
	row := make([]bool, n)
	count := 0
	limit := uint32(1) << uint(n)
	for mask := uint32(0); mask < limit; mask++ {
		if mask%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, ports.Stats{Nodes: int(mask), Duration: time.Since(start)}, err
			}
		}
		apply(zero, mask, row)
		if logic.Evaluate(p, row) == p.Target {
			count++
		}
	}
	return count, ports.Stats{Nodes: int(limit), Duration: time.Since(start)}, nil
}
