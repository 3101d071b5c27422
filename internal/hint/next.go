package hint

import (
	"context"
	"fmt"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/ports"
)

// NextToggle suggests the first toggle of a minimum solution.
type NextToggle struct {
	Solver ports.Solver
}

func NewNextToggle(s ports.Solver) *NextToggle { return &NextToggle{Solver: s} }

// Hint returns false when the state is already solved.
func (h *NextToggle) Hint(ctx context.Context, st *domain.GameState) (domain.Hint, bool, error) {
	if st.Solved {
		return domain.Hint{}, false, nil
	}
	sol, _, err := h.Solver.Solve(ctx, st)
	if err != nil {
		return domain.Hint{}, false, err
	}
	if len(sol.Toggles) == 0 {
		return domain.Hint{}, false, nil
	}
	i := sol.Toggles[0]
	msg := fmt.Sprintf("Toggle input %d", i+1)
	if n := len(sol.Toggles); n > 1 {
		msg = fmt.Sprintf("Toggle input %d (%d toggles to go)", i+1, n)
	}
	return domain.Hint{Message: msg, Index: i, Remaining: len(sol.Toggles)}, true, nil
}
