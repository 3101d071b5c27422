package solver

import (
	"errors"
	"math/bits"
)

// MaxWidth bounds the base width the solver will search (2^MaxWidth rows).
const MaxWidth = 24

var (
	// ErrTooWide is returned for base rows wider than MaxWidth.
	ErrTooWide = errors.New("base row too wide to search")
	// ErrUnsolvable is returned when no base row reaches the target.
	ErrUnsolvable = errors.New("no base row reaches the target")
)

// ExhaustiveSolver walks every toggle mask of the base row.
type ExhaustiveSolver struct{}

func NewExhaustiveSolver() *ExhaustiveSolver { return &ExhaustiveSolver{} }

// checkEvery is how many masks are tried between context checks.
const checkEvery = 1 << 12

// apply returns base with every bit set in mask flipped.
func apply(base []bool, mask uint32, out []bool) {
	for i := range base {
		out[i] = base[i] != (mask&(1<<uint(i)) != 0)
	}
}

// toggles lists the indices set in mask in ascending order.
func toggles(mask uint32) []int {
	out := make([]int, 0, bits.OnesCount32(mask))
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		out = append(out, i)
		mask &^= 1 << uint(i)
	}
	return out
}
