package logic

import (
	"errors"
	"fmt"

	"svw.info/pyramid/internal/domain"
)

// ErrIndexOutOfRange is returned when a toggle names a base input that does not exist.
var ErrIndexOutOfRange = errors.New("base input index out of range")

// Propagate folds one row: out[n] = ops[n](inputs[n], inputs[n+1]).
// len(inputs) must be len(ops)+1.
func Propagate(ops []domain.Operator, inputs []bool) []bool {
	if len(inputs) != len(ops)+1 {
		panic(fmt.Sprintf("logic: Propagate with %d operators and %d inputs", len(ops), len(inputs)))
	}
	out := make([]bool, len(ops))
	for n, op := range ops {
		out[n] = op.Apply(inputs[n], inputs[n+1])
	}
	return out
}

// Recompute returns a copy of p with base installed as the bottom row and
// every row above it recomputed from the stored operators.
func Recompute(p *domain.Pyramid, base []bool) *domain.Pyramid {
	out := p.Clone()
	last := len(out.Levels) - 1
	if len(base) != len(out.Levels[last].Values) {
		panic(fmt.Sprintf("logic: Recompute with base width %d, pyramid width %d", len(base), len(out.Levels[last].Values)))
	}
	out.Levels[last].Values = append([]bool(nil), base...)
	for i := last; i > 0; i-- {
		out.Levels[i-1].Values = Propagate(out.Levels[i].Operators, out.Levels[i].Values)
	}
	return out
}

// Evaluate returns only the top value base produces, without copying p.
func Evaluate(p *domain.Pyramid, base []bool) bool {
	row := base
	for i := len(p.Levels) - 1; i > 0; i-- {
		row = Propagate(p.Levels[i].Operators, row)
	}
	return row[0]
}

// NewState builds the game state for p with base as the current inputs.
func NewState(p *domain.Pyramid, base []bool) *domain.GameState {
	r := Recompute(p, base)
	return &domain.GameState{Pyramid: r, Solved: r.Solved()}
}

// Toggle flips base input i and recomputes every level. The input state is
// left untouched.
func Toggle(s *domain.GameState, i int) (*domain.GameState, error) {
	base := s.BaseInputs()
	if i < 0 || i >= len(base) {
		return nil, fmt.Errorf("toggle %d of %d inputs: %w", i, len(base), ErrIndexOutOfRange)
	}
	next := append([]bool(nil), base...)
	next[i] = !next[i]
	out := NewState(s.Pyramid, next)
	out.Moves = s.Moves + 1
	return out, nil
}

// Consistent reports whether every stored row of p equals the row
// propagated from the level below and the top equals the target.
func Consistent(p *domain.Pyramid) bool {
	if len(p.Levels) == 0 || len(p.Levels[0].Values) != 1 {
		return false
	}
	for i := len(p.Levels) - 1; i > 0; i-- {
		l := p.Levels[i]
		if len(l.Values) != len(l.Operators)+1 || len(l.Operators) != len(p.Levels[i-1].Values) {
			return false
		}
		got := Propagate(l.Operators, l.Values)
		for n, v := range got {
			if v != p.Levels[i-1].Values[n] {
				return false
			}
		}
	}
	return p.Result() == p.Target
}
