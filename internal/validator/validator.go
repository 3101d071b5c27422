package validator

import (
	"context"
	"errors"
	"fmt"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/logic"
)

// ErrMalformed is returned when a pyramid's rows have the wrong shape.
var ErrMalformed = errors.New("malformed pyramid")

type ConsistencyValidator struct{}

func New() *ConsistencyValidator { return &ConsistencyValidator{} }

// Validate checks that every stored row equals the row propagated from the
// level below and that the top equals the target. Mismatching cells are
// returned as conflicts; a bad shape is an error.
func (v *ConsistencyValidator) Validate(ctx context.Context, p *domain.Pyramid) (bool, []domain.Cell, error) {
	if err := checkShape(p); err != nil {
		return false, nil, err
	}
	conf := make([]domain.Cell, 0, 4)
	for i := len(p.Levels) - 1; i > 0; i-- {
		l := p.Levels[i]
		got := logic.Propagate(l.Operators, l.Values)
		for n, val := range got {
			if p.Levels[i-1].Values[n] != val {
				conf = append(conf, domain.Cell{Level: i - 1, Index: n})
			}
		}
	}
	if p.Result() != p.Target {
		conf = append(conf, domain.Cell{Level: 0, Index: 0})
	}
	return len(conf) == 0, conf, nil
}

func checkShape(p *domain.Pyramid) error {
	if p == nil || len(p.Levels) < 2 {
		return fmt.Errorf("%w: need at least 2 levels", ErrMalformed)
	}
	for i, l := range p.Levels {
		if len(l.Values) != i+1 {
			return fmt.Errorf("%w: level %d has %d values, want %d", ErrMalformed, i, len(l.Values), i+1)
		}
		if len(l.Operators) != i {
			return fmt.Errorf("%w: level %d has %d operators, want %d", ErrMalformed, i, len(l.Operators), i)
		}
		for _, op := range l.Operators {
			if !op.Valid() {
				return fmt.Errorf("%w: level %d has unknown operator %d", ErrMalformed, i, int(op))
			}
			if len(p.Operators) > 0 && !p.Operators.Contains(op) {
				return fmt.Errorf("%w: level %d uses %s outside the operator set", ErrMalformed, i, op)
			}
		}
	}
	return nil
}
