package domain

import (
	"fmt"
	"strings"
)

// Operator is one of the six two-input boolean gates.
type Operator int

const (
	OR Operator = iota + 1
	NOR
	AND
	NAND
	XOR
	XNOR
)

var operatorNames = map[Operator]string{
	OR:   "OR",
	NOR:  "NOR",
	AND:  "AND",
	NAND: "NAND",
	XOR:  "XOR",
	XNOR: "XNOR",
}

// Apply evaluates the gate. Panics for an unknown operator.
func (o Operator) Apply(x, y bool) bool {
	switch o {
	case OR:
		return x || y
	case NOR:
		return !(x || y)
	case AND:
		return x && y
	case NAND:
		return !(x && y)
	case XOR:
		return x != y
	case XNOR:
		return x == y
	}
	panic(fmt.Sprintf("domain: unknown operator %d", int(o)))
}

func (o Operator) Valid() bool {
	_, ok := operatorNames[o]
	return ok
}

func (o Operator) String() string {
	if n, ok := operatorNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator accepts an operator name in any case.
func ParseOperator(s string) (Operator, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for op, n := range operatorNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

func (o Operator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("unknown operator %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(b []byte) error {
	op, err := ParseOperator(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// OperatorSet is the ordered list of gates enabled for one pyramid.
type OperatorSet []Operator

// BasicOperators returns OR, NOR, AND, NAND.
func BasicOperators() OperatorSet {
	return OperatorSet{OR, NOR, AND, NAND}
}

// ParityOperators returns the basic gates plus XOR and XNOR.
func ParityOperators() OperatorSet {
	return OperatorSet{OR, NOR, AND, NAND, XOR, XNOR}
}

// OperatorsFor picks the basic or parity set.
func OperatorsFor(includeParity bool) OperatorSet {
	if includeParity {
		return ParityOperators()
	}
	return BasicOperators()
}

func (s OperatorSet) Contains(op Operator) bool {
	for _, o := range s {
		if o == op {
			return true
		}
	}
	return false
}

// Parity reports whether the set enables XOR/XNOR.
func (s OperatorSet) Parity() bool {
	return s.Contains(XOR) || s.Contains(XNOR)
}
