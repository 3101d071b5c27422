// Package logic holds the pure boolean machinery behind pyramid puzzles:
// truth tables, the combination enumerator and row propagation.
package logic

import "svw.info/pyramid/internal/domain"

// Pair is one operand pair (x, y).
type Pair struct {
	X, Y bool
}

// Row returns the pair as a two-element input row.
func (p Pair) Row() []bool { return []bool{p.X, p.Y} }

// TruthTable partitions the four operand pairs of each operator by result.
type TruthTable map[domain.Operator]map[bool][]Pair

var allPairs = [4]Pair{{true, true}, {true, false}, {false, true}, {false, false}}

// BuildTruthTable evaluates every enabled operator on all four pairs.
func BuildTruthTable(ops domain.OperatorSet) TruthTable {
	tt := make(TruthTable, len(ops))
	for _, op := range ops {
		buckets := map[bool][]Pair{}
		for _, p := range allPairs {
			r := op.Apply(p.X, p.Y)
			buckets[r] = append(buckets[r], p)
		}
		tt[op] = buckets
	}
	return tt
}

// Pairs returns the operand pairs for which op yields result.
func (tt TruthTable) Pairs(op domain.Operator, result bool) []Pair {
	return tt[op][result]
}
