package logic

import "svw.info/pyramid/internal/domain"

var bools = [2]bool{true, false}

// Combination is one operator tuple with every input row that makes it
// produce the requested outputs.
type Combination struct {
	Operators []domain.Operator
	Inputs    [][]bool
}

// Enumerate returns every (operator tuple, input row) pair that reproduces
// target, grouped by operator tuple in the order the tuples are visited.
// An empty result is normal: no level can produce target with these gates.
//
// Every one of the |ops|^m operator tuples is visited for m = len(target),
// so callers must keep m small.
func Enumerate(tt TruthTable, target []bool, ops domain.OperatorSet) []Combination {
	m := len(target)
	if m == 0 {
		panic("logic: Enumerate with empty target")
	}
	if m == 1 {
		return enumerateSingle(tt, target[0], ops)
	}
	if len(ops) == 0 {
		return nil
	}

	var out []Combination
	tuple := make([]domain.Operator, m)
	idx := make([]int, m) // odometer over ops
	row := make([]bool, m+1)
	var matched [][]bool

	// extend fixes row[n+1] given row[n]; only rows consistent with
	// target[:n] are ever extended, so the 2^(m+1) candidates are pruned.
	var extend func(n int)
	extend = func(n int) {
		if n == m {
			matched = append(matched, append([]bool(nil), row...))
			return
		}
		for _, v := range bools {
			if tuple[n].Apply(row[n], v) == target[n] {
				row[n+1] = v
				extend(n + 1)
			}
		}
	}

	for {
		for i, k := range idx {
			tuple[i] = ops[k]
		}
		matched = nil
		for _, v := range bools {
			row[0] = v
			extend(0)
		}
		if len(matched) > 0 {
			out = append(out, Combination{
				Operators: append([]domain.Operator(nil), tuple...),
				Inputs:    matched,
			})
		}
		if !advance(idx, len(ops)) {
			break
		}
	}
	return out
}

func enumerateSingle(tt TruthTable, want bool, ops domain.OperatorSet) []Combination {
	var out []Combination
	for _, op := range ops {
		pairs := tt.Pairs(op, want)
		if len(pairs) == 0 {
			continue
		}
		inputs := make([][]bool, len(pairs))
		for i, p := range pairs {
			inputs[i] = p.Row()
		}
		out = append(out, Combination{Operators: []domain.Operator{op}, Inputs: inputs})
	}
	return out
}

// advance steps the odometer; false once every tuple was visited.
func advance(idx []int, base int) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < base {
			return true
		}
		idx[i] = 0
	}
	return false
}
