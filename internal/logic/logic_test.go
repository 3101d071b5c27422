package logic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/pyramid/internal/domain"
)

func TestBuildTruthTableBuckets(t *testing.T) {
	tt := BuildTruthTable(domain.ParityOperators())
	require.Len(t, tt, 6)
	for op, buckets := range tt {
		total := len(buckets[true]) + len(buckets[false])
		assert.Equal(t, 4, total, op.String())
		for r, pairs := range buckets {
			for _, p := range pairs {
				assert.Equal(t, r, op.Apply(p.X, p.Y))
			}
		}
	}
	assert.Equal(t, []Pair{{true, true}}, tt.Pairs(domain.AND, true))
	assert.Equal(t, []Pair{{true, false}, {false, true}, {false, false}}, tt.Pairs(domain.NAND, true))
}

func TestBuildTruthTableBasicOmitsParity(t *testing.T) {
	tt := BuildTruthTable(domain.BasicOperators())
	assert.Len(t, tt, 4)
	assert.Nil(t, tt.Pairs(domain.XOR, true))
}

func TestEnumerateSingle(t *testing.T) {
	ops := domain.ParityOperators()
	tt := BuildTruthTable(ops)
	for _, target := range []bool{true, false} {
		combos := Enumerate(tt, []bool{target}, ops)
		require.Len(t, combos, len(ops))
		for _, c := range combos {
			require.Len(t, c.Operators, 1)
			op := c.Operators[0]
			var want [][]bool
			for _, x := range []bool{true, false} {
				for _, y := range []bool{true, false} {
					if op.Apply(x, y) == target {
						want = append(want, []bool{x, y})
					}
				}
			}
			assert.Equal(t, want, c.Inputs, "%s -> %v", op, target)
		}
	}

	combos := Enumerate(tt, []bool{true}, domain.OperatorSet{domain.AND})
	require.Len(t, combos, 1)
	assert.Equal(t, [][]bool{{true, true}}, combos[0].Inputs)
}

func TestEnumerateTwoOutputs(t *testing.T) {
	ops := domain.OperatorSet{domain.AND, domain.OR}
	tt := BuildTruthTable(ops)
	target := []bool{true, false}
	combos := Enumerate(tt, target, ops)
	require.NotEmpty(t, combos)

	seen := map[[2]domain.Operator]bool{}
	for _, c := range combos {
		require.Len(t, c.Operators, 2)
		key := [2]domain.Operator{c.Operators[0], c.Operators[1]}
		assert.False(t, seen[key], "operator tuple %v listed twice", key)
		seen[key] = true
		for _, in := range c.Inputs {
			require.Len(t, in, 3)
			assert.Equal(t, target, Propagate(c.Operators, in))
		}
	}

	assert.True(t, containsCombo(combos, []domain.Operator{domain.AND, domain.AND}, []bool{true, true, false}))
	assert.True(t, containsCombo(combos, []domain.Operator{domain.OR, domain.AND}, []bool{false, true, false}))
}

func TestEnumerateIsExhaustive(t *testing.T) {
	ops := domain.ParityOperators()
	tt := BuildTruthTable(ops)
	target := []bool{false, true, true}
	combos := Enumerate(tt, target, ops)

	got := 0
	for _, c := range combos {
		got += len(c.Inputs)
	}
	want := 0
	for _, a := range ops {
		for _, b := range ops {
			for _, c := range ops {
				for mask := 0; mask < 16; mask++ {
					in := []bool{mask&8 != 0, mask&4 != 0, mask&2 != 0, mask&1 != 0}
					if a.Apply(in[0], in[1]) == target[0] && b.Apply(in[1], in[2]) == target[1] && c.Apply(in[2], in[3]) == target[2] {
						want++
					}
				}
			}
		}
	}
	assert.Equal(t, want, got)
}

func TestEnumerateInfeasible(t *testing.T) {
	ops := domain.OperatorSet{domain.AND}
	combos := Enumerate(BuildTruthTable(ops), []bool{true, false, true}, ops)
	assert.Empty(t, combos)
}

func TestEnumerateEmptyTargetPanics(t *testing.T) {
	ops := domain.BasicOperators()
	assert.Panics(t, func() { Enumerate(BuildTruthTable(ops), nil, ops) })
}

func TestPropagateLength(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ops := domain.ParityOperators()
	for n := 0; n < 8; n++ {
		row := make([]domain.Operator, n)
		in := make([]bool, n+1)
		for i := range row {
			row[i] = ops[rng.Intn(len(ops))]
		}
		for i := range in {
			in[i] = rng.Intn(2) == 1
		}
		assert.Len(t, Propagate(row, in), n)
	}
}

func TestPropagateMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { Propagate([]domain.Operator{domain.OR}, []bool{true}) })
}

func samplePyramid() *domain.Pyramid {
	// base [T,F,T] -> [OR, AND] -> [T,F] -> [XOR] -> [T]
	return &domain.Pyramid{
		Target:    true,
		Operators: domain.ParityOperators(),
		Levels: []domain.Level{
			{Values: []bool{true}},
			{Operators: []domain.Operator{domain.XOR}, Values: []bool{true, false}},
			{Operators: []domain.Operator{domain.OR, domain.AND}, Values: []bool{true, false, true}},
		},
	}
}

func TestRecomputeAndConsistent(t *testing.T) {
	p := samplePyramid()
	require.True(t, Consistent(p))

	r := Recompute(p, []bool{false, false, false})
	assert.Equal(t, []bool{false, false}, r.Levels[1].Values)
	assert.Equal(t, []bool{false}, r.Levels[0].Values)
	assert.False(t, r.Solved())
	assert.True(t, p.Solved(), "Recompute must not mutate its input")
	assert.False(t, Evaluate(p, []bool{false, false, false}))

	r.Levels[1].Values[0] = true
	assert.False(t, Consistent(r))
}

func TestToggleInvolution(t *testing.T) {
	s := NewState(samplePyramid(), []bool{true, false, true})
	require.True(t, s.Solved)

	for i := range s.BaseInputs() {
		once, err := Toggle(s, i)
		require.NoError(t, err)
		twice, err := Toggle(once, i)
		require.NoError(t, err)
		assert.Equal(t, s.Pyramid.Levels, twice.Pyramid.Levels)
		assert.Equal(t, s.Solved, twice.Solved)
		assert.Equal(t, 2, twice.Moves)
	}
}

func TestToggleOutOfRange(t *testing.T) {
	s := NewState(samplePyramid(), []bool{true, false, true})
	_, err := Toggle(s, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Toggle(s, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func containsCombo(combos []Combination, ops []domain.Operator, in []bool) bool {
	for _, c := range combos {
		if len(c.Operators) != len(ops) {
			continue
		}
		same := true
		for i := range ops {
			if c.Operators[i] != ops[i] {
				same = false
			}
		}
		if !same {
			continue
		}
		for _, row := range c.Inputs {
			match := true
			for i := range in {
				if row[i] != in[i] {
					match = false
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}
