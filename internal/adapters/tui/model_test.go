package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/generator"
	"svw.info/pyramid/internal/hint"
	"svw.info/pyramid/internal/solver"
	"svw.info/pyramid/internal/usecase"
	"svw.info/pyramid/internal/validator"
)

func newTestModel(t *testing.T, autoNext bool) Model {
	t.Helper()
	s := solver.NewExhaustiveSolver()
	uc := usecase.NewService(
		generator.NewPyramidGenerator(generator.Limits{}, nil),
		s, validator.New(), hint.NewNextToggle(s), nil,
		usecase.Bounds{DefaultLevels: 4, MinLevels: 2, MaxLevels: 6}, nil,
	)
	m, err := NewModel(uc, domain.Settings{Parity: true}, autoNext)
	require.NoError(t, err)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestNewModelUsesDefaults(t *testing.T) {
	m := newTestModel(t, false)
	s := m.Session()
	assert.Equal(t, 4, s.Settings.Levels)
	assert.False(t, s.State.Solved)
	assert.Contains(t, m.View(), "Logic Pyramid")
}

func TestDigitTogglesBaseInput(t *testing.T) {
	m := newTestModel(t, false)
	before := append([]bool(nil), m.Session().State.BaseInputs()...)
	m = press(t, m, runes("2"))
	after := m.Session().State.BaseInputs()
	assert.Equal(t, !before[1], after[1])
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, 1, m.Session().State.Moves)

	m = press(t, m, runes("9"))
	assert.Equal(t, 1, m.Session().State.Moves, "digits past the base width are ignored")
}

func TestCursorAndSpace(t *testing.T) {
	m := newTestModel(t, false)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.cursor)
	before := m.Session().State.BaseInputs()[2]
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, !before, m.Session().State.BaseInputs()[2])

	for i := 0; i < 10; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	assert.Zero(t, m.cursor)
}

func TestFollowingHintsWins(t *testing.T) {
	m := newTestModel(t, false)
	for steps := 0; !m.Session().State.Solved; steps++ {
		require.Less(t, steps, 8)
		m = press(t, m, runes("?"))
		require.NoError(t, m.err)
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}
	assert.Equal(t, 1, m.Session().Wins)
	assert.Contains(t, m.View(), "Solved in")

	// toggling away and back is not a second win
	m = press(t, m, runes("1"))
	m = press(t, m, runes("1"))
	assert.Equal(t, 1, m.Session().Wins)
}

func TestAutoNextStartsFreshPuzzle(t *testing.T) {
	m := newTestModel(t, true)
	for steps := 0; m.Session().Wins == 0; steps++ {
		require.Less(t, steps, 8)
		m = press(t, m, runes("?"))
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}
	assert.False(t, m.Session().State.Solved)
	assert.Zero(t, m.Session().State.Moves)
}

func TestLevelAndParityKeys(t *testing.T) {
	m := newTestModel(t, false)
	m = press(t, m, runes("+"))
	assert.Equal(t, 5, m.Session().Settings.Levels)
	assert.Len(t, m.Session().State.BaseInputs(), 5)

	m = press(t, m, runes("+"))
	m = press(t, m, runes("+"))
	assert.Error(t, m.err)
	assert.Equal(t, 6, m.Session().Settings.Levels, "rejected settings are not kept")

	m = press(t, m, runes("x"))
	assert.False(t, m.Session().Settings.Parity)
	assert.False(t, m.Session().State.Pyramid.Operators.Parity())
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, false)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
