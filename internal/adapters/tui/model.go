// Package tui is the terminal front end: it owns the player's session
// (wins, timer, auto-next) and calls into the core on every key press.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/usecase"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	trueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	falseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	opStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	wonStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Model is the bubbletea model for one play session.
type Model struct {
	uc      *usecase.Service
	session domain.Session
	cursor  int
	message string
	err     error
	now     func() time.Time
}

// NewModel starts the first puzzle for s.
func NewModel(uc *usecase.Service, s domain.Settings, autoNext bool) (Model, error) {
	m := Model{uc: uc, now: time.Now}
	m.session.Settings = s
	m.session.AutoNext = autoNext
	if err := m.newPuzzle(s); err != nil {
		return m, err
	}
	return m, nil
}

// Session exposes the model's session for callers after the program exits.
func (m Model) Session() domain.Session { return m.session }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil
	width := len(m.session.State.BaseInputs())
	switch k := key.String(); k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < width-1 {
			m.cursor++
		}
	case " ", "enter":
		m.toggle(m.cursor)
	case "n":
		m.err = m.newPuzzle(m.session.Settings)
	case "?":
		m.hint()
	case "+", "=":
		s := m.session.Settings
		s.Levels++
		m.err = m.newPuzzle(s)
	case "-":
		s := m.session.Settings
		s.Levels--
		m.err = m.newPuzzle(s)
	case "x":
		s := m.session.Settings
		s.Parity = !s.Parity
		m.err = m.newPuzzle(s)
	case "a":
		m.session.AutoNext = !m.session.AutoNext
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if i := int(k[0] - '1'); i < width {
				m.cursor = i
				m.toggle(i)
			}
		}
	}
	return m, nil
}

func (m *Model) toggle(i int) {
	next, err := m.uc.Toggle(m.session.State, i)
	if err != nil {
		m.err = err
		return
	}
	m.session.State = next
	m.message = ""
	if !next.Solved || m.session.SolvedAt != nil {
		return
	}
	now := m.now()
	m.session.SolvedAt = &now
	m.session.Wins++
	m.message = fmt.Sprintf("Solved in %d moves, %.2fs", next.Moves, m.session.Elapsed(now).Seconds())
	if m.session.AutoNext {
		msg := m.message
		m.err = m.newPuzzle(m.session.Settings)
		m.message = msg
	}
}

func (m *Model) hint() {
	h, ok, err := m.uc.Hint(context.Background(), m.session.State)
	switch {
	case err != nil:
		m.err = err
	case !ok:
		m.message = "Already solved"
	default:
		m.cursor = h.Index
		m.message = h.Message
	}
}

// newPuzzle replaces the puzzle; settings are only kept when it succeeds.
func (m *Model) newPuzzle(s domain.Settings) error {
	s, err := m.uc.Settings(s)
	if err != nil {
		return err
	}
	st, _, err := m.uc.NewGame(context.Background(), 0, s)
	if err != nil {
		return err
	}
	m.session.Settings = s
	m.session.State = st
	m.session.StartedAt = m.now()
	m.session.SolvedAt = nil
	m.message = ""
	if w := len(st.BaseInputs()); m.cursor >= w {
		m.cursor = w - 1
	}
	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	st := m.session.State
	b.WriteString(titleStyle.Render("Logic Pyramid"))
	b.WriteString("\n\n")

	target := renderValue(st.Target())
	b.WriteString(fmt.Sprintf("Target %s   Wins %d   Moves %d\n\n", target, m.session.Wins, st.Moves))

	levels := st.Levels()
	last := len(levels) - 1
	for i, l := range levels {
		b.WriteString(strings.Repeat("   ", last-i))
		for n, v := range l.Values {
			cell := renderValue(v)
			if i == last && n == m.cursor {
				cell = cursorStyle.Render(cell)
			}
			b.WriteString(cell)
			if n < len(l.Operators) {
				b.WriteString(opStyle.Render(fmt.Sprintf(" %-4s ", l.Operators[n])))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case st.Solved:
		b.WriteString(wonStyle.Render(m.message))
	case m.message != "":
		b.WriteString(statusStyle.Render(m.message))
	default:
		elapsed := m.session.Elapsed(m.now()).Round(time.Second)
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d levels, parity %v, auto-next %v, %s",
			m.session.Settings.Levels, m.session.Settings.Parity, m.session.AutoNext, elapsed)))
	}
	b.WriteString("\n\n")
	b.WriteString(helpLine())
	return b.String()
}

func renderValue(v bool) string {
	if v {
		return trueStyle.Render("[1]")
	}
	return falseStyle.Render("[0]")
}

func helpLine() string {
	keys := []struct{ k, d string }{
		{"1-9/space", "toggle"}, {"←/→", "move"}, {"?", "hint"}, {"n", "new"},
		{"+/-", "levels"}, {"x", "xor"}, {"a", "auto-next"}, {"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = helpKeyStyle.Render(k.k) + " " + statusStyle.Render(k.d)
	}
	return strings.Join(parts, "  ")
}
