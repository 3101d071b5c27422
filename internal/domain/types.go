package domain

import "time"

// Level is one pyramid row: k operators folding k+1 values into the row above.
type Level struct {
	Operators []Operator `json:"operators"`
	Values    []bool     `json:"values"`
}

// Pyramid holds levels from the target (index 0) down to the base inputs.
type Pyramid struct {
	Target    bool        `json:"target"`
	Operators OperatorSet `json:"operatorSet,omitempty"`
	Levels    []Level     `json:"levels"`
}

// Depth is the number of levels including the target row.
func (p *Pyramid) Depth() int { return len(p.Levels) }

// Base returns the bottom row. Callers must not mutate it.
func (p *Pyramid) Base() []bool {
	if len(p.Levels) == 0 {
		return nil
	}
	return p.Levels[len(p.Levels)-1].Values
}

// Result is the current value of the top row.
func (p *Pyramid) Result() bool {
	return p.Levels[0].Values[0]
}

// Solved reports whether the top row equals the target.
func (p *Pyramid) Solved() bool {
	return len(p.Levels) > 0 && len(p.Levels[0].Values) == 1 && p.Result() == p.Target
}

// Clone deep-copies the pyramid.
func (p *Pyramid) Clone() *Pyramid {
	out := &Pyramid{
		Target:    p.Target,
		Operators: append(OperatorSet(nil), p.Operators...),
		Levels:    make([]Level, len(p.Levels)),
	}
	for i, l := range p.Levels {
		out.Levels[i] = Level{
			Operators: append([]Operator{}, l.Operators...),
			Values:    append([]bool{}, l.Values...),
		}
	}
	return out
}

// GameState is a pyramid recomputed for the player's current base row.
type GameState struct {
	Pyramid *Pyramid `json:"pyramid"`
	Solved  bool     `json:"solved"`
	Moves   int      `json:"moves"`
}

func (s *GameState) Target() bool       { return s.Pyramid.Target }
func (s *GameState) BaseInputs() []bool { return s.Pyramid.Base() }
func (s *GameState) Levels() []Level    { return s.Pyramid.Levels }

// Settings selects the shape of the next puzzle.
type Settings struct {
	Levels int   `json:"levels" yaml:"levels"`
	Parity bool  `json:"parity" yaml:"parity"`
	Target *bool `json:"target,omitempty" yaml:"target,omitempty"`
}

// Operators returns the gate set these settings enable.
func (s Settings) Operators() OperatorSet { return OperatorsFor(s.Parity) }

// Session is a player's running game with its win tally.
type Session struct {
	ID        string     `json:"id"`
	Settings  Settings   `json:"settings"`
	AutoNext  bool       `json:"autoNext,omitempty"`
	Seed      int64      `json:"seed,omitempty"`
	State     *GameState `json:"state"`
	Wins      int        `json:"wins"`
	StartedAt time.Time  `json:"startedAt"`
	SolvedAt  *time.Time `json:"solvedAt,omitempty"`
}

// Elapsed is the play time of the current puzzle.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.SolvedAt != nil {
		return s.SolvedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// Cell identifies one value in the pyramid.
type Cell struct {
	Level int `json:"level"`
	Index int `json:"index"`
}

// Solution is a solving base row reachable with the fewest toggles.
type Solution struct {
	Base    []bool `json:"base"`
	Toggles []int  `json:"toggles"`
}

// Hint points at the next base input to toggle.
type Hint struct {
	Message   string `json:"message,omitempty"`
	Index     int    `json:"index"`
	Remaining int    `json:"remaining"`
}
