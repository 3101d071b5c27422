package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"svw.info/pyramid/internal/domain"
)

var (
	genLevels   int
	genParity   bool
	genTarget   string
	genSeed     int64
	genJSON     bool
	genSolution bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a pyramid with a non-trivial starting row",
	Example: `  pyramid generate --levels 5
  pyramid generate --levels 4 --parity=false --target true --seed 42 --json`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVar(&genLevels, "levels", 0, "pyramid depth (0 uses the configured default)")
	f.BoolVar(&genParity, "parity", false, "include XOR and XNOR (default from game.parity)")
	f.StringVar(&genTarget, "target", "random", "true|false|random")
	f.Int64Var(&genSeed, "seed", 0, "random seed (0 derives one from the clock)")
	f.BoolVar(&genJSON, "json", false, "print JSON instead of text")
	f.BoolVar(&genSolution, "solution", false, "also print the minimum solution")
}

type generateOutput struct {
	State    *domain.GameState `json:"state"`
	Attempts int               `json:"attempts"`
	Solution *domain.Solution  `json:"solution,omitempty"`
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	s := domain.Settings{Levels: genLevels, Parity: a.cfg.Game.Parity}
	if cmd.Flags().Changed("parity") {
		s.Parity = genParity
	}
	if genTarget != "random" {
		t, err := strconv.ParseBool(genTarget)
		if err != nil {
			return fmt.Errorf("--target: %w", err)
		}
		s.Target = &t
	}

	ctx := cmd.Context()
	st, stats, err := a.uc.NewGame(ctx, genSeed, s)
	if err != nil {
		return err
	}
	out := generateOutput{State: st, Attempts: stats.Attempts}
	if genSolution {
		sol, _, err := a.uc.Solve(ctx, st)
		if err != nil {
			return err
		}
		out.Solution = &sol
	}

	w := cmd.OutOrStdout()
	if genJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printState(w, out)
	return nil
}

func bit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// printState draws the pyramid top-down with each row's operators between
// the values they combine.
func printState(w io.Writer, out generateOutput) {
	st := out.State
	fmt.Fprintf(w, "target %s, %d levels, %d attempts\n\n", bit(st.Target()), len(st.Levels()), out.Attempts)
	last := len(st.Levels()) - 1
	for i, l := range st.Levels() {
		var b strings.Builder
		b.WriteString(strings.Repeat("   ", last-i))
		for n, v := range l.Values {
			b.WriteString("[" + bit(v) + "]")
			if n < len(l.Operators) {
				fmt.Fprintf(&b, " %-4s ", l.Operators[n])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	if out.Solution != nil {
		idx := make([]string, len(out.Solution.Toggles))
		for i, t := range out.Solution.Toggles {
			idx[i] = strconv.Itoa(t + 1)
		}
		fmt.Fprintf(w, "\nsolution: toggle %s\n", strings.Join(idx, ", "))
	}
}
