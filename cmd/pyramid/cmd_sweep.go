package main

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/usecase"
)

var (
	sweepMin     int
	sweepMax     int
	sweepCount   int
	sweepSeed    int64
	sweepWorkers int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Generate many puzzles per depth and operator set and report statistics",
	RunE:  runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.IntVar(&sweepMin, "min-levels", 2, "smallest depth")
	f.IntVar(&sweepMax, "max-levels", 6, "largest depth")
	f.IntVar(&sweepCount, "count", 50, "puzzles per configuration")
	f.Int64Var(&sweepSeed, "seed", 1, "first seed; puzzle i uses seed+i")
	f.IntVar(&sweepWorkers, "workers", runtime.NumCPU(), "concurrent generators")
}

type sweepKey struct {
	levels int
	parity bool
}

type sweepRow struct {
	puzzles  int
	failures int
	attempts int
	moves    int
	rows     int
	elapsed  time.Duration
}

func runSweep(cmd *cobra.Command, _ []string) error {
	if sweepMin > sweepMax || sweepCount < 1 {
		return fmt.Errorf("invalid sweep range %d..%d x %d", sweepMin, sweepMax, sweepCount)
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		mu   sync.Mutex
		rows = map[sweepKey]*sweepRow{}
		keys []sweepKey
	)
	for l := sweepMin; l <= sweepMax; l++ {
		for _, p := range []bool{false, true} {
			k := sweepKey{l, p}
			keys = append(keys, k)
			rows[k] = &sweepRow{}
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(sweepWorkers, 1))
	for _, k := range keys {
		for i := 0; i < sweepCount; i++ {
			seed := sweepSeed + int64(i)
			g.Go(func() error {
				res, err := sweepOne(ctx, a.uc, k, seed)
				mu.Lock()
				defer mu.Unlock()
				r := rows[k]
				if err != nil {
					r.failures++
					a.logger.Warn("sweep puzzle failed", "levels", k.levels, "parity", k.parity, "seed", seed, "err", err)
					return ctx.Err()
				}
				r.puzzles++
				r.attempts += res.attempts
				r.moves += res.moves
				r.rows += res.rows
				r.elapsed += res.elapsed
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("levels", "parity", "puzzles", "failures", "avg attempts", "avg min moves", "avg solving rows", "avg time").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, k := range keys {
		r := rows[k]
		avg := func(n int) string {
			if r.puzzles == 0 {
				return "-"
			}
			return strconv.FormatFloat(float64(n)/float64(r.puzzles), 'f', 2, 64)
		}
		var dur string
		if r.puzzles > 0 {
			dur = (r.elapsed / time.Duration(r.puzzles)).Round(time.Microsecond).String()
		}
		t.Row(strconv.Itoa(k.levels), strconv.FormatBool(k.parity), strconv.Itoa(r.puzzles),
			strconv.Itoa(r.failures), avg(r.attempts), avg(r.moves), avg(r.rows), dur)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

type sweepResult struct {
	attempts int
	moves    int
	rows     int
	elapsed  time.Duration
}

// sweepOne builds a game, checks it, solves it and counts the base rows that
// reach its target.
func sweepOne(ctx context.Context, uc *usecase.Service, k sweepKey, seed int64) (sweepResult, error) {
	start := time.Now()
	st, stats, err := uc.NewGame(ctx, seed, domain.Settings{Levels: k.levels, Parity: k.parity})
	if err != nil {
		return sweepResult{}, err
	}
	if st.Solved {
		return sweepResult{}, fmt.Errorf("seed %d: game starts solved", seed)
	}
	// an unsolved start is consistent below the top, which misses the target
	_, conflicts, err := uc.Validate(ctx, st.Pyramid)
	if err != nil {
		return sweepResult{}, err
	}
	if len(conflicts) != 1 || conflicts[0] != (domain.Cell{}) {
		return sweepResult{}, fmt.Errorf("seed %d: unexpected conflicts %v", seed, conflicts)
	}
	sol, _, err := uc.Solve(ctx, st)
	if err != nil {
		return sweepResult{}, err
	}
	rows, _, err := uc.Count(ctx, st.Pyramid)
	if err != nil {
		return sweepResult{}, err
	}
	if rows == 0 {
		return sweepResult{}, fmt.Errorf("seed %d: no base row reaches the target", seed)
	}
	return sweepResult{attempts: stats.Attempts, moves: len(sol.Toggles), rows: rows, elapsed: time.Since(start)}, nil
}
