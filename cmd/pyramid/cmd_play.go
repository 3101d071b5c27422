package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"svw.info/pyramid/internal/adapters/tui"
	"svw.info/pyramid/internal/config"
	"svw.info/pyramid/internal/domain"
)

var (
	playLevels   int
	playParity   bool
	playAutoNext bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	RunE:  runPlay,
}

func init() {
	f := playCmd.Flags()
	f.IntVar(&playLevels, "levels", 0, "pyramid depth (0 uses the configured default)")
	f.BoolVar(&playParity, "parity", false, "include XOR and XNOR (default from game.parity)")
	f.BoolVar(&playAutoNext, "auto-next", false, "start the next puzzle as soon as one is solved (default from game.auto_next)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	// logs would tear the alt screen
	logLevel = "error"
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	s, autoNext := playSettings(cmd, a.cfg.Game)
	m, err := tui.NewModel(a.uc, s, autoNext)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(tui.Model); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "wins: %d\n", fm.Session().Wins)
	}
	return nil
}

// playSettings takes flags the user set and config values for the rest.
func playSettings(cmd *cobra.Command, g config.GameConfig) (domain.Settings, bool) {
	s := domain.Settings{Levels: playLevels, Parity: g.Parity}
	autoNext := g.AutoNext
	if cmd.Flags().Changed("parity") {
		s.Parity = playParity
	}
	if cmd.Flags().Changed("auto-next") {
		autoNext = playAutoNext
	}
	return s, autoNext
}
