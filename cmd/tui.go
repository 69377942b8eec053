package cmd

import (
	"fmt"

	"github.com/moondogdev/reup-allotment-calculator/internal/browser"
	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/logging"
	"github.com/moondogdev/reup-allotment-calculator/internal/store"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would corrupt the screen, so only a log file is allowed.
	log := logging.Nop()
	if run.cfg.Log.File != "" {
		log = run.log
	}

	opts := tui.Options{
		Planner:    run.planner,
		Open:       browser.Open,
		Logger:     log,
		FirstRun:   !run.configured,
		ConfigPath: run.cfgPath,
	}
	s, err := store.Open(config.DBPath())
	if err != nil {
		log.Warn().Err(err).Msg("link store unavailable")
	} else {
		defer func() { _ = s.Close() }()
		opts.Links = s
	}

	app := tui.NewApp(run.cfg, opts)
	p := tea.NewProgram(app, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if a, ok := final.(tui.App); ok {
		return saveConfigOnExit(cmd.ErrOrStderr(), a.Config())
	}
	return nil
}
