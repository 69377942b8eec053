package cmd

import (
	"fmt"

	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/store"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := run.cfg

	// The dispensary question is skipped when the store can't be opened.
	var names []string
	if s, err := store.Open(config.DBPath()); err != nil {
		run.log.Warn().Err(err).Msg("link store unavailable")
	} else {
		links, err := s.Dispensaries()
		_ = s.Close()
		if err != nil {
			run.log.Warn().Err(err).Msg("listing dispensaries")
		}
		for _, l := range links {
			names = append(names, l.Name)
		}
	}

	vals := tui.SetupValuesFrom(cfg, today())
	if err := tui.NewSetupForm(&vals, names).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	vals.Apply(&cfg)

	if err := saveConfig(cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", run.cfgPath)
	fmt.Println("  Run `reup setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
