package cmd

import (
	"fmt"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := run.cfg

	fmt.Printf("  Config file: %s\n", run.cfgPath)
	if run.configured {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if len(run.envKeys) > 0 {
		fmt.Printf("  Overridden by environment: %s\n", strings.Join(run.envKeys, ", "))
	}
	fmt.Printf("  Data directory: %s\n", config.DataDir())
	fmt.Println()

	fmt.Println("  [Plan]")
	fmt.Printf("    Allotment:  %s oz\n", cfg.Plan.Allotment)
	if cfg.Plan.StartDate != "" {
		fmt.Printf("    Start date: %s\n", cfg.Plan.StartDate)
	} else {
		fmt.Println("    Start date: not set (defaults to today)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Shop]")
	if cfg.Shop.DefaultDispensary != "" {
		fmt.Printf("    Default dispensary: %s\n", cfg.Shop.DefaultDispensary)
	} else {
		fmt.Println("    Default dispensary: not set")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:  %s\n", cfg.Server.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Server.Schedule)
	fmt.Printf("    Events:   %d retained\n", cfg.Server.EventsBuffer)
	if len(cfg.Server.AllowedOrigins) > 0 {
		fmt.Printf("    Origins:  %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Printf("    File:  %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  Run `reup setup` to reconfigure.")
	return nil
}
