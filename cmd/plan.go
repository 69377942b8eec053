package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/moondogdev/reup-allotment-calculator/internal/cli"

	"github.com/spf13/cobra"
)

var flagPlanSave bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the weekly purchase plan for the current cycle",
	Example: "  reup plan --allotment 3.25 --start-date 2024-03-01\n" +
		"  reup plan --json --today 2024-03-09",
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&flagPlanSave, "save", false, "Save the allotment and start date used to the config file")
	rootCmd.Flags().BoolVar(&flagPlanSave, "save", false, "Save the allotment and start date used to the config file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	cfg := run.cfg
	start := cfg.Plan.StartDateOr(today())

	res := run.planner.Evaluate(cfg.Plan.Allotment, start)
	run.log.Debug().
		Str("allotment", cfg.Plan.Allotment).
		Str("start_date", start).
		Str("today", today()).
		Bool("ok", res.OK()).
		Msg("plan evaluated")

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		if !res.OK() {
			return errReported
		}
	} else {
		if !res.OK() {
			fmt.Fprint(errOut, cli.RenderError(res.Err))
			return errReported
		}
		fmt.Fprint(out, cli.RenderPlan(*res.Plan))
	}

	if flagPlanSave {
		cfg.Plan.StartDate = start
		if err := saveConfig(cfg); err != nil {
			return err
		}
		if !flagJSON {
			fmt.Fprintf(out, "  Saved to %s\n", run.cfgPath)
		}
	}
	return nil
}
