// Package cmd implements the reup CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/logging"
	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagAllotment string
	flagStartDate string
	flagToday     string
	flagTheme     string
	flagJSON      bool
	flagLogLevel  string
	flagLogFile   string
	flagConfig    string
)

// errReported marks failures whose output has already been written
// (the --json error document), so Execute only sets the exit code.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "reup",
	Short: "ReUp allotment planner",
	Long: "Spread a 35-day cannabis allotment across five weekly purchases of eighths,\n" +
		"and see how many eighths to buy this week.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnv,
	RunE:              runPlan,
}

// env is everything a command needs once flags, environment and the
// config file have been merged.
type env struct {
	cfgPath    string
	cfg        config.Config
	configured bool  // a config file existed at startup
	loadErr    error // the config file existed but could not be read
	envKeys    []string
	log        zerolog.Logger
	logCloser  io.Closer
	planner    *planner.Planner
}

var run env

// Execute is the main entry point called from main.go.
func Execute() {
	err := rootCmd.Execute()
	if run.logCloser != nil {
		_ = run.logCloser.Close()
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagAllotment, "allotment", "a", "", "Allotment in ounces (e.g. 3.25)")
	pf.StringVarP(&flagStartDate, "start-date", "s", "", "Cycle start date (YYYY-MM-DD)")
	pf.StringVar(&flagToday, "today", "", "Evaluate as of this date instead of today (YYYY-MM-DD)")
	pf.StringVar(&flagTheme, "theme", "", "Color theme: "+strings.Join(theme.Names(), ", "))
	pf.BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error, disabled")
	pf.StringVar(&flagLogFile, "log-file", "", "Append JSON logs to this file")
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
}

// loadEnv merges the config file, .env, REUP_* variables and flags, in
// increasing order of precedence.
func loadEnv(cmd *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}

	config.LoadDotEnv()
	cfg, loadErr := config.LoadFrom(path)
	if loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "  Warning: %v (using defaults)\n", loadErr)
	}
	keys := config.ApplyEnv(&cfg)
	applyFlags(cmd, &cfg)

	if _, ok := theme.Lookup(cfg.Appearance.Theme); !ok {
		return fmt.Errorf("unknown theme %q (choose from %s)", cfg.Appearance.Theme, strings.Join(theme.Names(), ", "))
	}
	theme.SetActive(cfg.Appearance.Theme)

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: true})
	var closer io.Closer
	if cfg.Log.File != "" {
		var err error
		log, closer, err = logging.OpenFile(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			return err
		}
	}

	p := planner.New()
	if flagToday != "" {
		d, err := planner.ParseDate(flagToday)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		p = p.WithClock(func() time.Time { return d })
	}

	run = env{
		cfgPath:    path,
		cfg:        cfg,
		configured: config.Exists(path),
		loadErr:    loadErr,
		envKeys:    keys,
		log:        log,
		logCloser:  closer,
		planner:    p,
	}
	log.Debug().Str("config", path).Strs("env", keys).Msg("configuration loaded")
	return nil
}

// applyFlags copies explicitly set global flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("allotment") {
		cfg.Plan.Allotment = flagAllotment
	}
	if flags.Changed("start-date") {
		cfg.Plan.StartDate = flagStartDate
	}
	if flags.Changed("theme") {
		cfg.Appearance.Theme = flagTheme
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
}

// today is the evaluation date honoring --today.
func today() string {
	return planner.FormatDate(run.planner.Today())
}

// saveConfig writes cfg back to the file it was loaded from.
func saveConfig(cfg config.Config) error {
	if err := config.SaveTo(run.cfgPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	run.log.Info().Str("path", run.cfgPath).Msg("config saved")
	return nil
}

// saveConfigOnExit is saveConfig for writes the user did not ask for. A
// config file that failed to load is left alone so its settings survive.
func saveConfigOnExit(w io.Writer, cfg config.Config) error {
	if run.loadErr != nil {
		fmt.Fprintf(w, "  Not saving settings: %s could not be read (%v)\n", run.cfgPath, run.loadErr)
		return nil
	}
	return saveConfig(cfg)
}
