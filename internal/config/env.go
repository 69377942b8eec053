package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override config values.
const (
	EnvAllotment = "REUP_ALLOTMENT"
	EnvStartDate = "REUP_START_DATE"
	EnvTheme     = "REUP_THEME"
	EnvLogLevel  = "REUP_LOG_LEVEL"
)

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays REUP_* environment variables onto cfg and reports
// which keys were overridden.
func ApplyEnv(cfg *Config) []string {
	var applied []string
	set := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
			applied = append(applied, name)
		}
	}
	set(EnvAllotment, &cfg.Plan.Allotment)
	set(EnvStartDate, &cfg.Plan.StartDate)
	set(EnvTheme, &cfg.Appearance.Theme)
	set(EnvLogLevel, &cfg.Log.Level)
	return applied
}
