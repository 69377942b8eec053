// Package config loads and saves the reup TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultAllotment is used until the user enters their own.
const DefaultAllotment = "3.25"

// Config holds all reup configuration.
type Config struct {
	Plan       PlanConfig       `toml:"plan"`
	Appearance AppearanceConfig `toml:"appearance"`
	Shop       ShopConfig       `toml:"shop"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// PlanConfig holds the last-used calculator inputs, kept as typed.
type PlanConfig struct {
	Allotment string `toml:"allotment"`
	StartDate string `toml:"start_date"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ShopConfig holds dispensary preferences.
type ShopConfig struct {
	DefaultDispensary string `toml:"default_dispensary,omitempty"`
}

// ServerConfig holds settings for `reup serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	Schedule       string   `toml:"schedule"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	EventsBuffer   int      `toml:"events_buffer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Plan: PlanConfig{
			Allotment: DefaultAllotment,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8788",
			Schedule:     "@midnight",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// StartDateOr returns the configured start date, or today's date
// (YYYY-MM-DD) when none has been saved yet.
func (p PlanConfig) StartDateOr(today string) string {
	if p.StartDate == "" {
		return today
	}
	return p.StartDate
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reup")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reup")
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG data directory holding the link database and
// server state files.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "reup")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "reup")
}

// DBPath returns the path of the SQLite link database.
func DBPath() string {
	return filepath.Join(DataDir(), "reup.db")
}

// Load reads the default config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
