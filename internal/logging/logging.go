// Package logging builds the zerolog loggers used by reup commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error, disabled
	Pretty bool      // human-readable console output
	Out    io.Writer // defaults to stderr
}

// ParseLevel maps a level name onto a zerolog level. Unknown names fall back to warn.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning", "":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	}
	return zerolog.WarnLevel
}

// New creates a structured logger.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything. The TUI uses it so log
// lines never land on the screen it draws.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// OpenFile returns a JSON logger appending to path, plus a closer.
func OpenFile(path, level string) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // log path is chosen by the local user
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(Config{Level: level, Out: f}), f, nil
}
