// Package logging builds the process logger. Output is human-readable on a
// terminal and JSON otherwise; the level can be changed after startup once the
// persisted log_level setting has been read.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level values accepted by the log_level setting
const (
	LevelErr   = "err"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelAll   = "all"
)

// ParseLevel maps a log_level setting to a slog level, defaulting to Info
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case LevelErr:
		return slog.LevelError
	case LevelDebug, LevelAll:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to out at the level held by level
func New(out io.Writer, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// Component returns a child logger tagged with the component name
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}
