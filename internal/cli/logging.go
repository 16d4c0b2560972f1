package cli

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a text logger at the configured level. verbose forces
// debug output.
func NewLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := ParseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps a config log level to slog. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
