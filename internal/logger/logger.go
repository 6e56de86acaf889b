// Package logger builds the slog loggers used across the runtime. Loggers
// discard everything unless logging is explicitly enabled.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options configures logger construction.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Required when Enabled
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // Emit JSON records instead of logfmt-style text
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New returns a logger for opts.
func New(opts Options) *slog.Logger {
	if !opts.Enabled || opts.Writer == nil {
		return Discard()
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(opts.Writer, hopts))
	}
	return slog.New(slog.NewTextHandler(opts.Writer, hopts))
}

// ParseLevel maps a level name (debug, info, warn, error, off) to a level.
// The boolean result is false for "off" and the empty string.
func ParseLevel(s string) (slog.Level, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return slog.LevelInfo, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	default:
		return slog.LevelInfo, false, fmt.Errorf("logger: unknown level %q", s)
	}
}
