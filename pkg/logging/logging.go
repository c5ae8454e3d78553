// Package logging configures structured logging for log/slog.
//
// Two formats are supported: "text" renders colored, human-readable lines
// with tint and is meant for terminals; "json" emits one JSON object per
// line for log collectors.
//
// Usage:
//
//	logger := logging.Setup("debug", "text")
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup installs a logger at level in the given format as the slog default
// and returns it.
func Setup(level, format string) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, ParseLevel(level), format))
	slog.SetDefault(logger)
	return logger
}

// NewHandler returns a handler writing to w. Unknown formats fall back to
// text.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if strings.EqualFold(format, FormatJSON) {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
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
