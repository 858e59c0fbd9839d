// Package logging provides the structured JSON logger shared by every
// component, built on log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a JSON logger writing to stdout at the given level.
// Supported levels: debug, info, warn, error; anything else means info.
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// Discard returns a logger that drops everything, for components whose
// callers did not supply one.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// WithComponent tags a logger with the component emitting the records.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithVideoID tags a logger with the source video being processed.
func WithVideoID(logger *slog.Logger, videoID string) *slog.Logger {
	return logger.With("video_id", videoID)
}
