package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a structured JSON logger using slog.
// Level comes from PROPADMIN_LOG_LEVEL (debug|info|warn|error), default info.
func New() *slog.Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter returns a structured JSON logger writing to w. The console
// UI owns stdout, so logs default to stderr and tests pass io.Discard.
func NewWithWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFromEnv(),
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("PROPADMIN_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
