package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the process logger: JSON lines, trace and request ids
// attached from the context of each record.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(env, level),
	})

	return slog.New(NewTraceHandler(handler)).With("service", "user-api")
}

// ParseLevel maps LOG_LEVEL onto slog levels. Unset means debug in dev and info elsewhere.
func ParseLevel(env, level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if env == "dev" {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}
