package logging

import (
	"log/slog"
	"os"
)

// Logger is a thin slog wrapper. Components take it by pointer and derive
// per-session children; everything emits JSON lines on stdout.
type Logger struct {
	*slog.Logger
}

// New parses the level name, defaulting to info on anything unrecognized.
func New(level string) *Logger {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)

	return &Logger{Logger: logger}
}

// Default is the info-level logger used when nothing is injected.
func Default() *Logger {
	return New("info")
}

// WithSession returns a child logger tagged with the session identifier so
// every turn of one conversation can be correlated in the log stream.
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{Logger: l.Logger.With("session_id", sessionID)}
}
