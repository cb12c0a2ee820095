// Package logger provides the structured logger shared by all services,
// handlers and middleware.
package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog with the level knob taken from configuration.
type Logger struct {
	*slog.Logger
}

// New creates a Logger emitting text records to stdout at the given level.
func New(level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal logs at error level and exits the process. Reserved for startup
// wiring failures; request paths return errors instead.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
