package transform

import (
	"context"
	"log/slog"
)

// Logger is the minimal structured-logging interface the batch engine
// reports through. Attrs are alternating key-value pairs, following the
// log/slog convention, so slog, zap and zerolog all adapt trivially.
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)
}

type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps a slog.Logger in the Logger interface.
func NewSlogAdapter(l *slog.Logger) Logger {
	return &slogAdapter{l: l}
}

func (a *slogAdapter) Debug(msg string, attrs ...any) {
	a.l.Log(context.Background(), slog.LevelDebug, msg, attrs...)
}

func (a *slogAdapter) Info(msg string, attrs ...any) {
	a.l.Log(context.Background(), slog.LevelInfo, msg, attrs...)
}

func (a *slogAdapter) Warn(msg string, attrs ...any) {
	a.l.Log(context.Background(), slog.LevelWarn, msg, attrs...)
}

func (a *slogAdapter) Error(msg string, attrs ...any) {
	a.l.Log(context.Background(), slog.LevelError, msg, attrs...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger discards everything; it is the default when no logger is set.
var NopLogger Logger = nopLogger{}
