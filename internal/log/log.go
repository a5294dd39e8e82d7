// Package log provides logging functionality for portinus.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger defines the interface for logging operations.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps slog.Logger to implement our Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) {
	s.logger.Debug(msg, args...)
}

// Info logs an info message.
func (s *SlogAdapter) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) {
	s.logger.Warn(msg, args...)
}

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}

// LevelForVerbosity maps a counted -v flag to a slog level.
// 0 logs warnings and errors, 1 adds info, 2 or more adds debug.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// NewLogger creates a new logger writing to stderr with the specified verbosity.
func NewLogger(verbosity int) Logger {
	return NewLoggerWithWriter(os.Stderr, verbosity)
}

// NewLoggerWithWriter creates a new logger writing to w with the specified verbosity.
func NewLoggerWithWriter(w io.Writer, verbosity int) Logger {
	opts := &slog.HandlerOptions{
		Level: LevelForVerbosity(verbosity),
	}

	handler := slog.NewTextHandler(w, opts)
	return &SlogAdapter{logger: slog.New(handler)}
}

var defaultLogger Logger

// GetLogger returns a default logger instance for convenience.
// Only the command line bootstrap should rely on it.
func GetLogger() Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(0)
	}
	return defaultLogger
}

// Init initializes the default logger with the specified verbosity.
// This function should be called once at application startup.
func Init(verbosity int) {
	defaultLogger = NewLogger(verbosity)
}

// NewSlogAdapter creates a Logger from an slog.Logger.
func NewSlogAdapter(slogLogger *slog.Logger) Logger {
	return &SlogAdapter{logger: slogLogger}
}
