// Package logger provides the structured logging interface used throughout
// deploytrack. Components accept a Logger rather than a concrete
// implementation so tests can substitute the no-op logger.
package logger

import (
	"context"
)

// Logger is the standard interface for structured logging in deploytrack.
// Messages carry optional structured fields; the context is passed through
// so implementations can attach trace information.
type Logger interface {
	// Info logs an informational message with optional structured fields.
	Info(ctx context.Context, message string, fields map[string]interface{})

	// Debug logs a debug message with optional structured fields.
	Debug(ctx context.Context, message string, fields map[string]interface{})

	// Warn logs a warning message with optional structured fields.
	Warn(ctx context.Context, message string, fields map[string]interface{})

	// Error logs an error message with the error and optional structured fields.
	Error(ctx context.Context, message string, err error, fields map[string]interface{})

	// WithFields returns a new Logger with the given fields added to all
	// subsequent log messages.
	WithFields(fields map[string]interface{}) Logger
}

// NopLogger discards all messages. It is the default logger when none is
// provided and the logger of choice in unit tests.
type NopLogger struct{}

// Ensure NopLogger implements Logger.
var _ Logger = (*NopLogger)(nil)

// Info does nothing.
func (l *NopLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {}

// Debug does nothing.
func (l *NopLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {}

// Warn does nothing.
func (l *NopLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {}

// Error does nothing.
func (l *NopLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
}

// WithFields returns the same NopLogger.
func (l *NopLogger) WithFields(fields map[string]interface{}) Logger {
	return l
}

// Nop returns a no-op logger.
func Nop() Logger {
	return &NopLogger{}
}

// mergeFields merges a logger's base fields with call-site fields.
// Returns nil when both are empty so implementations can skip allocation.
func mergeFields(base, fields map[string]interface{}) map[string]interface{} {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	result := make(map[string]interface{}, len(base)+len(fields))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range fields {
		result[k] = v
	}
	return result
}
