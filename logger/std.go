package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// StdLogger is a simple logger backed by the standard library's log package,
// for local runs where zap's JSON output is noise. Production entrypoints
// use ZapLogger.
type StdLogger struct {
	logger *log.Logger
	fields map[string]interface{}
	debug  bool
}

// Ensure StdLogger implements Logger.
var _ Logger = (*StdLogger)(nil)

// NewStdLogger creates a new StdLogger.
// If debug is true, debug-level messages will be logged.
func NewStdLogger(debug bool) *StdLogger {
	return &StdLogger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
		fields: make(map[string]interface{}),
		debug:  debug,
	}
}

// Info logs an informational message.
func (l *StdLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.log("INFO", message, fields)
}

// Debug logs a debug message (only if debug mode is enabled).
func (l *StdLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	if l.debug {
		l.log("DEBUG", message, fields)
	}
}

// Warn logs a warning message.
func (l *StdLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.log("WARN", message, fields)
}

// Error logs an error message.
func (l *StdLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	allFields := mergeFields(nil, fields)
	if err != nil {
		if allFields == nil {
			allFields = make(map[string]interface{})
		}
		allFields["error"] = err.Error()
	}
	l.log("ERROR", message, allFields)
}

// WithFields returns a new StdLogger with the given fields added.
func (l *StdLogger) WithFields(fields map[string]interface{}) Logger {
	return &StdLogger{
		logger: l.logger,
		fields: mergeFields(l.fields, fields),
		debug:  l.debug,
	}
}

// log formats and outputs the log message with fields in stable order.
func (l *StdLogger) log(level, message string, fields map[string]interface{}) {
	allFields := mergeFields(l.fields, fields)
	if len(allFields) == 0 {
		l.logger.Printf("[%s] %s", level, message)
		return
	}

	keys := make([]string, 0, len(allFields))
	for k := range allFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, allFields[k]))
	}
	l.logger.Printf("[%s] %s %s", level, message, strings.Join(parts, ", "))
}
