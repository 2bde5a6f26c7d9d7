package logger

import (
	"context"
	"os"

	zap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level names recognized by NewAppLogger via LOG_LEVEL.
const (
	InfoLevel  = "info"
	DebugLevel = "debug"
	ErrorLevel = "error"
)

// ZapLogger wraps a zap.SugaredLogger to implement the Logger interface.
type ZapLogger struct {
	sugar  *zap.SugaredLogger
	fields map[string]interface{}
}

// Ensure ZapLogger implements Logger.
var _ Logger = (*ZapLogger)(nil)

// NewZapLogger creates a new ZapLogger wrapping the given SugaredLogger.
func NewZapLogger(sugar *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{
		sugar:  sugar,
		fields: make(map[string]interface{}),
	}
}

// NewAppLogger builds the standard deploytrack production logger.
// The level is taken from the LOG_LEVEL environment variable (info when
// unset or unrecognized) and output goes to stdout, which is where the
// hosting platform collects invocation logs from.
func NewAppLogger(name string) *ZapLogger {
	logLevel, _ := os.LookupEnv("LOG_LEVEL")
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(logLevel))
	config.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	config.OutputPaths = []string{"stdout"}
	z, err := config.Build()
	if err != nil {
		panic(err)
	}
	return NewZapLogger(z.Named(name).Sugar())
}

func parseLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case DebugLevel:
		return zap.DebugLevel
	case ErrorLevel:
		return zap.ErrorLevel
	case InfoLevel:
		return zap.InfoLevel
	default:
		return zap.InfoLevel
	}
}

// Info logs an informational message with structured fields.
func (l *ZapLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.logWithFields(l.sugar.Infow, message, fields)
}

// Debug logs a debug message with structured fields.
func (l *ZapLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.logWithFields(l.sugar.Debugw, message, fields)
}

// Warn logs a warning message with structured fields.
func (l *ZapLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.logWithFields(l.sugar.Warnw, message, fields)
}

// Error logs an error message with structured fields.
func (l *ZapLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	allFields := mergeFields(l.fields, fields)
	if err != nil {
		if allFields == nil {
			allFields = make(map[string]interface{})
		}
		allFields["error"] = err.Error()
	}
	if len(allFields) == 0 {
		l.sugar.Errorw(message)
		return
	}
	l.sugar.Errorw(message, flatten(allFields)...)
}

// WithFields returns a new ZapLogger with the given fields added.
func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	return &ZapLogger{
		sugar:  l.sugar,
		fields: mergeFields(l.fields, fields),
	}
}

// Sync flushes any buffered log entries. Entrypoints should defer a call
// to Sync before returning.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// logWithFields converts map fields to zap's alternating key-value pairs.
func (l *ZapLogger) logWithFields(logFn func(string, ...interface{}), message string, fields map[string]interface{}) {
	allFields := mergeFields(l.fields, fields)
	if len(allFields) == 0 {
		logFn(message)
		return
	}
	logFn(message, flatten(allFields)...)
}

func flatten(fields map[string]interface{}) []interface{} {
	kvPairs := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kvPairs = append(kvPairs, k, v)
	}
	return kvPairs
}
