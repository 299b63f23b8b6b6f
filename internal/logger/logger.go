// Package logger provides a structured, module-aware logging system built on Go's standard log/slog.
//
// Every package asks the global central logger for a module-scoped logger once and keeps it:
//
//	var log = logger.Global().Module("cleaner")
//
//	log.Info("light levels cleaned",
//	    logger.Int("rows_in", 120),
//	    logger.Int("rows_out", 118))
//
// Console output is human-readable text on stderr without timestamps. When a log file is
// configured, the same records are also written to it as JSON with RFC3339 timestamps.
//
// # Log Levels
//
// Available log levels from most to least verbose:
//
//   - Trace: SQL statements and per-row decisions
//   - Debug: stage internals (column lists, key counts)
//   - Info: one line per pipeline stage (default)
//   - Warn: unexpected but recoverable conditions
//   - Error: the run is about to fail
//
// # Testing
//
// Use a buffer logger to assert on output:
//
//	buf := &bytes.Buffer{}
//	testLogger := logger.NewSlogLogger(buf, logger.LogLevelDebug)
package logger

import (
	"context"
	"time"
	"unique"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Field represents a structured log field.
// Keys are interned using unique.Make() so repeated keys share one allocation.
type Field struct {
	Key   string
	Value any
}

// internKey returns an interned version of the key string.
func internKey(key string) string {
	return unique.Make(key).Value()
}

// Pre-interned common keys
var (
	errorKey   = internKey("error")
	moduleKey  = internKey("module")
	traceIDKey = internKey("trace_id")
)

// Logger is the centralized logging interface for dependency injection
type Logger interface {
	// Module returns a logger scoped to a specific module
	Module(name string) Logger

	// Leveled logging methods
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Context-aware logging
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	// Log with explicit level
	Log(level LogLevel, msg string, fields ...Field)

	// Flush ensures all buffered logs are written
	Flush() error
}

// String creates a string field for structured logging.
func String(key, value string) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int creates an integer field for structured logging.
//
// Use this for row counts, column counts and indexes.
//
//	log.Info("table loaded",
//	    logger.String("table", "light_levels"),
//	    logger.Int("rows", 365),
//	    logger.Int("columns", 4))
func Int(key string, value int) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int64 creates a 64-bit integer field for structured logging.
func Int64(key string, value int64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Uint64 creates an unsigned 64-bit integer field, used for byte counts.
func Uint64(key string, value uint64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Float64 creates a 64-bit float field for structured logging.
func Float64(key string, value float64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Bool creates a boolean field for structured logging.
func Bool(key string, value bool) Field {
	return Field{Key: internKey(key), Value: value}
}

// Error creates an error field for structured logging.
//
// The field key is always "error". If err is nil, the value will be nil.
//
//	if err := output.WriteXLSX(merged, path); err != nil {
//	    log.Error("failed to write output",
//	        logger.Error(err),
//	        logger.String("path", path))
//	    return err
//	}
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey, Value: nil}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

// Duration creates a duration field; the value is rendered as a string such as "1.5s".
func Duration(key string, value time.Duration) Field {
	return Field{Key: internKey(key), Value: value}
}

// Strings creates a field holding a list of strings, such as column names.
func Strings(key string, value []string) Field {
	return Field{Key: internKey(key), Value: value}
}
