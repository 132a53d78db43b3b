// Package log provides a structured logging interface for tabeda.
//
// The Logger interface is slog-compatible so call sites read the same whether
// the backend is log/slog or zerolog. The process logger is backed by
// github.com/rs/zerolog (see SetupLogger); tests use NewTestLogger.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ComponentKey, "dataset",
//	    log.DatasetIDKey, "boston",
//	)
//	logger.Info("Dataset loaded",
//	    log.SamplesKey, 506,
//	    log.FeaturesKey, 13,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs. Error additionally accepts an error
// as the first field; its stack trace is attached when available.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error it is logged under ErrAttrKey.
	//
	// Example:
	//   logger.Error("Dataset fetch failed",
	//       err,
	//       log.DatasetIDKey, "boston",
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
