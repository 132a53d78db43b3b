package log

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	tberrors "github.com/biswajyotidutta/tabeda/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// Output formats accepted by SetupLogger.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = &zeroLogger{zl: zerolog.New(os.Stderr).With().Timestamp().Logger()}
)

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// SetupLogger builds a zerolog-backed Logger writing to w, installs it as the
// process logger and routes pkg/errors warnings through it.
//
// format is FormatConsole, FormatJSON or FormatAuto; auto picks the console
// writer when w is a terminal.
func SetupLogger(level, format string, w io.Writer) (Logger, error) {
	lvl, err := ToLogLevel(level)
	if err != nil {
		return nil, err
	}

	out := w
	switch format {
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	case FormatJSON:
	case FormatAuto, "":
		if isTerminal(w) {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
	default:
		return nil, tberrors.NewValidationError("log_format", "must be one of auto, console, json", format)
	}

	zl := zerolog.New(out).Level(toZerologLevel(lvl)).With().Timestamp().Logger()
	logger := &zeroLogger{zl: zl}
	SetLogger(logger)

	tberrors.SetZerologWarnFunc(func(w error) {
		ev := zl.Warn()
		if obj, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.Object("warning", obj)
		}
		ev.Msg(w.Error())
	})
	return logger, nil
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zeroLogger{zl: zl}
}

// ToLogLevel converts a level name to a Level.
func ToLogLevel(level string) (Level, error) {
	switch level {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, tberrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ErrAttr is a helper for logging an error as a key-value pair.
func ErrAttr(err error) (string, error) {
	return ErrAttrKey, err
}

type zeroLogger struct {
	zl zerolog.Logger
}

func (z *zeroLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *zeroLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *zeroLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *zeroLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

func (z *zeroLogger) With(fields ...any) Logger {
	return &zeroLogger{zl: z.zl.With().Fields(normalizeFields(fields)).Logger()}
}

func (z *zeroLogger) Enabled(_ context.Context, level Level) bool {
	zlvl := toZerologLevel(level)
	return zlvl >= z.zl.GetLevel() && zlvl >= zerolog.GlobalLevel()
}

func (z *zeroLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if err, ok := fields[i+1].(error); ok {
			if st := extractStacktrace(err); st != "" {
				ev = ev.Str(StacktraceAttrKey, st)
			}
			break
		}
	}
	ev.Fields(normalizeFields(fields)).Msg(msg)
}

// normalizeFields drops a dangling key so zerolog never sees an odd list.
func normalizeFields(fields []any) []any {
	if len(fields)%2 == 1 {
		return fields[:len(fields)-1]
	}
	return fields
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
