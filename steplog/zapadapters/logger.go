// Package zapadapters lets step wrappers log through go.uber.org/zap.
package zapadapters

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/steplog-go/steplog"
)

// Logger implements steplog.Logger and steplog.ContextualLogger on a zap logger.
// Structured args are passed on as zap's loosely typed key/value pairs.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger wraps z.
func NewLogger(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar()}
}

// Factory returns a steplog.LoggerFactory that hands out z.Named(name) per sink name.
func Factory(z *zap.Logger) steplog.LoggerFactory {
	return func(name string) steplog.Logger {
		return NewLogger(z.Named(name))
	}
}

func (l *Logger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *Logger) DebugContext(_ context.Context, msg string, args ...any) { l.Debug(msg, args...) }
func (l *Logger) InfoContext(_ context.Context, msg string, args ...any)  { l.Info(msg, args...) }
func (l *Logger) WarnContext(_ context.Context, msg string, args ...any)  { l.Warn(msg, args...) }
func (l *Logger) ErrorContext(_ context.Context, msg string, args ...any) { l.Error(msg, args...) }

// Log emits at the zap level matching level.
func (l *Logger) Log(_ context.Context, level slog.Level, msg string, args ...any) {
	l.sugar.Logw(Level(level), msg, args...)
}

// Enabled reports whether the zap core accepts level.
func (l *Logger) Enabled(_ context.Context, level slog.Level) bool {
	return l.sugar.Desugar().Core().Enabled(Level(level))
}

// Level maps a slog level to a zap level. Levels above error stay at error so
// that a step record never triggers zap's panic or fatal behaviour.
func Level(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

var (
	_ steplog.Logger           = (*Logger)(nil)
	_ steplog.ContextualLogger = (*Logger)(nil)
)
