// Package oteladapters provides OpenTelemetry adapters for the steplog observability interfaces.
// Wrappers configured with them emit step records, call metrics and spans through the
// OpenTelemetry SDK that the application has set up.
package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/steplog-go/steplog"
)

// SlogBridgeLogger implements steplog.ContextualLogger on top of the OpenTelemetry slog bridge.
// Records emitted inside a traced step call are correlated with the step span.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a logger that writes to the global OpenTelemetry LoggerProvider.
// Use the sink name of the step (its package path) as name.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithProvider is like NewSlogBridgeLogger but writes to provider.
func NewSlogBridgeLoggerWithProvider(name string, provider log.LoggerProvider) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name, otelslog.WithLoggerProvider(provider))}
}

// NewSlogBridgeLoggerWithHandler wraps handler as is, without OpenTelemetry export.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler)}
}

// SlogBridgeLoggerFactory returns a steplog.LoggerFactory creating one bridge logger per sink name.
func SlogBridgeLoggerFactory(provider log.LoggerProvider) steplog.LoggerFactory {
	return func(name string) steplog.Logger {
		return otelslog.NewLogger(name, otelslog.WithLoggerProvider(provider))
	}
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// Log emits at an arbitrary slog level.
func (l *SlogBridgeLogger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.logger.Log(ctx, level, msg, args...)
}

// Enabled reports whether the underlying handler accepts level.
func (l *SlogBridgeLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.logger.Enabled(ctx, level)
}

var _ steplog.ContextualLogger = (*SlogBridgeLogger)(nil)

// OTelLogger implements steplog.ContextualLogger with the OpenTelemetry logs API directly.
// Structured args are converted to typed log attributes.
type OTelLogger struct {
	logger log.Logger
}

// NewOTelLogger creates a contextual logger emitting to logger.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Log(ctx, slog.LevelDebug, msg, args...)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Log(ctx, slog.LevelInfo, msg, args...)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Log(ctx, slog.LevelWarn, msg, args...)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Log(ctx, slog.LevelError, msg, args...)
}

// Log emits one record at the severity matching level.
func (l *OTelLogger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	record := log.Record{}
	record.SetSeverity(Severity(level))
	record.SetSeverityText(level.String())
	record.SetBody(log.StringValue(msg))

	// args come in slog style key/value pairs
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			record.AddAttributes(log.KeyValue{Key: key, Value: logValue(args[i+1])})
		}
	}

	l.logger.Emit(ctx, record)
}

// Enabled asks the OpenTelemetry logger whether a record of this severity would be processed.
func (l *OTelLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.logger.Enabled(ctx, log.EnabledParameters{Severity: Severity(level)})
}

// Severity maps a slog level to the OpenTelemetry severity with the same meaning.
// slog levels are spaced by 4, OpenTelemetry severities within a range by 1.
func Severity(level slog.Level) log.Severity {
	switch {
	case level < slog.LevelDebug:
		return log.SeverityTrace
	case level < slog.LevelInfo:
		return log.SeverityDebug
	case level < slog.LevelWarn:
		return log.SeverityInfo
	case level < slog.LevelError:
		return log.SeverityWarn
	case level == slog.LevelError:
		return log.SeverityError
	default:
		return log.SeverityFatal
	}
}

func logValue(v any) log.Value {
	switch x := v.(type) {
	case string:
		return log.StringValue(x)
	case int:
		return log.IntValue(x)
	case int64:
		return log.Int64Value(x)
	case float64:
		return log.Float64Value(x)
	case bool:
		return log.BoolValue(x)
	case []string:
		values := make([]log.Value, len(x))
		for i, s := range x {
			values[i] = log.StringValue(s)
		}
		return log.SliceValue(values...)
	case map[string]string:
		kvs := make([]log.KeyValue, 0, len(x))
		for k, s := range x {
			kvs = append(kvs, log.String(k, s))
		}
		return log.MapValue(kvs...)
	default:
		return log.StringValue(slog.AnyValue(v).String())
	}
}

var _ steplog.ContextualLogger = (*OTelLogger)(nil)
