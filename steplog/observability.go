package steplog

import (
	"context"
	"time"
)

const (
	// StepDurationMetric tracks step execution duration (OpenTelemetry-compatible).
	StepDurationMetric = "steplog_step_duration_seconds"

	// StepCallsMetric tracks total step calls.
	StepCallsMetric = "steplog_step_calls_total"

	// StepOutputRowsMetric tracks the row count of the latest step output.
	StepOutputRowsMetric = "steplog_step_output_rows"

	// SpanNameStep is the tracing span name for a wrapped step call.
	SpanNameStep = "steplog.step"

	// StatusSuccess indicates the step returned without error.
	StatusSuccess = "success"

	// StatusError indicates the step or one of its extractors returned an error.
	StatusError = "error"

	// LogAttrStep identifies the step in logs, metrics and spans.
	LogAttrStep = "step"

	// LogAttrCallID identifies a single step call.
	LogAttrCallID = "call_id"

	// LogAttrStatus indicates the step outcome.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the step duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrRows is the row count of the step output.
	LogAttrRows = "n_obs"

	// LogAttrCols is the column count of the step output.
	LogAttrCols = "n_col"

	// LogAttrDeltaRows is the row difference between output and input.
	LogAttrDeltaRows = "delta_rows"

	// LogAttrDeltaCols is the column difference between output and input.
	LogAttrDeltaCols = "delta_cols"

	// LogAttrNames lists the output column names.
	LogAttrNames = "names"

	// LogAttrDTypes maps output column names to types.
	LogAttrDTypes = "dtypes"

	// LogAttrExtras holds the rendered extractor results.
	LogAttrExtras = "extras"

	// LogAttrError contains error details.
	LogAttrError = "error"
)

// Logger interface for emitting step records and reporting.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
// *slog.Logger satisfies it.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting step performance metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods for better tracing integration.
// The wrapper uses the context-aware methods when available.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information from step calls.
// It allows integration with any tracing backend (OpenTelemetry, Jaeger, Zipkin, etc.).
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// LoggerFactory returns the logger for a sink name.
type LoggerFactory func(name string) Logger
