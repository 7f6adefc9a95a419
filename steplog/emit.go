package steplog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AntonStoeckl/steplog-go/steplog/logsink"
)

type levelEnabler interface {
	Enabled(ctx context.Context, level slog.Level) bool
}

type levelLogger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
}

// target is the resolved destination of a step record.
type target struct {
	contextual ContextualLogger
	logger     Logger
}

func resolveTarget(s *settings, loggerName string) target {
	if s.contextualLogger != nil {
		return target{contextual: s.contextualLogger}
	}

	if s.logger != nil {
		return target{logger: s.logger}
	}

	if s.loggerFactory != nil {
		if l := s.loggerFactory(loggerName); l != nil {
			return target{logger: l}
		}
	}

	return target{contextual: logsink.Named(loggerName)}
}

// enabled reports whether a record at level would be handled. Loggers that
// cannot tell are assumed to handle everything.
func (t target) enabled(ctx context.Context, level slog.Level) bool {
	var l any = t.logger
	if t.contextual != nil {
		l = t.contextual
	}

	if l == nil {
		return false
	}

	if e, ok := l.(levelEnabler); ok {
		return e.Enabled(ctx, level)
	}

	return true
}

func (t target) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if t.contextual != nil {
		if ll, ok := t.contextual.(levelLogger); ok {
			ll.Log(ctx, level, msg, args...)
			return
		}

		switch {
		case level < slog.LevelInfo:
			t.contextual.DebugContext(ctx, msg, args...)
		case level < slog.LevelWarn:
			t.contextual.InfoContext(ctx, msg, args...)
		case level < slog.LevelError:
			t.contextual.WarnContext(ctx, msg, args...)
		default:
			t.contextual.ErrorContext(ctx, msg, args...)
		}

		return
	}

	if t.logger == nil {
		return
	}

	if ll, ok := t.logger.(levelLogger); ok {
		ll.Log(ctx, level, msg, args...)
		return
	}

	switch {
	case level < slog.LevelInfo:
		t.logger.Debug(msg, args...)
	case level < slog.LevelWarn:
		t.logger.Info(msg, args...)
	case level < slog.LevelError:
		t.logger.Warn(msg, args...)
	default:
		t.logger.Error(msg, args...)
	}
}

/*** Metrics and tracing helpers ***/

// BuildStepLabels creates standard metric labels for step calls.
func BuildStepLabels(step, status string) map[string]string {
	return map[string]string{
		LogAttrStep:   step,
		LogAttrStatus: status,
	}
}

// recordStepMetrics records call count and duration, and the output row count on success.
func recordStepMetrics(
	ctx context.Context,
	collector MetricsCollector,
	step string,
	status string,
	duration time.Duration,
	output *Shape,
) {
	if collector == nil {
		return
	}

	labels := BuildStepLabels(step, status)

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, StepDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, StepCallsMetric, labels)
	} else {
		collector.RecordDuration(StepDurationMetric, duration, labels)
		collector.IncrementCounter(StepCallsMetric, labels)
	}

	if output == nil {
		return
	}

	rowLabels := map[string]string{LogAttrStep: step}
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, StepOutputRowsMetric, float64(output.Rows), rowLabels)
	} else {
		collector.RecordValue(StepOutputRowsMetric, float64(output.Rows), rowLabels)
	}
}

// startStepSpan starts a span for one step call.
// Returns the original context and nil if tracing is disabled.
func startStepSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	step string,
	callID string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrStep:   step,
		LogAttrCallID: callID,
	}

	return tracingCollector.StartSpan(ctx, SpanNameStep, attrs)
}

// finishStepSpan completes a span with the call outcome.
func finishStepSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	output *Shape,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.3f", ToMilliseconds(duration)),
	}

	if output != nil {
		attrs[LogAttrRows] = fmt.Sprintf("%d", output.Rows)
		attrs[LogAttrCols] = fmt.Sprintf("%d", output.Cols)
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}
