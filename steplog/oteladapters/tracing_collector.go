package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/steplog-go/steplog"
)

// TracingCollector implements steplog.TracingCollector with an OpenTelemetry tracer.
// The context returned by StartSpan carries the span into the wrapped step.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector starting its spans from tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, steplog.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name,
		trace.WithAttributes(toAttributes(attrs)...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets attrs and status on the span and ends it.
// Spans not started by a TracingCollector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx steplog.SpanContext, status string, attrs map[string]string) {
	s, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	s.span.SetAttributes(toAttributes(attrs)...)
	s.SetStatus(status)

	if status == steplog.StatusError {
		if msg, ok := attrs[steplog.LogAttrError]; ok {
			s.span.AddEvent("exception", trace.WithAttributes(attribute.String("exception.message", msg)))
		}
	}

	s.span.End()
}

var _ steplog.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements steplog.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps steplog.StatusSuccess to codes.Ok and steplog.StatusError to codes.Error.
// Other values are kept as a "status" attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case steplog.StatusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case steplog.StatusError:
		s.span.SetStatus(codes.Error, "step failed")
	default:
		s.span.SetAttributes(attribute.String(steplog.LogAttrStatus, status))
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ steplog.SpanContext = (*OTelSpanContext)(nil)
