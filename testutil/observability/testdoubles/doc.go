// Package testdoubles provides test doubles (spies) for the steplog observability interfaces.
//
// This package contains spy implementations for:
//   - LogHandlerSpy: captures slog handler calls and attributes
//   - ContextualLoggerSpy: captures structured logging with context
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans and their outcome
//
// These test doubles enable testing of step wrappers without real telemetry backends.
package testdoubles
