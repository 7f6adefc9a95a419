package steplog

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Step is a single pipeline step: one tabular value in, one tabular value out.
type Step[T Tabular] func(ctx context.Context, in T) (T, error)

// Lift turns a pure transformation into a Step that never fails.
func Lift[T Tabular](fn func(T) T) Step[T] {
	return func(_ context.Context, in T) (T, error) {
		return fn(in), nil
	}
}

// LogStep wraps step so that every successful call emits one record with the
// configured fields. The returned Step has the same result and error as step.
//
// Without options the record holds the elapsed time and the output shape and is
// emitted at info level to the sink named after step's package.
//
// A nil input has the zero shape. A nil result without an error is reported as
// ErrNilResult and emits no record.
func LogStep[T Tabular](step Step[T], opts ...Option) (Step[T], error) {
	if step == nil {
		return nil, ErrNilStep
	}

	return newStepLogger(step, identify(step), nil, opts)
}

// LogFunc is LogStep for a pure transformation. The step name and sink name are
// taken from fn.
func LogFunc[T Tabular](fn func(T) T, opts ...Option) (Step[T], error) {
	if fn == nil {
		return nil, ErrNilStep
	}

	return newStepLogger(Lift(fn), identify(fn), nil, opts)
}

// MustLogStep is like LogStep but panics on a configuration error.
func MustLogStep[T Tabular](step Step[T], opts ...Option) Step[T] {
	wrapped, err := LogStep(step, opts...)
	if err != nil {
		panic(err)
	}

	return wrapped
}

// MustLogFunc is like LogFunc but panics on a configuration error.
func MustLogFunc[T Tabular](fn func(T) T, opts ...Option) Step[T] {
	wrapped, err := LogFunc(fn, opts...)
	if err != nil {
		panic(err)
	}

	return wrapped
}

// stepLogger holds everything captured at wrap time.
type stepLogger[T Tabular] struct {
	step       Step[T]
	name       string
	loggerName string
	settings   settings
	extractors []Extractor[T]
	bound      []Kwargs
}

func newStepLogger[T Tabular](step Step[T], id identity, extractors []Extractor[T], opts []Option) (Step[T], error) {
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	w := &stepLogger[T]{
		step:       step,
		name:       id.name,
		loggerName: id.pkg,
		settings:   s,
	}

	if s.name != "" {
		w.name = s.name
	}

	if s.loggerName != "" {
		w.loggerName = s.loggerName
	}

	if extractors == nil {
		if len(s.kwargs) > 0 {
			return nil, ErrKwargsWithoutExtractors
		}

		return w.call, nil
	}

	bound, err := bindKwargs(extractors, s.kwargs)
	if err != nil {
		return nil, err
	}

	w.extractors = append([]Extractor[T](nil), extractors...)
	w.bound = bound

	return w.call, nil
}

func (w *stepLogger[T]) call(ctx context.Context, in T) (T, error) {
	start := time.Now()
	callID := newCallID()
	cfg := w.settings.config

	ctx, span := startStepSpan(ctx, w.settings.tracingCollector, w.name, callID.String())

	var input Shape
	if cfg.ShapeDelta && w.extractors == nil {
		input = ShapeOf(in)
	}

	out, err := w.step(ctx, in)
	if err != nil {
		w.recordFailure(ctx, span, time.Since(start), err)
		return out, err
	}

	if isNil(out) {
		err = fmt.Errorf("%w: %s", ErrNilResult, w.name)
		w.recordFailure(ctx, span, time.Since(start), err)
		return out, err
	}

	elapsed := time.Since(start)
	output := ShapeOf(out)

	event := LogEvent{
		CallID:  callID,
		Step:    w.name,
		Logger:  w.loggerName,
		ArgRepr: argRepr(in),
		Elapsed: elapsed,
		Input:   input,
		Output:  output,
		Config:  cfg,
	}

	t := resolveTarget(&w.settings, w.loggerName)
	if t.enabled(ctx, cfg.Level) {
		if w.extractors != nil {
			extras, err := w.extract(out)
			if err != nil {
				w.recordFailure(ctx, span, time.Since(start), err)
				return out, err
			}

			event.Extra = true
			event.Extras = extras
		} else if cfg.Names || cfg.DTypes {
			event.Names = out.ColumnNames()
			if cfg.DTypes {
				event.DTypes = out.DTypes()
			}
		}

		t.log(ctx, cfg.Level, event.Message(), event.Attrs()...)
	}

	recordStepMetrics(ctx, w.settings.metricsCollector, w.name, StatusSuccess, elapsed, &output)
	finishStepSpan(w.settings.tracingCollector, span, StatusSuccess, elapsed, &output, nil)

	return out, nil
}

func (w *stepLogger[T]) recordFailure(ctx context.Context, span SpanContext, duration time.Duration, err error) {
	recordStepMetrics(ctx, w.settings.metricsCollector, w.name, StatusError, duration, nil)
	finishStepSpan(w.settings.tracingCollector, span, StatusError, duration, nil, err)
}

func (w *stepLogger[T]) extract(out T) ([]string, error) {
	extras := make([]string, 0, len(w.extractors))

	for i, x := range w.extractors {
		v, err := x.Fn(out, maps.Clone(w.bound[i]))
		if err != nil {
			return nil, err
		}

		extras = append(extras, stringify(v))
	}

	return extras, nil
}

func newCallID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}
