package steplog

import (
	"fmt"
	"maps"
	"slices"
)

// Kwargs are keyword options forwarded to extractors.
type Kwargs map[string]any

// Extractor produces one text fragment of a LogStepExtra record from a step's output.
type Extractor[T Tabular] struct {
	Name string

	// Accepts lists the kwargs keys the extractor receives.
	Accepts []string

	Fn func(out T, kwargs Kwargs) (any, error)
}

// NewExtractor builds an Extractor that receives the kwargs named in accepts.
func NewExtractor[T Tabular](name string, fn func(T, Kwargs) (any, error), accepts ...string) Extractor[T] {
	return Extractor[T]{Name: name, Accepts: accepts, Fn: fn}
}

// Extract builds an Extractor that takes no kwargs and cannot fail.
func Extract[T Tabular](name string, fn func(T) any) Extractor[T] {
	if fn == nil {
		return Extractor[T]{Name: name}
	}

	return Extractor[T]{
		Name: name,
		Fn: func(out T, _ Kwargs) (any, error) {
			return fn(out), nil
		},
	}
}

// LogStepExtra wraps step so that every successful call emits one record made of
// the step tag followed by the extractor results, in extractor order:
//
//	[<step>(<arg>)] <extractor 1> <extractor 2> ...
//
// No time, shape or type fields are added. Kwargs given with WithKwargs are
// forwarded to each extractor that accepts them. An extractor error is returned
// from the wrapped step as is, together with the step's result.
//
// At least one extractor is required, and every kwarg must be accepted by at
// least one extractor; both are checked here, before the step can be called.
func LogStepExtra[T Tabular](step Step[T], extractors []Extractor[T], opts ...Option) (Step[T], error) {
	if step == nil {
		return nil, ErrNilStep
	}

	if len(extractors) == 0 {
		return nil, ErrNoExtractors
	}

	return newStepLogger(step, identify(step), extractors, opts)
}

// LogFuncExtra is LogStepExtra for a pure transformation.
func LogFuncExtra[T Tabular](fn func(T) T, extractors []Extractor[T], opts ...Option) (Step[T], error) {
	if fn == nil {
		return nil, ErrNilStep
	}

	if len(extractors) == 0 {
		return nil, ErrNoExtractors
	}

	return newStepLogger(Lift(fn), identify(fn), extractors, opts)
}

// bindKwargs returns, per extractor, the subset of kwargs it accepts.
func bindKwargs[T Tabular](extractors []Extractor[T], kwargs Kwargs) ([]Kwargs, error) {
	accepted := make(map[string]bool)
	bound := make([]Kwargs, len(extractors))

	for i, x := range extractors {
		if x.Fn == nil {
			return nil, fmt.Errorf("%w: #%d %q", ErrNilExtractor, i, x.Name)
		}

		b := make(Kwargs, len(x.Accepts))
		for _, key := range x.Accepts {
			accepted[key] = true
			if v, ok := kwargs[key]; ok {
				b[key] = v
			}
		}

		bound[i] = b
	}

	for _, key := range slices.Sorted(maps.Keys(kwargs)) {
		if !accepted[key] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKwarg, key)
		}
	}

	return bound, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
