package steplog

import (
	"log/slog"
	"maps"
)

// settings collects everything an Option can change on a wrapper before it is built.
type settings struct {
	config           Config
	name             string
	loggerName       string
	logger           Logger
	contextualLogger ContextualLogger
	loggerFactory    LoggerFactory
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	kwargs           Kwargs
}

// Option defines a functional option for configuring a step wrapper.
type Option func(*settings) error

func applyOptions(opts []Option) (settings, error) {
	s := settings{config: DefaultConfig()}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

// WithConfig replaces the whole field selection and level.
// Options given after WithConfig still override single fields.
func WithConfig(cfg Config) Option {
	return func(s *settings) error {
		s.config = cfg
		return nil
	}
}

// WithTimeTaken toggles the elapsed time field.
func WithTimeTaken(enabled bool) Option {
	return func(s *settings) error {
		s.config.TimeTaken = enabled
		return nil
	}
}

// WithShape toggles the output shape field.
func WithShape(enabled bool) Option {
	return func(s *settings) error {
		s.config.Shape = enabled
		return nil
	}
}

// WithShapeDelta toggles the shape delta field. The input shape is only
// measured when this is enabled.
func WithShapeDelta(enabled bool) Option {
	return func(s *settings) error {
		s.config.ShapeDelta = enabled
		return nil
	}
}

// WithNames toggles the column names field.
func WithNames(enabled bool) Option {
	return func(s *settings) error {
		s.config.Names = enabled
		return nil
	}
}

// WithDTypes toggles the column types field.
func WithDTypes(enabled bool) Option {
	return func(s *settings) error {
		s.config.DTypes = enabled
		return nil
	}
}

// WithLevel sets the level records are emitted at.
func WithLevel(level slog.Level) Option {
	return func(s *settings) error {
		s.config.Level = level
		return nil
	}
}

// WithName overrides the step name shown in the message tag.
// By default the name of the wrapped function is used.
func WithName(name string) Option {
	return func(s *settings) error {
		if name == "" {
			return ErrEmptyName
		}

		s.name = name

		return nil
	}
}

// WithLoggerName overrides the sink name. By default the package path of the
// wrapped function is used.
func WithLoggerName(name string) Option {
	return func(s *settings) error {
		s.loggerName = name
		return nil
	}
}

// WithLogger sets a fixed logger for the wrapper instead of a named sink.
func WithLogger(logger Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a fixed contextual logger for the wrapper.
// It takes precedence over WithLogger and receives the call context, which
// enables trace correlation when tracing is configured.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *settings) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithLoggerFactory resolves the sink through factory, called with the sink name
// on every emitted record.
func WithLoggerFactory(factory LoggerFactory) Option {
	return func(s *settings) error {
		s.loggerFactory = factory
		return nil
	}
}

// WithMetrics sets the metrics collector for the wrapper.
// The collector receives call counts, durations and output row counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the wrapper.
// Every call runs inside a span named SpanNameStep.
func WithTracing(collector TracingCollector) Option {
	return func(s *settings) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithKwargs sets the keyword options forwarded to extractors.
// Only valid for LogStepExtra and LogFuncExtra.
func WithKwargs(kwargs Kwargs) Option {
	return func(s *settings) error {
		if s.kwargs == nil {
			s.kwargs = make(Kwargs, len(kwargs))
		}

		maps.Copy(s.kwargs, kwargs)

		return nil
	}
}
