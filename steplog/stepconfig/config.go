// Package stepconfig loads step logging settings from a YAML file and the environment.
//
// Environment variables override the file. They use the prefix STEPLOG__ and
// "__" between keys, e.g.
//
//	STEPLOG__LOGGING__LEVEL=debug
//	STEPLOG__DEFAULTS__SHAPE_DELTA=true
//	STEPLOG__STEPS__REMOVEOUTLIERS__NAMES=true
//
// Environment keys are lower-cased, so step names are matched case-insensitively
// when no exact match exists.
package stepconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/AntonStoeckl/steplog-go/steplog"
	"github.com/AntonStoeckl/steplog-go/steplog/logsink"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "STEPLOG__"

// keyDelim separates nested keys. Sink names are import paths and contain dots.
const keyDelim = "::"

// Config is the file layout.
type Config struct {
	Logging  LoggingSection         `koanf:"logging"`
	Defaults StepSection            `koanf:"defaults"`
	Steps    map[string]StepSection `koanf:"steps"`
}

// LoggingSection configures the process-wide sinks.
type LoggingSection struct {
	Level     string            `koanf:"level"`
	Levels    map[string]string `koanf:"levels"`
	JSON      bool              `koanf:"json"`
	AddSource bool              `koanf:"add_source"`
	SeqURL    string            `koanf:"seq_url"`
}

// StepSection holds the field selection of a step. Unset fields keep the
// value from the defaults section, or the library default.
type StepSection struct {
	TimeTaken  *bool  `koanf:"time_taken"`
	Shape      *bool  `koanf:"shape"`
	ShapeDelta *bool  `koanf:"shape_delta"`
	Names      *bool  `koanf:"names"`
	DTypes     *bool  `koanf:"dtypes"`
	LogLevel   string `koanf:"log_level"`
}

// Load merges the YAML file at path (if present) with STEPLOG__ environment variables.
// An empty path or a missing file only reads the environment.
func Load(path string) (Config, error) {
	k := koanf.New(keyDelim)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, keyDelim, envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.foldEnvSteps()

	return cfg, nil
}

// envKey turns STEPLOG__STEPS__CLEAN__SHAPE_DELTA into steps::clean::shape_delta.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)

	return strings.ReplaceAll(s, "__", keyDelim)
}

// StepOptions returns the wrapper options for step: the defaults section
// overlaid with the step's own section.
func (c Config) StepOptions(step string) ([]steplog.Option, error) {
	merged := c.Defaults.overlay(c.step(step))

	var opts []steplog.Option
	addBool := func(v *bool, opt func(bool) steplog.Option) {
		if v != nil {
			opts = append(opts, opt(*v))
		}
	}

	addBool(merged.TimeTaken, steplog.WithTimeTaken)
	addBool(merged.Shape, steplog.WithShape)
	addBool(merged.ShapeDelta, steplog.WithShapeDelta)
	addBool(merged.Names, steplog.WithNames)
	addBool(merged.DTypes, steplog.WithDTypes)

	if merged.LogLevel != "" {
		level, err := steplog.ParseLevel(merged.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step, err)
		}
		opts = append(opts, steplog.WithLevel(level))
	}

	return opts, nil
}

// SinkOptions converts the logging section for logsink.Configure.
func (c Config) SinkOptions() logsink.Options {
	return logsink.Options{
		Level:     c.Logging.Level,
		Levels:    c.Logging.Levels,
		JSON:      c.Logging.JSON,
		AddSource: c.Logging.AddSource,
		SeqURL:    c.Logging.SeqURL,
	}
}

// ConfigureSinks installs the logging section as the process-wide sink setup.
func (c Config) ConfigureSinks() (func(), error) {
	return logsink.Configure(c.SinkOptions())
}

// foldEnvSteps merges the lower-cased step entries produced by environment keys
// into the file entries of the same name, so STEPLOG__STEPS__REMOVEOUTLIERS__*
// overrides a file section named removeOutliers.
func (c Config) foldEnvSteps() {
	folded := make(map[string]bool)

	for key := range c.Steps {
		lower := strings.ToLower(key)
		if key == lower {
			continue
		}

		if s, ok := c.Steps[lower]; ok {
			c.Steps[key] = c.Steps[key].overlay(s)
			folded[lower] = true
		}
	}

	for key := range folded {
		delete(c.Steps, key)
	}
}

func (c Config) step(name string) StepSection {
	if s, ok := c.Steps[name]; ok {
		return s
	}

	for key, s := range c.Steps {
		if strings.EqualFold(key, name) {
			return s
		}
	}

	return StepSection{}
}

func (s StepSection) overlay(o StepSection) StepSection {
	if o.TimeTaken != nil {
		s.TimeTaken = o.TimeTaken
	}
	if o.Shape != nil {
		s.Shape = o.Shape
	}
	if o.ShapeDelta != nil {
		s.ShapeDelta = o.ShapeDelta
	}
	if o.Names != nil {
		s.Names = o.Names
	}
	if o.DTypes != nil {
		s.DTypes = o.DTypes
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}

	return s
}
