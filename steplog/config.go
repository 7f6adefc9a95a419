package steplog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config selects the fields a LogStep wrapper renders and the level it emits at.
// It is captured by value when the wrapper is built.
type Config struct {
	TimeTaken  bool
	Shape      bool
	ShapeDelta bool
	Names      bool
	DTypes     bool
	Level      slog.Level
}

// DefaultConfig logs elapsed time and output shape at info level.
func DefaultConfig() Config {
	return Config{
		TimeTaken: true,
		Shape:     true,
		Level:     slog.LevelInfo,
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" (case-insensitive)
// to slog levels. Offsets like "info+2" or "debug-4" are accepted as well.
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfiguration, s)
	}

	return lvl, nil
}
