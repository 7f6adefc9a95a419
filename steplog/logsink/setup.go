package logsink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

// Options describe the process-wide sink setup.
type Options struct {
	// Level is the root level ("debug", "info", "warn", "error").
	Level string

	// Levels sets the level of single sink names.
	Levels map[string]string

	// JSON switches the console handler from text to JSON.
	JSON bool

	AddSource bool

	// SeqURL additionally ships records to a Seq server when set.
	SeqURL string
}

// Configure builds a new default registry from opts and installs it.
// The returned function flushes and closes remote handlers and must be called on shutdown.
func Configure(opts Options) (func(), error) {
	root, err := parseLevel(opts.Level)
	if err != nil {
		return func() {}, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: opts.AddSource,
	}

	var console slog.Handler
	if opts.JSON {
		console = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		console = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	handler, closeFn := withSeq(console, opts.SeqURL, handlerOpts)

	r := NewRegistry(handler)
	r.SetLevel("", root)
	for name, s := range opts.Levels {
		lvl, err := parseLevel(s)
		if err != nil {
			closeFn()
			return func() {}, fmt.Errorf("sink %q: %w", name, err)
		}
		r.SetLevel(name, lvl)
	}

	SetDefault(r)

	return closeFn, nil
}

// InitFromEnv configures the default registry from STEPLOG_LOG_LEVEL,
// STEPLOG_LOG_JSON and STEPLOG_SEQ_URL.
func InitFromEnv() (func(), error) {
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("STEPLOG_LOG_JSON"))); err == nil {
		json = b
	}

	return Configure(Options{
		Level:  os.Getenv("STEPLOG_LOG_LEVEL"),
		JSON:   json,
		SeqURL: strings.TrimSpace(os.Getenv("STEPLOG_SEQ_URL")),
	})
}

// withSeq combines console with a Seq handler when seqURL is set.
// If Seq is not available the console handler is used alone.
func withSeq(console slog.Handler, seqURL string, handlerOpts *slog.HandlerOptions) (slog.Handler, func()) {
	if seqURL == "" {
		return console, func() {}
	}

	_, seqHandler := slogseq.NewLogger(
		seqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(handlerOpts),
	)
	if seqHandler == nil {
		return console, func() {}
	}

	multi := &MultiHandler{handlers: []slog.Handler{console, seqHandler}}

	return multi, func() { seqHandler.Close() }
}

func parseLevel(s string) (slog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}

	return lvl, nil
}

// MultiHandler forwards log records to multiple handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler fans records out to handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports true if any handler is enabled for level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes a clone of record to every enabled handler and joins their errors.
func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}

		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &MultiHandler{handlers: handlers}
}
