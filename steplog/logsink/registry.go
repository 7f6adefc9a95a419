package logsink

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// LogAttrLogger carries the sink name on every record.
const LogAttrLogger = "logger"

// Registry holds one output handler and the per-name minimum levels.
type Registry struct {
	mu      sync.RWMutex
	handler slog.Handler
	levels  map[string]slog.Level
}

// NewRegistry creates a registry writing to handler with the root level set to info.
// A nil handler discards all records.
func NewRegistry(handler slog.Handler) *Registry {
	if handler == nil {
		handler = discardHandler{}
	}

	return &Registry{
		handler: handler,
		levels:  map[string]slog.Level{"": slog.LevelInfo},
	}
}

// SetHandler replaces the output handler. Loggers handed out earlier follow the change.
func (r *Registry) SetHandler(handler slog.Handler) {
	if handler == nil {
		handler = discardHandler{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// SetLevel sets the minimum level for name and all names below it that have no level of their own.
func (r *Registry) SetLevel(name string, level slog.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels[clean(name)] = level
}

// ResetLevel removes the level of name so that it inherits from its parent again.
// The root level cannot be removed.
func (r *Registry) ResetLevel(name string) {
	name = clean(name)
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.levels, name)
}

// Level returns the effective minimum level for name.
func (r *Registry) Level(name string) slog.Level {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = clean(name)
	for {
		if lvl, ok := r.levels[name]; ok {
			return lvl
		}

		if name == "" {
			return slog.LevelInfo
		}

		name = parent(name)
	}
}

// Logger returns a logger for name. Its records carry a "logger" attribute with
// the name and are filtered by the effective level of name.
func (r *Registry) Logger(name string) *slog.Logger {
	name = clean(name)

	return slog.New(&namedHandler{registry: r, name: name})
}

func (r *Registry) current() slog.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.handler
}

func clean(name string) string {
	return strings.Trim(strings.TrimSpace(name), "/")
}

func parent(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}

	return ""
}

/*** Process-wide default ***/

var def atomic.Pointer[Registry]

func init() {
	def.Store(NewRegistry(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// Default returns the process-wide registry.
func Default() *Registry {
	return def.Load()
}

// SetDefault replaces the process-wide registry.
func SetDefault(r *Registry) {
	if r != nil {
		def.Store(r)
	}
}

// Named returns a logger for name from the process-wide registry.
func Named(name string) *slog.Logger {
	return Default().Logger(name)
}

/*** Handlers ***/

// handlerOp is one WithAttrs or WithGroup call, replayed on the current output handler.
type handlerOp struct {
	attrs []slog.Attr
	group string
}

// namedHandler resolves level and output handler on every record, so loggers
// keep working after the registry is reconfigured.
type namedHandler struct {
	registry *Registry
	name     string
	ops      []handlerOp
}

func (h *namedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.registry.Level(h.name) {
		return false
	}

	return h.registry.current().Enabled(ctx, level)
}

func (h *namedHandler) Handle(ctx context.Context, record slog.Record) error {
	out := h.registry.current().WithAttrs([]slog.Attr{slog.String(LogAttrLogger, h.name)})
	for _, op := range h.ops {
		if op.group != "" {
			out = out.WithGroup(op.group)
		} else {
			out = out.WithAttrs(op.attrs)
		}
	}

	return out.Handle(ctx, record)
}

func (h *namedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	return h.with(handlerOp{attrs: attrs})
}

func (h *namedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return h.with(handlerOp{group: name})
}

func (h *namedHandler) with(op handlerOp) *namedHandler {
	ops := make([]handlerOp, 0, len(h.ops)+1)
	ops = append(ops, h.ops...)
	ops = append(ops, op)

	return &namedHandler{registry: h.registry, name: h.name, ops: ops}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
