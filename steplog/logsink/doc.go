// Package logsink is the process-wide registry of named, level-filtered slog sinks
// that step wrappers write to.
//
// Sink names are Go import paths. Levels are resolved hierarchically: the level
// set for "github.com/acme/pipeline" applies to "github.com/acme/pipeline/steps"
// unless that name has its own level. The root name "" holds the default level.
//
// Applications configure the registry once at startup, with Configure or
// InitFromEnv, and libraries only ask for loggers with Named.
package logsink
