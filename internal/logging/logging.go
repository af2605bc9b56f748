// Package logging provides Odilia's ambient logging, following the
// teacher's own convention of a package-level enable/disable switch
// (pkg/core/signal.go's debugMode, pkg/bubbly/event_dispatcher.go's
// EnableDebugMode) rather than introducing a third-party structured
// logger — none of the example repos in the retrieval pack import one
// (zerolog/zap/logrus appear nowhere), so this wraps the standard
// library's log/slog. See DESIGN.md for the justification.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	once    sync.Once
	base    *slog.Logger
	traceOn atomic.Bool
)

func root() *slog.Logger {
	once.Do(func() {
		base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug - 4,
		}))
	})
	return base
}

// EnableTrace toggles trace-level logging, mirroring the teacher's
// debugMode switch: trace output is for development and is off by
// default everywhere the spec calls for "logged at trace level"
// (reconciliation mismatches, dropped predicate failures, stale removals).
func EnableTrace(enabled bool) {
	traceOn.Store(enabled)
}

// TraceEnabled reports whether trace-level logging is currently on.
func TraceEnabled() bool {
	return traceOn.Load()
}

// For returns a named logger, e.g. logging.For("cache").
func For(component string) *slog.Logger {
	return root().With(slog.String("component", component))
}

// Trace logs at trace level (modeled as slog.LevelDebug-4) when trace
// logging is enabled. Used for the many "normal, not an error" cases the
// spec calls out: reconciliation mismatches (§4.1), stale ChildrenChanged
// removals (§9), PredicateFailure and ServiceNotFound (§7).
func Trace(l *slog.Logger, msg string, args ...any) {
	if !traceOn.Load() {
		return
	}
	l.Log(context.Background(), slog.LevelDebug-4, msg, args...)
}

// Error logs at error level, used for handler failures (§7 propagation
// policy: logged, never cancels siblings).
func Error(l *slog.Logger, msg string, args ...any) {
	l.Error(msg, args...)
}
