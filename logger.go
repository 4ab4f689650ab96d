package colorpick

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for colorpick and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-sample diagnostics (dispatch path, drops)
//   - [slog.LevelInfo]: lifecycle (runtime start/stop, accelerator ready)
//   - [slog.LevelWarn]: abandoned samples (GPU context or texture failures)
//
// Example:
//
//	colorpick.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.Lock()
	for s := range sinks {
		propagateLogger(s, l)
	}
	sinksMu.Unlock()
}

// Logger returns the current logger. Sub-packages receive it through
// hooks instead of importing this package.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by collaborators that accept a logger,
// such as GPU accelerators.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// Accelerators owned by live runtimes; they follow SetLogger.
var (
	sinksMu sync.Mutex
	sinks   = map[any]struct{}{}
)

func propagateLogger(v any, l *slog.Logger) {
	if ls, ok := v.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

func addLoggerSink(v any) {
	if _, ok := v.(loggerSetter); !ok {
		return
	}
	sinksMu.Lock()
	sinks[v] = struct{}{}
	sinksMu.Unlock()
	propagateLogger(v, Logger())
}

func removeLoggerSink(v any) {
	sinksMu.Lock()
	delete(sinks, v)
	sinksMu.Unlock()
}
