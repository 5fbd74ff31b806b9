// Package debug provides opt-in diagnostic logging over log/slog.
//
// The package stays silent until Init(true) is called, so library users pay
// nothing for the instrumentation scattered through query compilation.
package debug

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// discardHandler mirrors slog.DiscardHandler, which was added in Go 1.24 and
// is unavailable on older toolchains.
type discardHandler struct{}

func (dh discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (dh discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (dh discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return dh }
func (dh discardHandler) WithGroup(string) slog.Handler             { return dh }

var (
	mu      sync.RWMutex
	enabled bool
	logger  = slog.New(discardHandler{})
)

// Init switches diagnostic logging on or off. When enabled, records are
// written to stderr at debug level; when disabled they are discarded.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if enable {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger = slog.New(handler)
	} else {
		logger = slog.New(discardHandler{})
	}
}

// Enabled reports whether diagnostic logging is active.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs one diagnostic record.
func Debug(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Debug(msg, args...)
}

// With returns the current logger extended with the given attributes.
func With(args ...any) *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return l.With(args...)
}

// Logger returns the current diagnostic logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
