package common

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger shared by every engine package.
// The engine is silent by default; pass nil to restore that behavior.
// Safe for concurrent use.
//
// Parameters:
//   - l: the logger to install, or nil to discard all output
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger shared by every engine package.
//
// Returns:
//   - *slog.Logger: the active logger (never nil)
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Fatalf logs a construction precondition failure at error level and panics with the
// same formatted message. Precondition violations are never returned as errors.
//
// Parameters:
//   - format: fmt-style format string, conventionally prefixed with the package name
//   - args: format arguments
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger().Error(msg)
	panic(msg)
}
