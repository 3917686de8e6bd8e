// Package logger is a process-wide leveled logger with pluggable backends.
// Calls before Init are dropped.
package logger

import "sync/atomic"

// Backend receives log records. keyvals alternate key, value.
type Backend interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type dispatcher struct {
	backends []Backend
}

var current atomic.Pointer[dispatcher]

// Init installs the backends. It replaces any earlier configuration.
func Init(backends ...Backend) {
	current.Store(&dispatcher{backends: backends})
}

func each(fn func(Backend)) {
	d := current.Load()
	if d == nil {
		return
	}
	for _, b := range d.backends {
		fn(b)
	}
}

func Debug(msg string, keyvals ...any) { each(func(b Backend) { b.Debug(msg, keyvals...) }) }
func Info(msg string, keyvals ...any)  { each(func(b Backend) { b.Info(msg, keyvals...) }) }
func Warn(msg string, keyvals ...any)  { each(func(b Backend) { b.Warn(msg, keyvals...) }) }
func Error(msg string, keyvals ...any) { each(func(b Backend) { b.Error(msg, keyvals...) }) }
