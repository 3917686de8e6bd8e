// Package console is a logger backend writing human-readable records to a terminal.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger implements logger.Backend with charmbracelet/log.
type Logger struct {
	l *log.Logger
}

// Params configures a console backend.
type Params struct {
	Level  string    // debug, info, warn, error; empty = info
	Debug  bool      // shorthand for Level "debug"
	Writer io.Writer // nil = os.Stderr
}

// New creates a console backend. An unparseable level falls back to info.
func New(p Params) *Logger {
	level := log.InfoLevel
	if p.Level != "" {
		if lv, err := log.ParseLevel(p.Level); err == nil {
			level = lv
		}
	}
	if p.Debug {
		level = log.DebugLevel
	}
	w := p.Writer
	if w == nil {
		w = os.Stderr
	}
	return &Logger{l: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "bin2ml",
	})}
}

func (c *Logger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *Logger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *Logger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *Logger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }
