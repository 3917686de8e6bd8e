package logger

import (
	"bytes"
	"testing"

	"bin2ml/internal/logger/console"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	lines []string
}

func (r *recorder) Debug(msg string, _ ...any) { r.lines = append(r.lines, "debug "+msg) }
func (r *recorder) Info(msg string, _ ...any)  { r.lines = append(r.lines, "info "+msg) }
func (r *recorder) Warn(msg string, _ ...any)  { r.lines = append(r.lines, "warn "+msg) }
func (r *recorder) Error(msg string, _ ...any) { r.lines = append(r.lines, "error "+msg) }

func TestDispatch(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Init(a, b)
	defer Init()

	Info("loaded", "units", 3)
	Warn("repaired")
	Error("failed")
	Debug("skipped")

	want := []string{"info loaded", "warn repaired", "error failed", "debug skipped"}
	assert.Equal(t, want, a.lines)
	assert.Equal(t, want, b.lines)
}

func TestConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(console.New(console.Params{Level: "warn", Writer: &buf}))
	defer Init()

	Info("hidden")
	Warn("shown", "unit", "a.json")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "a.json")
}
