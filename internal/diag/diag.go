// Package diag provides the error taxonomy and diagnostics shared by the extraction pipeline.
package diag

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMalformedRecord marks a function record whose blocks or edges do not resolve.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnsupportedArchitecture marks a unit tagged with an architecture outside the classifier tables.
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
	// ErrEmptyInput marks a unit with no functions. It is a no-op, not a failure.
	ErrEmptyInput = errors.New("empty input")
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindMalformedRecord Kind = "malformed_record"
	KindUnsupportedArch Kind = "unsupported_architecture"
	KindEmptyInput      Kind = "empty_input"
	KindLoadFailed      Kind = "load_failed"
	KindTaskFailed      Kind = "task_failed"
)

// KindOf maps an error onto the taxonomy.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrMalformedRecord):
		return KindMalformedRecord
	case errors.Is(err, ErrUnsupportedArchitecture):
		return KindUnsupportedArch
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	}
	return KindTaskFailed
}

// Diag records a skipped unit or function.
type Diag struct {
	Unit     string `json:"unit"`
	Function string `json:"function,omitempty"`
	Kind     Kind   `json:"kind"`
	Msg      string `json:"msg"`
}

func (d Diag) String() string {
	if d.Function == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Unit, d.Msg)
	}
	return fmt.Sprintf("[%s] %s:%s: %s", d.Kind, d.Unit, d.Function, d.Msg)
}

// Fatal reports whether the diagnostic aborted its whole unit.
func (d Diag) Fatal() bool {
	return d.Function == "" && d.Kind != KindEmptyInput
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(unit, function string, kind Kind, msg string) {
	d.items = append(d.items, Diag{Unit: unit, Function: function, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(unit, function string, kind Kind, format string, args ...any) {
	d.items = append(d.items, Diag{Unit: unit, Function: function, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// AddErr records err under the kind KindOf assigns it.
func (d *Diags) AddErr(unit, function string, err error) {
	d.Add(unit, function, KindOf(err), err.Error())
}

// Merge appends every item of other.
func (d *Diags) Merge(other []Diag) {
	d.items = append(d.items, other...)
}

// Sort orders diagnostics by unit, then function.
func (d *Diags) Sort() {
	sort.SliceStable(d.items, func(i, j int) bool {
		a, b := d.items[i], d.items[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.Function < b.Function
	})
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }
