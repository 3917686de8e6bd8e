// Package pipeline fans extraction work out over a bounded worker pool and
// merges the results in a deterministic order.
//
// Work happens at two levels: units (files) are loaded in parallel, then every
// (unit, function) pair becomes an independent work item. Each item owns the
// Function it builds; the only shared state is a pre-sized slot slice written
// at disjoint indexes. Results are sorted by (unit path, function name) after
// all items finish, so output never depends on completion order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"bin2ml/internal/diag"
	"bin2ml/internal/logger"
	"bin2ml/internal/record"
)

// Config controls the worker pool.
type Config struct {
	Workers   int // pool size; 0 = runtime.NumCPU()
	MinBlocks int // functions with fewer blocks are filtered; 0 = keep all
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// ErrFiltered may be returned by a Task to drop a function without counting
// it as a failure.
var ErrFiltered = errors.New("pipeline: filtered")

// Loader reads one unit.
type Loader func(ctx context.Context, path string) (*record.Unit, error)

// FileLoader reads a unit document from disk.
func FileLoader(_ context.Context, path string) (*record.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	raw, err := record.ParseUnit(path, data)
	if err != nil {
		return nil, err
	}
	u, err := record.NewUnit(path, raw)
	if err != nil {
		return nil, err
	}
	if u.Repaired {
		logger.Warn("unit repaired before decoding", "unit", path)
	}
	return u, nil
}

// LoadUnits loads every path on the pool. Units that fail to load are
// reported as diagnostics; they never abort their siblings. The returned
// units are sorted by path.
func LoadUnits(ctx context.Context, paths []string, cfg Config, load Loader) ([]*record.Unit, []diag.Diag, error) {
	units := make([]*record.Unit, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer recoverInto(&errs[i])
			units[i], errs[i] = load(gctx, path)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var ds diag.Diags
	out := make([]*record.Unit, 0, len(units))
	for i, u := range units {
		if err := errs[i]; err != nil {
			kind := diag.KindOf(err)
			if kind == diag.KindTaskFailed {
				kind = diag.KindLoadFailed
			}
			ds.Add(paths[i], "", kind, err.Error())
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	ds.Sort()
	return out, ds.Items(), nil
}

// Task turns one validated function into an artifact.
type Task[T any] func(u *record.Unit, f *record.Function) (T, error)

// Result is one successful work item.
type Result[T any] struct {
	Unit     string
	Function string
	Value    T
}

// Report is the merged outcome of a run.
type Report[T any] struct {
	Results    []Result[T] // sorted by unit path, then function name
	Diags      []diag.Diag
	Units      int // units processed
	FatalUnits int // units that failed to load
	EmptyUnits int
	Succeeded  int
	Skipped    int
	Filtered   int
}

// Failed reports whether the run as a whole failed: every attempted function
// failed, or every unit was unloadable. Filtered functions are not failures.
func (r *Report[T]) Failed() bool {
	if r.Skipped > 0 && r.Succeeded == 0 && r.Filtered == 0 {
		return true
	}
	return r.Units == 0 && r.FatalUnits > 0
}

// AddUnitDiags folds unit-level diagnostics from LoadUnits into the report.
func (r *Report[T]) AddUnitDiags(ds []diag.Diag) {
	for _, d := range ds {
		if d.Kind == diag.KindEmptyInput {
			r.EmptyUnits++
		} else if d.Fatal() {
			r.FatalUnits++
		}
	}
	all := diag.Diags{}
	all.Merge(r.Diags)
	all.Merge(ds)
	all.Sort()
	r.Diags = all.Items()
}

type slot[T any] struct {
	name     string
	value    T
	err      error
	filtered bool
}

// Run applies task to every function of every unit. A failing function is
// recorded and skipped. When ctx is cancelled, in-flight items finish, no
// further items start, and Run returns the context error with no results.
func Run[T any](ctx context.Context, units []*record.Unit, cfg Config, task Task[T]) (*Report[T], error) {
	type item struct {
		u *record.Unit
		i int
	}
	var items []item
	for _, u := range units {
		for i := 0; i < u.Len(); i++ {
			items = append(items, item{u: u, i: i})
		}
	}
	slots := make([]slot[T], len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for k, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			s := &slots[k]
			s.name = it.u.Name(it.i)
			defer recoverInto(&s.err)

			f, err := it.u.Function(it.i)
			if err != nil {
				s.err = err
				return nil
			}
			if cfg.MinBlocks > 0 && len(f.Blocks) < cfg.MinBlocks {
				s.filtered = true
				return nil
			}
			s.value, s.err = task(it.u, f)
			if errors.Is(s.err, ErrFiltered) {
				s.filtered, s.err = true, nil
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report[T]{Units: len(units)}
	var ds diag.Diags
	for k, it := range items {
		s := &slots[k]
		switch {
		case s.filtered:
			rep.Filtered++
		case s.err != nil:
			rep.Skipped++
			ds.AddErr(it.u.Path, s.name, s.err)
			logger.Debug("function skipped", "unit", it.u.Path, "function", s.name, "err", s.err)
		default:
			rep.Succeeded++
			rep.Results = append(rep.Results, Result[T]{Unit: it.u.Path, Function: s.name, Value: s.value})
		}
	}
	sort.SliceStable(rep.Results, func(a, b int) bool {
		ra, rb := rep.Results[a], rep.Results[b]
		if ra.Unit != rb.Unit {
			return ra.Unit < rb.Unit
		}
		return ra.Function < rb.Function
	})
	ds.Sort()
	rep.Diags = ds.Items()
	return rep, nil
}

// UnitTask turns a whole unit into an artifact.
type UnitTask[T any] func(u *record.Unit) (T, error)

// RunUnits applies task to every unit on the pool. Results are in unit path order.
func RunUnits[T any](ctx context.Context, units []*record.Unit, cfg Config, task UnitTask[T]) (*Report[T], error) {
	slots := make([]slot[T], len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for k, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			s := &slots[k]
			defer recoverInto(&s.err)
			s.value, s.err = task(u)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report[T]{Units: len(units)}
	var ds diag.Diags
	for k, u := range units {
		if err := slots[k].err; err != nil {
			rep.Skipped++
			ds.AddErr(u.Path, "", err)
			continue
		}
		rep.Succeeded++
		rep.Results = append(rep.Results, Result[T]{Unit: u.Path, Value: slots[k].value})
	}
	sort.SliceStable(rep.Results, func(a, b int) bool { return rep.Results[a].Unit < rep.Results[b].Unit })
	ds.Sort()
	rep.Diags = ds.Items()
	return rep, nil
}

// Process loads paths and runs task over every function.
func Process[T any](ctx context.Context, paths []string, cfg Config, load Loader, task Task[T]) (*Report[T], error) {
	units, uds, err := LoadUnits(ctx, paths, cfg, load)
	if err != nil {
		return nil, err
	}
	rep, err := Run(ctx, units, cfg, task)
	if err != nil {
		return nil, err
	}
	rep.AddUnitDiags(uds)
	return rep, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pipeline: panic: %v", r)
	}
}
