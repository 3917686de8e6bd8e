package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"bin2ml/internal/config"
	"bin2ml/internal/logger"
	"bin2ml/internal/logger/console"
	"bin2ml/internal/output"
	"bin2ml/internal/pipeline"
)

var errRunFailed = errors.New("every function failed; see summary.json")

// runFlags are the flags every subcommand accepts.
type runFlags struct {
	fs        *flag.FlagSet
	in        *string
	out       *string
	workers   *int
	minBlocks *int
	seed      *uint64
	logLevel  *string
	debug     *bool
	force     *bool
}

func newRunFlags(name string) *runFlags {
	env := config.FromEnv()
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &runFlags{
		fs:        fs,
		in:        fs.String("in", "", "record file or directory of *.json records"),
		out:       fs.String("out", "", "output directory"),
		workers:   fs.Int("workers", env.Workers, "worker pool size"),
		minBlocks: fs.Int("min-blocks", env.MinBlocks, "skip functions with fewer basic blocks"),
		seed:      fs.Uint64("seed", env.Seed, "base seed for random walks"),
		logLevel:  fs.String("log-level", env.LogLevel, "debug, info, warn, error"),
		debug:     fs.Bool("debug", false, "enable debug logging"),
		force:     fs.Bool("force", false, "overwrite existing artifacts"),
	}
}

// parse parses args, discovers inputs and starts logging. fill sets the
// subcommand-specific fields before validation.
func (f *runFlags) parse(args []string, fill func(*config.Run)) (config.Run, error) {
	if err := f.fs.Parse(args); err != nil {
		return config.Run{}, err
	}
	if *f.in == "" {
		return config.Run{}, fmt.Errorf("--in is required")
	}
	if *f.out == "" {
		return config.Run{}, fmt.Errorf("--out is required")
	}

	logger.Init(console.New(console.Params{Level: *f.logLevel, Debug: *f.debug}))

	inputs, err := discoverInputs(*f.in)
	if err != nil {
		return config.Run{}, err
	}
	root := *f.in
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		root = filepath.Dir(root)
	}
	run := config.Run{
		Inputs:    inputs,
		Root:      root,
		Output:    *f.out,
		Workers:   *f.workers,
		MinBlocks: *f.minBlocks,
		Seed:      *f.seed,
		LogLevel:  strings.ToLower(*f.logLevel),
	}
	if *f.debug {
		run.LogLevel = "debug"
	}
	if fill != nil {
		fill(&run)
	}
	if err := run.Validate(); err != nil {
		return config.Run{}, err
	}
	if err := os.MkdirAll(run.Output, 0755); err != nil {
		return config.Run{}, fmt.Errorf("mkdir %s: %w", run.Output, err)
	}
	return run, nil
}

// discoverInputs returns path itself, or every *.json file below it in
// lexical order.
func discoverInputs(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []string{path}, nil
	}

	var paths []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".json") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .json records under %s", path)
	}
	sort.Strings(paths)
	return paths, nil
}

// layoutFor maps a unit's artifacts under the run's output directory.
func layoutFor(run config.Run, unitPath string) output.Layout {
	return output.NewLayout(run.Output, run.Root, unitPath)
}

// interruptible returns a context cancelled by SIGINT or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// skipExisting drops a work item whose artifact is already on disk.
func skipExisting(force bool, path string) error {
	if !force && output.Exists(path) {
		return pipeline.ErrFiltered
	}
	return nil
}

// finish writes summary.json and reports the run outcome.
func finish[T any](run config.Run, sum *output.Summary, rep *pipeline.Report[T], artifacts int) error {
	sum.Units = rep.Units
	sum.FatalUnits = rep.FatalUnits
	sum.EmptyUnits = rep.EmptyUnits
	sum.Succeeded = rep.Succeeded
	sum.Skipped = rep.Skipped
	sum.Filtered = rep.Filtered
	sum.Artifacts = artifacts
	sum.Failed = rep.Failed()
	sum.Diags = rep.Diags

	for _, d := range rep.Diags {
		if d.Fatal() {
			logger.Warn("unit skipped", "unit", d.Unit, "kind", string(d.Kind), "err", d.Msg)
		}
	}
	if err := output.WriteSummary(run.Output, sum); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: %d units, %d ok, %d skipped, %d filtered, %d artifacts -> %s\n",
		sum.Command, rep.Units, rep.Succeeded, rep.Skipped, rep.Filtered, artifacts, run.Output)
	if sum.Failed {
		return errRunFailed
	}
	return nil
}

type unitGroup[V any] struct {
	unit  string
	items []V
}

// groupByUnit collects per-function results into per-unit groups. results
// are sorted by unit, so groups come out in unit order and items keep
// function order.
func groupByUnit[T, V any](results []pipeline.Result[T], items func(pipeline.Result[T]) []V) []unitGroup[V] {
	var groups []unitGroup[V]
	for _, res := range results {
		if len(groups) == 0 || groups[len(groups)-1].unit != res.Unit {
			groups = append(groups, unitGroup[V]{unit: res.Unit})
		}
		g := &groups[len(groups)-1]
		g.items = append(g.items, items(res)...)
	}
	return groups
}
