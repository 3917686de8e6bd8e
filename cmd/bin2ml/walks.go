package main

import (
	"fmt"

	"bin2ml/internal/config"
	"bin2ml/internal/features"
	"bin2ml/internal/graph"
	"bin2ml/internal/logger"
	"bin2ml/internal/output"
	"bin2ml/internal/pipeline"
	"bin2ml/internal/record"
	"bin2ml/internal/walk"
)

func cmdWalks(args []string) error {
	rf := newRunFlags("walks")
	length := rf.fs.Int("length", 10, "maximum nodes per walk")
	count := rf.fs.Int("count", 5, "walks per function")
	start := rf.fs.Int("start", -1, "start node id (-1 = entry block)")
	pad := rf.fs.Bool("pad", false, "pad short walks up to --length")
	padValue := rf.fs.Int("pad-value", 0, "node id used for padding")

	run, err := rf.parse(args, func(r *config.Run) {
		r.WalkLength = *length
		r.WalkCount = *count
	})
	if err != nil {
		return err
	}
	if run.WalkLength < 1 {
		return fmt.Errorf("--length must be at least 1")
	}

	sum, err := output.NewSummary("walks")
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()

	opts := walk.Options{
		Length:   run.WalkLength,
		Count:    run.WalkCount,
		Start:    *start,
		Pad:      *pad,
		PadValue: *padValue,
	}
	logger.Info("generating walks", "length", opts.Length, "count", opts.Count, "seed", run.Seed, "units", len(run.Inputs))

	rep, err := pipeline.Process(ctx, run.Inputs, run.Pipeline(), pipeline.FileLoader, walkTask(run, opts))
	if err != nil {
		return err
	}

	written := 0
	toRecords := func(res pipeline.Result[[][]int]) []output.WalkRecord {
		return []output.WalkRecord{{Function: res.Function, Walks: res.Value}}
	}
	for _, grp := range groupByUnit(rep.Results, toRecords) {
		path := layoutFor(run, grp.unit).Walks()
		if !*rf.force && output.Exists(path) {
			logger.Debug("walks exist", "path", path)
			continue
		}
		if err := output.WriteJSONL(path, grp.items); err != nil {
			return err
		}
		written++
	}
	return finish(run, sum, rep, written)
}

// walkTask walks each function's CFG with a seed derived from the run seed
// and the function's identity, so results do not depend on scheduling or on
// how --in was spelled.
func walkTask(run config.Run, opts walk.Options) pipeline.Task[[][]int] {
	return func(u *record.Unit, f *record.Function) ([][]int, error) {
		g := graph.BuildCFG(f, features.New(features.Gemini, u.Table()))
		o := opts
		o.Seed = walk.DeriveSeed(run.Seed, layoutFor(run, u.Path).Stem, f.Name)
		ws, err := walk.Generate(g, o)
		if err != nil {
			return nil, err
		}
		if ws == nil {
			ws = [][]int{}
		}
		return ws, nil
	}
}
