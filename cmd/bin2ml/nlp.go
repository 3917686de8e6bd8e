package main

import (
	"fmt"

	"bin2ml/internal/config"
	"bin2ml/internal/corpus"
	"bin2ml/internal/features"
	"bin2ml/internal/graph"
	"bin2ml/internal/logger"
	"bin2ml/internal/output"
	"bin2ml/internal/pipeline"
	"bin2ml/internal/record"
	"bin2ml/internal/walk"
)

func cmdNLP(args []string) error {
	rf := newRunFlags("nlp")
	repr := rf.fs.String("repr", "disasm", "representation: disasm, ir, esil")
	format := rf.fs.String("format", "single", "single (one line per instruction) or funcstring (one line per function)")
	noNormalise := rf.fs.Bool("no-normalise", false, "keep raw operands")
	regNorm := rf.fs.Bool("reg-norm", false, "also mask registers")
	walks := rf.fs.Bool("walks", false, "order instructions by random CFG walks")
	length := rf.fs.Int("walk-length", 10, "maximum blocks per walk")
	count := rf.fs.Int("walk-count", 5, "walks per function")
	dedup := rf.fs.Bool("dedup", false, "drop repeated function strings across all units (funcstring format)")
	dedupValue := rf.fs.Bool("dedup-value", false, "with --dedup, compare function strings by text only")

	run, err := rf.parse(args, func(r *config.Run) {
		r.Representation = *repr
		r.Granularity = *format
		if *walks {
			r.WalkLength = *length
			r.WalkCount = *count
		}
	})
	if err != nil {
		return err
	}
	if *walks && run.WalkLength < 1 {
		return fmt.Errorf("--walk-length must be at least 1")
	}
	if *dedup && (*walks || run.Granularity != "funcstring") {
		return fmt.Errorf("--dedup needs --format funcstring without --walks")
	}
	r, err := corpus.ParseRepresentation(run.Representation)
	if err != nil {
		return err
	}
	gran, err := corpus.ParseGranularity(run.Granularity)
	if err != nil {
		return err
	}
	opts := corpus.Options{
		Representation: r,
		Granularity:    gran,
		Normalise:      !*noNormalise,
		RegNorm:        *regNorm,
	}

	sum, err := output.NewSummary("nlp " + r.String())
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()

	name := "singles"
	if gran == corpus.FuncString {
		name = "funcstrings"
	}
	task := corpusTask(opts)
	if *walks {
		name = "walks"
		task = walkCorpusTask(run, opts)
	}
	logger.Info("building corpora", "repr", r.String(), "format", name, "units", len(run.Inputs))

	rep, err := pipeline.Process(ctx, run.Inputs, run.Pipeline(), pipeline.FileLoader, task)
	if err != nil {
		return err
	}

	results := rep.Results
	if *dedup {
		results = dedupResults(results, *dedupValue)
		sum.Duplicates = len(rep.Results) - len(results)
		logger.Info("deduplicated function strings", "kept", len(results), "dropped", sum.Duplicates)
	}

	written := 0
	for _, grp := range groupByUnit(results, func(res pipeline.Result[[]string]) []string { return res.Value }) {
		path := layoutFor(run, grp.unit).Corpus(r, name)
		if !*rf.force && output.Exists(path) {
			logger.Debug("corpus exists", "path", path)
			continue
		}
		if len(grp.items) == 0 {
			continue
		}
		if err := output.WriteLines(path, grp.items); err != nil {
			return err
		}
		written++
	}
	return finish(run, sum, rep, written)
}

func corpusTask(opts corpus.Options) pipeline.Task[[]string] {
	return func(_ *record.Unit, f *record.Function) ([]string, error) {
		return corpus.Assemble(f, opts), nil
	}
}

func walkCorpusTask(run config.Run, opts corpus.Options) pipeline.Task[[]string] {
	return func(u *record.Unit, f *record.Function) ([]string, error) {
		g := graph.BuildCFG(f, features.New(features.Gemini, u.Table()))
		ws, err := walk.Generate(g, walk.Options{
			Length: run.WalkLength,
			Count:  run.WalkCount,
			Seed:   walk.DeriveSeed(run.Seed, layoutFor(run, u.Path).Stem, f.Name),
			Start:  -1,
		})
		if err != nil {
			return nil, err
		}
		return corpus.WalkLines(f, ws, opts), nil
	}
}

// dedupResults drops repeated function strings. Results arrive in unit then
// function order, so the kept copy does not depend on scheduling.
func dedupResults(results []pipeline.Result[[]string], valueOnly bool) []pipeline.Result[[]string] {
	entries := make([]corpus.Entry, 0, len(results))
	for _, res := range results {
		for _, line := range res.Value {
			entries = append(entries, corpus.Entry{Unit: res.Unit, Function: res.Function, Text: line})
		}
	}
	kept := corpus.Dedup(entries, valueOnly)
	out := make([]pipeline.Result[[]string], 0, len(kept))
	for _, e := range kept {
		out = append(out, pipeline.Result[[]string]{Unit: e.Unit, Function: e.Function, Value: []string{e.Text}})
	}
	return out
}
