package main

import (
	"context"
	"fmt"

	"bin2ml/internal/config"
	"bin2ml/internal/features"
	"bin2ml/internal/graph"
	"bin2ml/internal/logger"
	"bin2ml/internal/output"
	"bin2ml/internal/pipeline"
	"bin2ml/internal/record"
)

func cmdGraphs(args []string) error {
	rf := newRunFlags("graphs")
	kind := rf.fs.String("kind", "cfg", "graph kind: cfg, cg, onehopcg, globalcg")
	feature := rf.fs.String("feature", "gemini", "feature scheme for cfg: gemini, discovre, dgis, tiknib")
	dot := rf.fs.Bool("dot", false, "also write Graphviz DOT files")
	withCallers := rf.fs.Bool("with-callers", false, "add callers of the root function")
	metadata := rf.fs.Bool("metadata", false, "attach function metadata to call-graph nodes")
	includeUnk := rf.fs.Bool("include-unk", false, "keep unresolved unk.* callees")

	run, err := rf.parse(args, func(r *config.Run) {
		r.GraphKind = *kind
		if *kind == string(graph.KindCFG) {
			r.Scheme = *feature
		}
		if *kind == string(graph.KindOneHop) {
			r.Hop = 1
		}
	})
	if err != nil {
		return err
	}

	sum, err := output.NewSummary("graphs " + run.GraphKind)
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()

	opts := graph.CallGraphOptions{
		Hop:            run.Hop,
		WithCallers:    *withCallers,
		IncludeUnknown: *includeUnk,
		Metadata:       *metadata,
	}
	logger.Info("building graphs", "kind", run.GraphKind, "units", len(run.Inputs), "workers", run.Workers)

	var rep *pipeline.Report[builtGraph]
	switch graph.Kind(run.GraphKind) {
	case graph.KindCFG:
		scheme, err := features.ParseScheme(run.Scheme)
		if err != nil {
			return err
		}
		rep, err = pipeline.Process(ctx, run.Inputs, run.Pipeline(), pipeline.FileLoader, cfgTask(run, scheme, *rf.force))
		if err != nil {
			return err
		}
	case graph.KindCallGraph, graph.KindOneHop:
		rep, err = pipeline.Process(ctx, run.Inputs, run.Pipeline(), pipeline.FileLoader, callGraphTask(run, opts, *rf.force))
		if err != nil {
			return err
		}
	case graph.KindGlobal:
		units, uds, err := pipeline.LoadUnits(ctx, run.Inputs, run.Pipeline(), pipeline.FileLoader)
		if err != nil {
			return err
		}
		rep, err = pipeline.RunUnits(ctx, units, run.Pipeline(), globalTask(run, opts, *rf.force))
		if err != nil {
			return err
		}
		rep.AddUnitDiags(uds)
	default:
		return fmt.Errorf("unknown graph kind %q", run.GraphKind)
	}

	written, err := writeGraphs(ctx, rep.Results, *dot)
	if err != nil {
		return err
	}
	return finish(run, sum, rep, written)
}

// builtGraph is a graph waiting to be written. A zero value marks an
// artifact that was already on disk.
type builtGraph struct {
	path string
	g    *graph.Graph
}

// writeGraphs flushes a finished run in result order. Nothing is written
// once ctx is cancelled.
func writeGraphs(ctx context.Context, results []pipeline.Result[builtGraph], dot bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, res := range results {
		if res.Value.g == nil {
			continue
		}
		if err := output.WriteGraph(res.Value.path, res.Value.g); err != nil {
			return n, err
		}
		if dot {
			if err := output.WriteDOT(output.DOT(res.Value.path), res.Value.g); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

func cfgTask(run config.Run, scheme features.Scheme, force bool) pipeline.Task[builtGraph] {
	return func(u *record.Unit, f *record.Function) (builtGraph, error) {
		path := layoutFor(run, u.Path).CFG(scheme, f.Name)
		if err := skipExisting(force, path); err != nil {
			return builtGraph{}, err
		}
		return builtGraph{path: path, g: graph.BuildCFG(f, features.New(scheme, u.Table()))}, nil
	}
}

func callGraphTask(run config.Run, opts graph.CallGraphOptions, force bool) pipeline.Task[builtGraph] {
	kind := graph.KindCallGraph
	if opts.Hop == 1 {
		kind = graph.KindOneHop
	}
	return func(u *record.Unit, f *record.Function) (builtGraph, error) {
		path := layoutFor(run, u.Path).CallGraph(kind, f.Name)
		if err := skipExisting(force, path); err != nil {
			return builtGraph{}, err
		}
		g, err := graph.BuildCallGraph(f, u, opts)
		if err != nil {
			return builtGraph{}, err
		}
		return builtGraph{path: path, g: g}, nil
	}
}

func globalTask(run config.Run, opts graph.CallGraphOptions, force bool) pipeline.UnitTask[builtGraph] {
	return func(u *record.Unit) (builtGraph, error) {
		path := layoutFor(run, u.Path).GlobalCallGraph()
		if !force && output.Exists(path) {
			logger.Debug("global call graph exists", "path", path)
			return builtGraph{}, nil
		}
		return builtGraph{path: path, g: graph.BuildGlobalCallGraph(u, opts)}, nil
	}
}
