package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"bin2ml/internal/record"
)

// CallGraphOptions controls call-graph construction.
type CallGraphOptions struct {
	Hop            int  // 0: function and direct callees; 1: also the callees' callees
	WithCallers    bool // add the root's callers with caller->root edges
	IncludeUnknown bool // keep unresolved "unk.*" callees
	Metadata       bool // attach record.Summary to every node
}

func (o CallGraphOptions) keep(name string) bool {
	return name != "" && (o.IncludeUnknown || !strings.HasPrefix(name, "unk."))
}

// BuildCallGraph builds the local (hop 0) or one-hop (hop 1) call graph
// rooted at f. The root is node 0; further nodes follow first-call order.
// Repeated call sites to one callee produce a single edge. u supplies the
// callees of callees and node metadata; it may be nil for a plain hop-0 graph.
func BuildCallGraph(f *record.Function, u *record.Unit, opts CallGraphOptions) (*Graph, error) {
	kind := KindCallGraph
	switch opts.Hop {
	case 0:
	case 1:
		kind = KindOneHop
	default:
		return nil, fmt.Errorf("graph: hop %d not supported", opts.Hop)
	}

	b := newBuilder(kind, f.Name)
	root := b.node(f.Name)

	var direct []string
	seen := make(map[string]bool)
	for _, callee := range f.Callees {
		if !opts.keep(callee) {
			continue
		}
		b.edge(root, b.node(callee))
		if !seen[callee] {
			seen[callee] = true
			direct = append(direct, callee)
		}
	}

	if opts.WithCallers {
		for _, caller := range f.Callers {
			b.edge(b.node(caller), root)
		}
	}

	if opts.Hop == 1 && u != nil {
		for _, callee := range direct {
			if callee == f.Name {
				continue
			}
			from := b.node(callee)
			for _, next := range u.Callees(callee) {
				if opts.keep(next) {
					b.edge(from, b.node(next))
				}
			}
		}
	}

	if opts.Metadata && u != nil {
		attachSummaries(b.g, u)
	}
	return b.g, nil
}

// BuildGlobalCallGraph builds the call graph of every function in u.
// Nodes without any edge are removed and the remaining ids compacted in
// insertion order.
func BuildGlobalCallGraph(u *record.Unit, opts CallGraphOptions) *Graph {
	b := newBuilder(KindGlobal, filepath.Base(u.Path))
	for i := 0; i < u.Len(); i++ {
		name := u.Name(i)
		from := b.node(name)
		for _, callee := range u.Callees(name) {
			if opts.keep(callee) {
				b.edge(from, b.node(callee))
			}
		}
	}
	g := removeOrphans(b.g)
	if opts.Metadata {
		attachSummaries(g, u)
	}
	return g
}

func attachSummaries(g *Graph, u *record.Unit) {
	for i := range g.Nodes {
		s, _ := u.Summary(g.Nodes[i].Name)
		g.Nodes[i].Summary = &s
	}
}

func removeOrphans(g *Graph) *Graph {
	indeg := make([]int, len(g.Nodes))
	for _, es := range g.Adj {
		for _, e := range es {
			indeg[e.To]++
		}
	}

	remap := make([]int, len(g.Nodes))
	out := &Graph{Kind: g.Kind, Name: g.Name}
	for i, n := range g.Nodes {
		if len(g.Adj[i]) == 0 && indeg[i] == 0 {
			remap[i] = -1
			continue
		}
		remap[i] = len(out.Nodes)
		n.ID = remap[i]
		out.Nodes = append(out.Nodes, n)
	}
	out.Adj = make([][]Edge, len(out.Nodes))
	for i, es := range g.Adj {
		if remap[i] < 0 {
			continue
		}
		for _, e := range es {
			out.Adj[remap[i]] = append(out.Adj[remap[i]], Edge{To: remap[e.To], Weight: e.Weight})
		}
	}
	return out
}
