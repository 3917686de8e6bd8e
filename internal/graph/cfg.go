package graph

import (
	"fmt"

	"bin2ml/internal/features"
	"bin2ml/internal/record"
)

// BuildCFG builds the attributed control-flow graph of f. Node i is block i;
// edges mirror the validated successors (fallthrough weight 1 before jump
// weight 2). Offspring is injected after the content features are extracted.
// A function with zero blocks yields one node and no edges.
func BuildCFG(f *record.Function, ex *features.Extractor) *Graph {
	g := &Graph{Kind: KindCFG, Name: f.Name, Scheme: ex.Scheme(), Entry: f.Entry}
	if len(f.Blocks) == 0 {
		g.Nodes = []Node{{
			ID:       0,
			Name:     fmt.Sprintf("0x%x", f.Offset),
			Offset:   f.Offset,
			Features: features.Zero(ex.Scheme()),
		}}
		g.Adj = [][]Edge{nil}
		return g
	}

	sites := CallSites(f, ex.Table())
	g.Nodes = make([]Node, len(f.Blocks))
	g.Adj = make([][]Edge, len(f.Blocks))
	for i := range f.Blocks {
		b := &f.Blocks[i]
		adj := make([]Edge, 0, len(b.Succs))
		for _, s := range b.Succs {
			adj = append(adj, Edge{To: s.Block, Weight: s.Kind.Weight()})
		}
		g.Adj[b.ID] = adj
		g.Nodes[b.ID] = Node{
			ID:           b.ID,
			Name:         fmt.Sprintf("0x%x", b.Offset),
			Offset:       b.Offset,
			Instructions: len(b.Instructions),
			Features:     ex.Extract(b).WithOffspring(len(adj)),
			Calls:        sites[b.ID],
		}
	}
	return g
}
