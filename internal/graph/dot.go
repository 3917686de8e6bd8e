package graph

import (
	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"
)

// LatticeCFG maps a CFG onto lattice types. Fallthrough edges are the "F"
// branch and jump edges the "T" branch; call sites become block call labels.
func LatticeCFG(g *Graph) *lattice.CFGGraph {
	fn := &lattice.FuncCFG{Name: g.Name}
	start := 0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		lb := &lattice.BasicBlock{
			ID:    n.ID,
			Start: start,
			End:   start + n.Instructions,
			Term:  len(g.Adj[i]) == 0,
		}
		start = lb.End

		for _, e := range g.Adj[i] {
			cond := ""
			if len(g.Adj[i]) > 1 {
				cond = "F"
				if e.Weight == 2 {
					cond = "T"
				}
			}
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: e.To, Cond: cond})
		}
		for _, cs := range n.Calls {
			lb.Calls = append(lb.Calls, lattice.CallSite{Offset: cs.Index, Callee: cs.Target})
		}
		fn.Blocks = append(fn.Blocks, lb)
	}
	return &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{fn}}
}

// LatticeCallGraph maps a call graph onto a lattice.Graph.
func LatticeCallGraph(g *Graph) *lattice.Graph {
	lg := &lattice.Graph{}
	for _, n := range g.Nodes {
		lg.Nodes = append(lg.Nodes, n.Name)
	}
	for i, es := range g.Adj {
		for _, e := range es {
			lg.Edges = append(lg.Edges, lattice.Edge{
				Caller: g.Nodes[i].Name,
				Callee: g.Nodes[e.To].Name,
			})
		}
	}
	lg.Dedup()
	return lg
}

// DOT renders g in Graphviz format.
func DOT(g *Graph) string {
	if g.Kind == KindCFG {
		return render.DOTCFG(LatticeCFG(g), g.Name)
	}
	return render.DOT(LatticeCallGraph(g), g.Name)
}
