// Package graph builds attributed control-flow graphs and call graphs.
//
// Node ids are dense (0..n-1). CFG ids follow ascending block offset; call
// graph ids follow insertion order with the root first. Adjacency is indexed
// by node id and every edge weight is 1 or 2.
package graph

import (
	"bin2ml/internal/features"
	"bin2ml/internal/record"
)

// Kind names the graph flavour. It also appears in output file names.
type Kind string

const (
	KindCFG       Kind = "cfg"
	KindCallGraph Kind = "cg"
	KindOneHop    Kind = "onehopcg"
	KindGlobal    Kind = "globalcg"
)

// Edge is one directed edge in an adjacency list.
type Edge struct {
	To     int
	Weight int
}

// Node is a graph vertex. CFG nodes carry Features and Calls; call-graph
// nodes carry a Summary when metadata was requested.
type Node struct {
	ID           int
	Name         string
	Offset       uint64
	Instructions int
	Features     features.Vector
	Calls        []CallSite
	Summary      *record.Summary
}

// Graph is an immutable directed graph.
type Graph struct {
	Kind   Kind
	Name   string
	Scheme features.Scheme // zero for call graphs
	Entry  int
	Nodes  []Node
	Adj    [][]Edge
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int {
	n := 0
	for _, es := range g.Adj {
		n += len(es)
	}
	return n
}

// OutDegree returns the number of out-edges of id.
func (g *Graph) OutDegree(id int) int { return len(g.Adj[id]) }

// Successors returns the out-edges of id in adjacency order.
func (g *Graph) Successors(id int) []Edge { return g.Adj[id] }

// builder assembles name-keyed graphs (call graphs) with insertion-order ids
// and deduplicated edges.
type builder struct {
	g     *Graph
	ids   map[string]int
	edges map[[2]int]bool
}

func newBuilder(kind Kind, name string) *builder {
	return &builder{
		g:     &Graph{Kind: kind, Name: name},
		ids:   make(map[string]int),
		edges: make(map[[2]int]bool),
	}
}

func (b *builder) node(name string) int {
	if id, ok := b.ids[name]; ok {
		return id
	}
	id := len(b.g.Nodes)
	b.ids[name] = id
	b.g.Nodes = append(b.g.Nodes, Node{ID: id, Name: name})
	b.g.Adj = append(b.g.Adj, nil)
	return id
}

func (b *builder) has(name string) bool {
	_, ok := b.ids[name]
	return ok
}

func (b *builder) edge(from, to int) {
	key := [2]int{from, to}
	if b.edges[key] {
		return
	}
	b.edges[key] = true
	b.g.Adj[from] = append(b.g.Adj[from], Edge{To: to, Weight: callWeight})
}

// callWeight is the weight of every call-graph edge.
const callWeight = 1
