// Package walk generates seeded random walks over control-flow graphs.
package walk

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"bin2ml/internal/graph"
)

// Options controls walk generation.
type Options struct {
	Length   int    // maximum nodes per walk, start node included
	Count    int    // walks per graph
	Seed     uint64 // identical seed and graph give identical walks
	Start    int    // start node id; -1 = the entry block, which need not be node 0
	Pad      bool   // pad short walks up to Length
	PadValue int
}

var ErrBadOptions = errors.New("walk: bad options")

// Generate returns opts.Count walks over g. At each step the next node is
// drawn uniformly from the current node's out-edges, ignoring weights. A walk
// ends at a node without out-edges or when it reaches opts.Length nodes.
func Generate(g *graph.Graph, opts Options) ([][]int, error) {
	if opts.Length < 1 || opts.Count < 0 {
		return nil, fmt.Errorf("%w: length %d, count %d", ErrBadOptions, opts.Length, opts.Count)
	}
	if g.Len() == 0 || opts.Count == 0 {
		return nil, nil
	}
	start := opts.Start
	if start == -1 {
		start = g.Entry
	}
	if start < 0 || start >= g.Len() {
		return nil, fmt.Errorf("%w: start node %d outside 0..%d", ErrBadOptions, opts.Start, g.Len()-1)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	walks := make([][]int, 0, opts.Count)
	for range opts.Count {
		w := make([]int, 1, opts.Length)
		cur := start
		w[0] = cur
		for len(w) < opts.Length {
			succ := g.Successors(cur)
			if len(succ) == 0 {
				break
			}
			cur = succ[rng.IntN(len(succ))].To
			w = append(w, cur)
		}
		if opts.Pad {
			for len(w) < opts.Length {
				w = append(w, opts.PadValue)
			}
		}
		walks = append(walks, w)
	}
	return walks, nil
}

// DeriveSeed mixes a run seed with a (unit, function) key so each function
// gets its own stream regardless of which worker runs it. unit should be a
// stable name such as the layout stem, not a path as typed.
func DeriveSeed(base uint64, unit, function string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(unit))
	h.Write([]byte{0})
	h.Write([]byte(function))
	return base ^ h.Sum64()
}
