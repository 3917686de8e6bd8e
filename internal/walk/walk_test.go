package walk

import (
	"testing"

	"bin2ml/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopGraph: 0->{1,2} 1->{0,3} 2->3 3 terminal.
func loopGraph() *graph.Graph {
	g := &graph.Graph{Kind: graph.KindCFG}
	for i := range 4 {
		g.Nodes = append(g.Nodes, graph.Node{ID: i})
	}
	g.Adj = [][]graph.Edge{
		{{To: 1, Weight: 1}, {To: 2, Weight: 2}},
		{{To: 0, Weight: 1}, {To: 3, Weight: 2}},
		{{To: 3, Weight: 1}},
		nil,
	}
	return g
}

func TestGenerateDeterministic(t *testing.T) {
	opts := Options{Length: 12, Count: 50, Seed: 42}
	a, err := Generate(loopGraph(), opts)
	require.NoError(t, err)
	b, err := Generate(loopGraph(), opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 50)
}

func TestGenerateProperties(t *testing.T) {
	g := loopGraph()
	walks, err := Generate(g, Options{Length: 6, Count: 200, Seed: 7})
	require.NoError(t, err)

	for _, w := range walks {
		require.NotEmpty(t, w)
		assert.LessOrEqual(t, len(w), 6)
		assert.Equal(t, 0, w[0])
		for i := 0; i < len(w)-1; i++ {
			assert.NotZero(t, g.OutDegree(w[i]), "terminal node only as last element")
			found := false
			for _, e := range g.Successors(w[i]) {
				if e.To == w[i+1] {
					found = true
				}
			}
			assert.True(t, found, "step %d->%d is not an edge", w[i], w[i+1])
		}
		if len(w) < 6 {
			assert.Equal(t, 3, w[len(w)-1], "early stop only at the terminal node")
		}
	}
}

func TestGeneratePadAndStart(t *testing.T) {
	walks, err := Generate(loopGraph(), Options{Length: 5, Count: 3, Seed: 1, Start: 2, Pad: true, PadValue: -1})
	require.NoError(t, err)
	for _, w := range walks {
		assert.Equal(t, []int{2, 3, -1, -1, -1}, w)
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	single := &graph.Graph{Nodes: []graph.Node{{ID: 0}}, Adj: [][]graph.Edge{nil}}
	walks, err := Generate(single, Options{Length: 4, Count: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {0}}, walks)

	walks, err = Generate(&graph.Graph{}, Options{Length: 4, Count: 2})
	require.NoError(t, err)
	assert.Nil(t, walks)

	_, err = Generate(single, Options{Length: 0, Count: 1})
	assert.ErrorIs(t, err, ErrBadOptions)
	_, err = Generate(single, Options{Length: 3, Count: 1, Start: 5})
	assert.ErrorIs(t, err, ErrBadOptions)
	_, err = Generate(single, Options{Length: 3, Count: 1, Start: -2})
	assert.ErrorIs(t, err, ErrBadOptions)
}

func TestGenerateFromEntry(t *testing.T) {
	g := loopGraph()
	g.Entry = 2
	walks, err := Generate(g, Options{Length: 4, Count: 1, Start: -1})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 3}}, walks)
}

func TestDeriveSeed(t *testing.T) {
	a := DeriveSeed(1, "bin/a.json", "main")
	assert.Equal(t, a, DeriveSeed(1, "bin/a.json", "main"))
	assert.NotEqual(t, a, DeriveSeed(1, "bin/a.json", "mai"))
	assert.NotEqual(t, a, DeriveSeed(2, "bin/a.json", "main"))
}
