// Package graphio builds the input graphs the layout engine consumes:
// generated demo/test graphs and edge lists read from JSON.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"
)

// NewPreferentialAttachment returns a Barabási-Albert graph with n
// nodes, each new node attaching to d existing ones preferentially by
// degree. Used by the demo mode, the CLI, and the freeze end-state
// tests.
func NewPreferentialAttachment(n, d int, seed uint64) (*simple.UndirectedGraph, error) {
	if n <= 0 || d <= 0 || d >= n {
		return nil, fmt.Errorf("graphio: invalid preferential attachment parameters n=%d d=%d", n, d)
	}
	g := simple.NewUndirectedGraph()
	src := rand.New(rand.NewSource(int64(seed)))
	if err := gen.PreferentialAttachment(g, n, d, src); err != nil {
		return nil, fmt.Errorf("graphio: preferential attachment: %w", err)
	}
	return g, nil
}

// NewPath returns a path graph 0-1-2-...-(n-1).
func NewPath(n int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i+1 < n; i++ {
		g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+1)))
	}
	return g
}

// edgeList is the JSON shape accepted by ReadEdgeList:
//
//	{"nodes": 5, "edges": [[0,1],[1,2]]}
//
// The node count is optional; when present it adds isolated nodes not
// referenced by any edge.
type edgeList struct {
	Nodes int      `json:"nodes"`
	Edges [][2]int `json:"edges"`
}

// ReadEdgeList decodes a JSON edge list into an undirected graph.
func ReadEdgeList(r io.Reader) (*simple.UndirectedGraph, error) {
	var el edgeList
	if err := json.NewDecoder(r).Decode(&el); err != nil {
		return nil, fmt.Errorf("graphio: decode edge list: %w", err)
	}
	g := simple.NewUndirectedGraph()
	for i := 0; i < el.Nodes; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range el.Edges {
		if e[0] == e[1] {
			return nil, fmt.Errorf("graphio: self-edge on node %d not supported", e[0])
		}
		if e[0] < 0 || e[1] < 0 {
			return nil, fmt.Errorf("graphio: negative node id in edge [%d,%d]", e[0], e[1])
		}
		g.SetEdge(g.NewEdge(simple.Node(e[0]), simple.Node(e[1])))
	}
	return g, nil
}
