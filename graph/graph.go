// Package graph implements the block-level dependency graph and an
// iterative strongly-connected-component algorithm over it (§4.8, §4.9,
// §9). References are BlockIndex, the arena-and-index pattern used
// throughout the compiler: every cross-pass reference is an integer
// handle into a table owned by the compile, never a pointer graph (§9).
package graph

import "github.com/sarchlab/patchc/patch"

// Graph is an adjacency list over dense BlockIndex nodes, one entry per
// normalized edge (§4.8).
type Graph struct {
	nodeCount int
	adj       [][]patch.BlockIndex
}

// New creates a graph with nodeCount nodes and no edges.
func New(nodeCount int) *Graph {
	return &Graph{nodeCount: nodeCount, adj: make([][]patch.BlockIndex, nodeCount)}
}

// AddEdge records a dependency from -> to (from feeds to).
func (g *Graph) AddEdge(from, to patch.BlockIndex) {
	g.adj[from] = append(g.adj[from], to)
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return g.nodeCount }

// Successors returns every node that n has an edge to.
func (g *Graph) Successors(n patch.BlockIndex) []patch.BlockIndex { return g.adj[n] }

// Build constructs a dependency graph from a normalized patch: one
// BlockEval node per block, one edge per normalized edge (§4.8). It
// validates that every edge's block indices are in range.
func Build(p *patch.NormalizedPatch) (*Graph, error) {
	g := New(len(p.Blocks))
	for _, e := range p.Edges {
		if int(e.FromBlock) < 0 || int(e.FromBlock) >= len(p.Blocks) {
			return nil, &OutOfRangeError{Edge: e, Field: "fromBlock"}
		}
		if int(e.ToBlock) < 0 || int(e.ToBlock) >= len(p.Blocks) {
			return nil, &OutOfRangeError{Edge: e, Field: "toBlock"}
		}
		g.AddEdge(e.FromBlock, e.ToBlock)
	}
	return g, nil
}

// OutOfRangeError reports an edge referencing a block index outside the
// patch's dense block list.
type OutOfRangeError struct {
	Edge  patch.Edge
	Field string
}

func (e *OutOfRangeError) Error() string {
	return "graph: edge " + e.Edge.ID + " has out-of-range " + e.Field
}
