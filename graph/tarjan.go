package graph

import "github.com/sarchlab/patchc/patch"

// SCC is one strongly-connected component, in the order Tarjan's
// algorithm discovers it (reverse topological — successors of a
// component have already been discovered, §4.9, §9).
type SCC struct {
	Nodes []patch.BlockIndex

	// HasStateBoundary reports whether the component is non-trivial (more
	// than one node, or a single node with a self-loop): a non-trivial
	// component needs at least one stateful block among its nodes to be
	// legal; a trivial one needs nothing (§4.9). Despite the name this is
	// a requirement flag, not a fulfillment check — callers must cross
	// reference block definitions to confirm the requirement is met.
	HasStateBoundary bool
}

// frame is one explicit call frame of the recursive Tarjan walk,
// reified so the traversal can run iteratively instead of recursing
// per node (§9's design note: "apply Tarjan iteratively to avoid deep
// recursion on large patches").
type frame struct {
	node     patch.BlockIndex
	childIdx int
	succ     []patch.BlockIndex
}

// tarjan holds the algorithm's working state across the iterative walk.
type tarjan struct {
	g        *Graph
	index    []int
	lowlink  []int
	onStack  []bool
	stack    []patch.BlockIndex
	counter  int
	sccs     []SCC
}

const unvisited = -1

// SCCs computes the strongly-connected components of g in reverse
// topological order, iteratively (§4.9, §9).
func SCCs(g *Graph) []SCC {
	t := &tarjan{
		g:       g,
		index:   make([]int, g.NodeCount()),
		lowlink: make([]int, g.NodeCount()),
		onStack: make([]bool, g.NodeCount()),
	}
	for i := range t.index {
		t.index[i] = unvisited
	}

	for n := 0; n < g.NodeCount(); n++ {
		node := patch.BlockIndex(n)
		if t.index[node] == unvisited {
			t.strongConnect(node)
		}
	}
	return t.sccs
}

// strongConnect runs Tarjan's algorithm from root using an explicit
// stack of frames in place of native recursion.
func (t *tarjan) strongConnect(root patch.BlockIndex) {
	var frames []*frame
	t.visit(root)
	frames = append(frames, &frame{node: root, succ: t.g.Successors(root)})

	for len(frames) > 0 {
		f := frames[len(frames)-1]

		if f.childIdx < len(f.succ) {
			w := f.succ[f.childIdx]
			f.childIdx++

			if t.index[w] == unvisited {
				t.visit(w)
				frames = append(frames, &frame{node: w, succ: t.g.Successors(w)})
				continue
			} else if t.onStack[w] {
				if t.index[w] < t.lowlink[f.node] {
					t.lowlink[f.node] = t.index[w]
				}
			}
			continue
		}

		// All children processed: propagate lowlink to the parent
		// frame (if any), then pop.
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			parent := frames[len(frames)-1]
			if t.lowlink[f.node] < t.lowlink[parent.node] {
				t.lowlink[parent.node] = t.lowlink[f.node]
			}
		}

		if t.lowlink[f.node] == t.index[f.node] {
			t.popComponent(f.node)
		}
	}
}

func (t *tarjan) visit(n patch.BlockIndex) {
	t.index[n] = t.counter
	t.lowlink[n] = t.counter
	t.counter++
	t.stack = append(t.stack, n)
	t.onStack[n] = true
}

func (t *tarjan) popComponent(root patch.BlockIndex) {
	var nodes []patch.BlockIndex
	for {
		n := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[n] = false
		nodes = append(nodes, n)
		if n == root {
			break
		}
	}

	scc := SCC{Nodes: nodes}
	if len(nodes) > 1 {
		scc.HasStateBoundary = true
	} else {
		for _, w := range t.g.Successors(nodes[0]) {
			if w == nodes[0] {
				scc.HasStateBoundary = true
				break
			}
		}
	}
	t.sccs = append(t.sccs, scc)
}
