package passes

import (
	"errors"
	"fmt"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/graph"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
)

// BuildDependencyGraph runs pass 4 (§4.8): builds the block-level
// dependency graph (one node per block, one edge per normalized edge) and
// validates every edge's block indices are in range. It threads forward
// the already-typed patch, time model, and registry definitions for later
// passes — this function returns only the graph, since those other
// artifacts are already held by the caller.
func BuildDependencyGraph(p *patch.NormalizedPatch, reg *registry.Registry) (*graph.Graph, error) {
	for _, blk := range p.Blocks {
		if _, err := reg.Require(blk.Type); err != nil {
			return nil, err
		}
	}

	g, err := graph.Build(p)
	if err != nil {
		var rangeErr *graph.OutOfRangeError
		if errors.As(err, &rangeErr) {
			return nil, diagnostics.AtEdge(
				diagnostics.BlockMissing,
				fmt.Sprintf("edge %s references a block index out of range", rangeErr.Edge.ID),
				rangeErr.Edge.ID,
			)
		}
		return nil, err
	}
	return g, nil
}
