package passes

import (
	"fmt"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/graph"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
)

// ValidateSCCs runs pass 5 (§4.9): computes the dependency graph's
// strongly-connected components, reverses Tarjan's natural
// reverse-topological emission order so dependencies precede dependents
// (§5), and reports any non-trivial SCC with no stateful block as
// IllegalCycle. The returned slice is in topological order, ready for
// pass 6.
func ValidateSCCs(p *patch.NormalizedPatch, reg *registry.Registry, g *graph.Graph) ([]graph.SCC, error) {
	sccs := graph.SCCs(g)

	// Reverse once: Tarjan's natural order is reverse-topological.
	for i, j := 0, len(sccs)-1; i < j; i, j = i+1, j-1 {
		sccs[i], sccs[j] = sccs[j], sccs[i]
	}

	var errs []*diagnostics.CompileError
	for _, scc := range sccs {
		if !scc.HasStateBoundary {
			continue
		}
		if !hasStatefulBlock(p, reg, scc.Nodes) {
			errs = append(errs, diagnostics.New(
				diagnostics.IllegalCycle,
				fmt.Sprintf("cycle without a stateful boundary: blocks %v", scc.Nodes),
			))
		}
	}

	return sccs, diagnostics.NewAggregate(errs)
}

func hasStatefulBlock(p *patch.NormalizedPatch, reg *registry.Registry, nodes []patch.BlockIndex) bool {
	for _, n := range nodes {
		blk, ok := p.BlockAt(n)
		if !ok {
			continue
		}
		def, err := reg.Require(blk.Type)
		if err != nil {
			continue
		}
		if def.IsStateful {
			return true
		}
	}
	return false
}
