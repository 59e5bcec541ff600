// Package schedule implements render reachability and step-list
// construction (§4.12): the compiler's final pass, run after pass 6 has
// lowered every block into the IR builder's tables.
package schedule

import (
	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
)

// Reachable runs a backward breadth-first traversal from every block with
// capability render: a block is reachable iff it transitively feeds a
// render block (§4.12). Blocks outside the returned set contribute no
// schedule steps and their errors are filtered from the final report.
func Reachable(p *patch.NormalizedPatch, reg *registry.Registry) (map[patch.BlockIndex]bool, error) {
	var errs []*diagnostics.CompileError
	reachable := make(map[patch.BlockIndex]bool)
	var frontier []patch.BlockIndex

	for i, blk := range p.Blocks {
		def, err := reg.Require(blk.Type)
		if err != nil {
			errs = append(errs, err.(*diagnostics.CompileError))
			continue
		}
		if def.Capability != registry.CapabilityRender {
			continue
		}
		idx := patch.BlockIndex(i)
		reachable[idx] = true
		frontier = append(frontier, idx)
	}
	if len(errs) > 0 {
		return nil, diagnostics.NewAggregate(errs)
	}

	for len(frontier) > 0 {
		n := frontier[0]
		frontier = frontier[1:]
		for _, e := range p.Edges {
			if e.ToBlock != n || reachable[e.FromBlock] {
				continue
			}
			reachable[e.FromBlock] = true
			frontier = append(frontier, e.FromBlock)
		}
	}

	return reachable, nil
}
