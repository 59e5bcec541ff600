package passes

import (
	"fmt"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
)

// ValidateTypeGraph runs pass 2 (§4.6): checks exact type compatibility of
// every edge's already-resolved types, validates payload permission and
// explicit payload combinations per block, and aggregates every mismatch
// into one error.
func ValidateTypeGraph(p *patch.NormalizedPatch, reg *registry.Registry, table TypeTable) error {
	var errs []*diagnostics.CompileError

	for _, e := range p.Edges {
		fromType, fromOK := table.Lookup(e.FromBlock, e.FromPort, DirectionOut)
		toType, toOK := table.Lookup(e.ToBlock, e.ToPort, DirectionIn)
		if !fromOK || !toOK {
			continue
		}
		if !fromType.ExactCompatible(toType) {
			errs = append(errs, diagnostics.AtEdge(
				diagnostics.PortTypeMismatch,
				fmt.Sprintf("edge %s: %s is not exactly compatible with %s", e.ID, fromType, toType),
				e.ID,
			))
		}
	}

	for i, b := range p.Blocks {
		idx := patch.BlockIndex(i)
		def, err := reg.Require(b.Type)
		if err != nil {
			continue
		}

		for _, port := range def.InputPorts {
			if ct, ok := table.Lookup(idx, port.Name, DirectionIn); ok {
				if err := checkPayloadAllowed(port.AllowedPayloads, ct.Payload.Kind().String(), b.ID, port.Name); err != nil {
					errs = append(errs, err)
				}
			}
		}
		for _, port := range def.OutputPorts {
			if ct, ok := table.Lookup(idx, port.Name, DirectionOut); ok {
				if err := checkPayloadAllowed(port.AllowedPayloads, ct.Payload.Kind().String(), b.ID, port.Name); err != nil {
					errs = append(errs, err)
				}
			}
		}

		if len(def.Payload.Combinations) > 0 {
			inputs := make([]string, len(def.InputPorts))
			for j, port := range def.InputPorts {
				ct, ok := table.Lookup(idx, port.Name, DirectionIn)
				if !ok {
					continue
				}
				inputs[j] = ct.Payload.Kind().String()
			}
			if _, found, err := reg.FindPayloadCombination(b.Type, inputs); err == nil && !found {
				errs = append(errs, diagnostics.At(
					diagnostics.PayloadCombinationNotAllowed,
					fmt.Sprintf("block %s: input payload combination %v is not in its allowed combinations table", b.ID, inputs),
					b.ID, "",
				))
			}
		}
	}

	return diagnostics.NewAggregate(errs)
}

func checkPayloadAllowed(allowed []string, actual string, blockID, port string) *diagnostics.CompileError {
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if a == actual {
			return nil
		}
	}
	return diagnostics.At(
		diagnostics.PayloadNotAllowed,
		fmt.Sprintf("port %q on block %s does not permit payload %q", port, blockID, actual),
		blockID, port,
	)
}
