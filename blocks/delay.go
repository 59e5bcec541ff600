package blocks

import (
	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/registry"
)

// UnitDelayType is the block type for the stateful one-frame delay (§8's
// S3): the stateful boundary that makes a combinatorial cycle legal.
const UnitDelayType = "UnitDelay"

// unitDelayDef declares the stateful one-frame delay. Its input port is
// named "in" and its output "out", matching spec.md's S3 fixture edges
// directly. The initial value comes from the "initial" config param,
// defaulting to 0.0.
func unitDelayDef() *registry.BlockDefinition {
	return &registry.BlockDefinition{
		Type:       UnitDelayType,
		Label:      "Unit Delay",
		Category:   "state",
		IsStateful: true,
		InputPorts: []registry.PortDecl{
			{Name: "in", AllowedPayloads: standardNumericPayloadNames(), Unit: "scalar", ExposedAsPort: true},
		},
		OutputPorts: []registry.PortDecl{
			{Name: "out", AllowedPayloads: standardNumericPayloadNames(), Unit: "scalar"},
		},
		Lower:            unitDelayLower(),
		LowerOutputsOnly: unitDelayLowerOutputsOnly(),
	}
}

func initialValue(ctx *ir.LowerCtx) interface{} {
	if v, ok := ctx.Config["initial"]; ok {
		return v
	}
	return 0.0
}

// unitDelayLowerOutputsOnly is phase 1 of non-trivial SCC lowering
// (§4.10): with no inputs bound yet, the delay can still publish its
// output by reading its state slot's last-frame value.
func unitDelayLowerOutputsOnly() ir.LowerOutputsOnlyFn {
	return func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
		t := ctx.OutputTypes["out"]
		slot := ctx.Builder.AllocStateSlot(ctx.BlockID, initialValue(ctx), t)
		id := ctx.Builder.StateRead(slot, t)
		ref := ctx.Builder.AllocSlot(id, t, 0)
		return ir.LowerResult{OutputsByID: map[string]ir.ValueRefExpr{"out": ref}}, nil
	}
}

// unitDelayLower is both the trivial-SCC path and phase 2 of the
// stateful-cycle protocol: it queues the end-of-frame write from the
// resolved input and reuses whatever output ref is already published
// (phase 1's state-read, or a freshly allocated one outside a cycle).
func unitDelayLower() ir.LowerFn {
	return func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
		t := ctx.OutputTypes["out"]
		slot := ctx.Builder.AllocStateSlot(ctx.BlockID, initialValue(ctx), t)

		in, ok := ctx.Input("in")
		if !ok {
			return ir.LowerResult{}, diagnostics.At(
				diagnostics.MissingInput,
				"required input \"in\" on block "+ctx.BlockID+" has no writer",
				ctx.BlockID, "in",
			)
		}
		ctx.Builder.StepStateWrite(slot, in.ID)

		if existing, ok := ctx.ExistingOutputs["out"]; ok {
			return ir.LowerResult{OutputsByID: map[string]ir.ValueRefExpr{"out": existing}}, nil
		}

		id := ctx.Builder.StateRead(slot, t)
		ref := ctx.Builder.AllocSlot(id, t, 0)
		return ir.LowerResult{OutputsByID: map[string]ir.ValueRefExpr{"out": ref}}, nil
	}
}
