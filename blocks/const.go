package blocks

import (
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/registry"
)

// ConstType is the block type string for a literal-value source.
const ConstType = "Const"

// constDef declares a payload-generic literal source (§4.4's S6: a
// Const left payload-unresolved until forward/backward inference pins
// it to a concrete payload from the target it feeds). Its value comes
// from the "value" config param, written by the patch author.
func constDef() *registry.BlockDefinition {
	return &registry.BlockDefinition{
		Type:     ConstType,
		Label:    "Const",
		Category: "source",
		OutputPorts: []registry.PortDecl{
			{Name: "out", AllowedPayloads: standardNumericPayloadNames(), Unit: "scalar"},
		},
		Lower: func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
			t := ctx.OutputTypes["out"]
			value := ctx.Config["value"]
			id := ctx.Builder.Constant(value, t)
			ref := ctx.Builder.AllocSlot(id, t, 0)
			return ir.LowerResult{OutputsByID: map[string]ir.ValueRefExpr{"out": ref}}, nil
		},
	}
}
