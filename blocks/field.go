package blocks

import (
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/registry"
)

// ArrayType is the block type for the built-in field/array source. Its
// type string doubles as the instance domain type pass 1's seedPortType
// assigns a fieldOnly block's cardinality-many output
// (types.Instance{DomainType: b.Type, InstanceID: b.ID}), so every Array
// instance in a patch is automatically distinguished by block id.
const ArrayType = "Array"

// arrayDef declares a many-cardinality per-element source: a field whose
// lanes are populated from one of the pack's field intrinsics
// (normalizedIndex, index, randomId), selected by the "source" config
// param and defaulting to normalizedIndex.
func arrayDef() *registry.BlockDefinition {
	return &registry.BlockDefinition{
		Type:     ArrayType,
		Label:    "Array",
		Category: "source",
		Cardinality: registry.CardinalityMetadata{
			Mode: registry.CardinalityFieldOnly,
		},
		OutputPorts: []registry.PortDecl{
			{Name: "out", AllowedPayloads: standardNumericPayloadNames(), Unit: "scalar"},
		},
		Lower: func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
			t := ctx.OutputTypes["out"]
			id := ctx.Builder.FieldIntrinsic(arraySourceIntrinsic(ctx), t)
			ref := ctx.Builder.AllocSlot(id, t, 0)
			return ir.LowerResult{OutputsByID: map[string]ir.ValueRefExpr{"out": ref}}, nil
		},
	}
}

func arraySourceIntrinsic(ctx *ir.LowerCtx) string {
	switch v, _ := ctx.Config["source"].(string); v {
	case ir.IntrinsicIndex:
		return ir.IntrinsicIndex
	case ir.IntrinsicRandomId:
		return ir.IntrinsicRandomId
	default:
		return ir.IntrinsicNormalizedIndex
	}
}
