package blocks

import (
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/registry"
)

// RenderType is the block type for the built-in render sink: the leaf
// every render-reachability traversal (§4.12) starts from.
const RenderType = "Render"

// renderDef declares a render sink with the four canonical visual
// channels. pos is a scalar-world port (one world-space transform feed
// can never sensibly have two writers, §4.11), while color and shape fall
// back to last-writer-wins when layered; size is a plain scalar. Every
// port but pos is Optional with a single fixed payload, so leaving one
// unconnected in a patch never leaves a payload variable behind for pass 1
// to trip over — only pos needs forward/backward inference, and a patch
// author always wires a render sink's position. None of the four publish
// an output: the schedule's renderAssemble step reads their resolved input
// refs straight out of pass 6's BlockInputs rather than anything this
// block lowers to.
func renderDef() *registry.BlockDefinition {
	return &registry.BlockDefinition{
		Type:       RenderType,
		Label:      "Render",
		Category:   "render",
		Capability: registry.CapabilityRender,
		InputPorts: []registry.PortDecl{
			{Name: "pos", AllowedPayloads: []string{"vec2", "vec3"}, Unit: "world3", ExposedAsPort: true, ScalarWorld: true},
			{Name: "color", AllowedPayloads: []string{"color"}, Unit: "scalar", ExposedAsPort: true, Optional: true,
				CombinePolicy: registry.CombinePolicy{When: registry.CombineWhenMulti, Mode: registry.CombineLast}},
			{Name: "size", AllowedPayloads: []string{"float"}, Unit: "scalar", ExposedAsPort: true, Optional: true},
			{Name: "shape", AllowedPayloads: []string{"shape"}, Unit: "scalar", ExposedAsPort: true, Optional: true,
				CombinePolicy: registry.CombinePolicy{When: registry.CombineWhenMulti, Mode: registry.CombineLast}},
		},
		Lower: func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
			return ir.LowerResult{}, nil
		},
	}
}
