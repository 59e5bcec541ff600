package blocks_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchc/blocks"
	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/passes"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

func newBuiltinRegistry() *registry.Registry {
	reg := registry.New()
	blocks.Register(reg)
	return reg
}

// lowerPatch runs pass0 through pass6 (§4.4-§4.10) over p using reg,
// returning the IR builder and the block-indexed output map for
// assertions. Like compiler.Compile, it stops after type inference only on
// a finding that is an error under diagnostics.DefaultFlagTable(), so a
// warn-severity ConflictingUnits does not fail it. Callers that expect a
// pass 5 failure check the returned error directly instead.
func lowerPatch(p *patch.NormalizedPatch, reg *registry.Registry) (*ir.Builder, passes.BlockOutputs, error) {
	if err := passes.ResolvePayloads(p, reg); err != nil {
		return nil, nil, err
	}
	table, err := passes.InferTypes(p, reg)
	if agg, ok := err.(*diagnostics.Aggregate); ok {
		flags := diagnostics.DefaultFlagTable()
		for _, f := range agg.Errors {
			if flags.Severity(f.Code) == diagnostics.SeverityError {
				return nil, nil, err
			}
		}
	} else if err != nil {
		return nil, nil, err
	}
	if err := passes.ValidateTypeGraph(p, reg, table); err != nil {
		return nil, nil, err
	}
	b := ir.NewBuilder()
	if _, _, _, err := passes.ResolveTimeTopology(p, reg, b); err != nil {
		return nil, nil, err
	}
	g, err := passes.BuildDependencyGraph(p, reg)
	if err != nil {
		return nil, nil, err
	}
	sccs, err := passes.ValidateSCCs(p, reg, g)
	if err != nil {
		return nil, nil, err
	}
	outputs, _, _, err := passes.LowerBlocks(p, reg, b, table, sccs)
	return b, outputs, err
}

var _ = Describe("Register", func() {
	It("registers every built-in block type with its documented capability/statefulness", func() {
		reg := newBuiltinRegistry()

		timeRoot, err := reg.Require(blocks.TimeRootType)
		Expect(err).NotTo(HaveOccurred())
		Expect(timeRoot.Capability).To(Equal(registry.CapabilityTime))

		add, err := reg.Require("Add")
		Expect(err).NotTo(HaveOccurred())
		Expect(add.IsStateful).To(BeFalse())
		Expect(add.InputPorts).To(HaveLen(2))

		delay, err := reg.Require(blocks.UnitDelayType)
		Expect(err).NotTo(HaveOccurred())
		Expect(delay.IsStateful).To(BeTrue())

		arr, err := reg.Require(blocks.ArrayType)
		Expect(err).NotTo(HaveOccurred())
		Expect(arr.Cardinality.Mode).To(Equal(registry.CardinalityFieldOnly))

		render, err := reg.Require(blocks.RenderType)
		Expect(err).NotTo(HaveOccurred())
		Expect(render.Capability).To(Equal(registry.CapabilityRender))
		_, hasPos := render.InputPort("pos")
		Expect(hasPos).To(BeTrue())
	})

	It("is idempotent: calling it twice leaves exactly the same block count", func() {
		reg := registry.New()
		blocks.Register(reg)
		first := reg.Count()
		blocks.Register(reg)
		Expect(reg.Count()).To(Equal(first))
	})
})

var _ = Describe("end-to-end scenarios (spec.md §8)", func() {
	It("S2: lowers two Consts through Add into a single Add-opcode kernelZip", func() {
		reg := newBuiltinRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "t0", Type: blocks.TimeRootType},
				{ID: "c1", Type: "Const", Params: map[string]interface{}{"value": 1.0, "payloadType": "float"}},
				{ID: "c2", Type: "Const", Params: map[string]interface{}{"value": 2.0, "payloadType": "float"}},
				{ID: "add", Type: "Add"},
			},
			Edges: []patch.Edge{
				{FromBlock: 1, FromPort: "out", ToBlock: 3, ToPort: "a", ID: "e0"},
				{FromBlock: 2, FromPort: "out", ToBlock: 3, ToPort: "b", ID: "e1"},
			},
		}
		p.Normalize()

		b, outputs, err := lowerPatch(p, reg)
		Expect(err).NotTo(HaveOccurred())

		addOut := b.Expr(outputs[3]["out"].ID)
		Expect(addOut.Kind).To(Equal(ir.ExprKernelZip))
		Expect(addOut.Kernel.IsOpcode()).To(BeTrue())
		Expect(addOut.Kernel.Opcode()).To(Equal(ir.OpAdd))
	})

	It("S3: lowers a UnitDelay/Add cycle with two-pass stateful lowering", func() {
		reg := newBuiltinRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "t0", Type: blocks.TimeRootType},
				{ID: "delay", Type: blocks.UnitDelayType, Params: map[string]interface{}{"payloadType": "float"}},
				{ID: "add", Type: "Add"},
				{ID: "c0", Type: "Const", Params: map[string]interface{}{"value": 0.1, "payloadType": "float"}},
			},
			Edges: []patch.Edge{
				{FromBlock: 2, FromPort: "out", ToBlock: 1, ToPort: "in", ID: "e0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e1"},
				{FromBlock: 3, FromPort: "out", ToBlock: 2, ToPort: "b", ID: "e2"},
			},
		}
		p.Normalize()

		b, outputs, err := lowerPatch(p, reg)
		Expect(err).NotTo(HaveOccurred())

		delayOut := b.Expr(outputs[1]["out"].ID)
		Expect(delayOut.Kind).To(Equal(ir.ExprStateRead))

		addOut := b.Expr(outputs[2]["out"].ID)
		Expect(addOut.Kind).To(Equal(ir.ExprKernelZip))
		Expect(addOut.Kernel.Opcode()).To(Equal(ir.OpAdd))

		Expect(b.StateSlots()).To(HaveLen(1))
		Expect(b.StateWrites()).To(HaveLen(1))
		Expect(b.StateWrites()[0].Value).To(Equal(addOut.ID))
	})

	It("S4: a cycle of two non-stateful Add blocks fails with IllegalCycle", func() {
		reg := newBuiltinRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "t0", Type: blocks.TimeRootType},
				{ID: "a1", Type: "Add", Params: map[string]interface{}{"payloadType": "float"}},
				{ID: "a2", Type: "Add", Params: map[string]interface{}{"payloadType": "float"}},
				{ID: "c0", Type: "Const", Params: map[string]interface{}{"value": 1.0, "payloadType": "float"}},
				{ID: "c1", Type: "Const", Params: map[string]interface{}{"value": 1.0, "payloadType": "float"}},
			},
			Edges: []patch.Edge{
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
				{FromBlock: 2, FromPort: "out", ToBlock: 1, ToPort: "a", ID: "e1"},
				{FromBlock: 3, FromPort: "out", ToBlock: 1, ToPort: "b", ID: "e2"},
				{FromBlock: 4, FromPort: "out", ToBlock: 2, ToPort: "b", ID: "e3"},
			},
		}
		p.Normalize()

		_, _, err := lowerPatch(p, reg)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("cycle without a stateful boundary"))
	})

	It("lowers a comparison opcode to a bool-typed kernelZip", func() {
		reg := newBuiltinRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "t0", Type: blocks.TimeRootType},
				{ID: "c1", Type: "Const", Params: map[string]interface{}{"value": 1.0, "payloadType": "float"}},
				{ID: "c2", Type: "Const", Params: map[string]interface{}{"value": 2.0, "payloadType": "float"}},
				{ID: "gt", Type: "Gt"},
			},
			Edges: []patch.Edge{
				{FromBlock: 1, FromPort: "out", ToBlock: 3, ToPort: "a", ID: "e0"},
				{FromBlock: 2, FromPort: "out", ToBlock: 3, ToPort: "b", ID: "e1"},
			},
		}
		p.Normalize()

		b, outputs, err := lowerPatch(p, reg)
		Expect(err).NotTo(HaveOccurred())

		gtOut := b.Expr(outputs[3]["out"].ID)
		Expect(gtOut.Kernel.Opcode()).To(Equal(ir.OpGt))
		Expect(gtOut.Type.Payload.Kind()).To(Equal(types.PayloadBool))
	})

	It("materializes an Array source as a normalizedIndex field intrinsic", func() {
		reg := newBuiltinRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "t0", Type: blocks.TimeRootType},
				{ID: "arr", Type: blocks.ArrayType, Params: map[string]interface{}{"payloadType": "float"}},
			},
		}
		p.Normalize()

		b, outputs, err := lowerPatch(p, reg)
		Expect(err).NotTo(HaveOccurred())

		out := outputs[1]["out"]
		Expect(out.Type.Kind()).To(Equal(types.KindField))
		Expect(out.Type.Extent.Cardinality.Instance.DomainType).To(Equal(blocks.ArrayType))

		expr := b.Expr(out.ID)
		Expect(expr.Kind).To(Equal(ir.ExprFieldIntrinsic))
		Expect(expr.IntrinsicName).To(Equal(ir.IntrinsicNormalizedIndex))
	})

	It("publishes no output for a render sink, leaving its resolved inputs for schedule construction", func() {
		reg := newBuiltinRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "t0", Type: blocks.TimeRootType},
				{ID: "c0", Type: "Const", Params: map[string]interface{}{"value": 1.0, "payloadType": "vec2"}},
				{ID: "sink", Type: blocks.RenderType},
			},
			Edges: []patch.Edge{
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "pos", ID: "e0"},
			},
		}
		p.Normalize()

		_, outputs, err := lowerPatch(p, reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outputs[2]).To(BeEmpty())
	})
})
