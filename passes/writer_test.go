package passes_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/passes"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

var _ = Describe("EnumerateWriters", func() {
	It("sorts writers ascending by fromBlockId:fromPort:connId", func() {
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "cs2"}, {ID: "cs1"}, {ID: "add"}},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e1"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
			},
		}
		writers := passes.EnumerateWriters(p, 2, "a")
		Expect(writers).To(HaveLen(2))
		Expect(writers[0].FromBlock).To(Equal(patch.BlockIndex(1)))
		Expect(writers[1].FromBlock).To(Equal(patch.BlockIndex(0)))
	})
})

var _ = Describe("ResolveInput", func() {
	floatSignal := types.Signal(types.Float(), types.Scalar())

	It("leaves an optional input with no writers unresolved", func() {
		p := &patch.NormalizedPatch{Blocks: []patch.Block{{ID: "b"}}}
		b := ir.NewBuilder()
		port := registry.PortDecl{Name: "a", Optional: true}
		_, present, err := passes.ResolveInput(p, b, 0, "b", port, floatSignal, passes.BlockOutputs{})
		Expect(err).NotTo(HaveOccurred())
		Expect(present).To(BeFalse())
	})

	It("fails a required input with no writers with UpstreamError", func() {
		p := &patch.NormalizedPatch{Blocks: []patch.Block{{ID: "b"}}}
		b := ir.NewBuilder()
		port := registry.PortDecl{Name: "a"}
		_, _, err := passes.ResolveInput(p, b, 0, "b", port, floatSignal, passes.BlockOutputs{})
		Expect(err).To(HaveOccurred())
	})

	It("binds a single writer directly without a combine node", func() {
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "src"}, {ID: "dst"}},
			Edges:  []patch.Edge{{FromBlock: 0, FromPort: "out", ToBlock: 1, ToPort: "a", ID: "e0"}},
		}
		b := ir.NewBuilder()
		srcID := b.Constant(1.0, floatSignal)
		srcRef := b.AllocSlot(srcID, floatSignal, 0)
		outputs := passes.BlockOutputs{0: {"out": srcRef}}

		port := registry.PortDecl{Name: "a"}
		before := len(b.Exprs())
		ref, present, err := passes.ResolveInput(p, b, 1, "dst", port, floatSignal, outputs)
		Expect(err).NotTo(HaveOccurred())
		Expect(present).To(BeTrue())
		Expect(ref.ID).To(Equal(srcRef.ID))
		Expect(len(b.Exprs())).To(Equal(before)) // no new expression appended
	})

	It("emits a combine node for two writers under the default last mode, in sort order", func() {
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "cs1"}, {ID: "cs2"}, {ID: "add"}},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e1"},
			},
		}
		b := ir.NewBuilder()
		id1 := b.Constant(1.0, floatSignal)
		ref1 := b.AllocSlot(id1, floatSignal, 0)
		id2 := b.Constant(2.0, floatSignal)
		ref2 := b.AllocSlot(id2, floatSignal, 0)
		outputs := passes.BlockOutputs{0: {"out": ref1}, 1: {"out": ref2}}

		port := registry.PortDecl{Name: "a"}
		ref, present, err := passes.ResolveInput(p, b, 2, "add", port, floatSignal, outputs)
		Expect(err).NotTo(HaveOccurred())
		Expect(present).To(BeTrue())

		combined := b.Expr(ref.ID)
		Expect(combined.Kind).To(Equal(ir.ExprCombine))
		Expect(combined.CombineMode).To(Equal(ir.CombineLast))
		Expect(combined.CombineArgs).To(Equal([]ir.ValueExprId{id1, id2}))
	})

	It("rejects multiple writers under combine mode error", func() {
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "cs1"}, {ID: "cs2"}, {ID: "add"}},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e1"},
			},
		}
		b := ir.NewBuilder()
		port := registry.PortDecl{Name: "a", CombinePolicy: registry.CombinePolicy{Mode: registry.CombineError}}
		_, _, err := passes.ResolveInput(p, b, 2, "add", port, floatSignal, passes.BlockOutputs{
			0: {"out": ir.ValueRefExpr{}}, 1: {"out": ir.ValueRefExpr{}},
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects sum combine mode for a color payload", func() {
		colorSignal := types.Signal(types.Color(), types.Scalar())
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "cs1"}, {ID: "cs2"}, {ID: "mix"}},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e1"},
			},
		}
		b := ir.NewBuilder()
		port := registry.PortDecl{Name: "a", CombinePolicy: registry.CombinePolicy{Mode: registry.CombineSum}}
		_, _, err := passes.ResolveInput(p, b, 2, "mix", port, colorSignal, passes.BlockOutputs{
			0: {"out": ir.ValueRefExpr{}}, 1: {"out": ir.ValueRefExpr{}},
		})
		Expect(err).To(HaveOccurred())
	})

	It("combines event-temporality inputs with mode any regardless of declared policy", func() {
		eventType := types.Event(types.Float(), types.Scalar())
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "e1"}, {ID: "e2"}, {ID: "trigger"}},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "ed0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "ed1"},
			},
		}
		b := ir.NewBuilder()
		id1 := b.Constant(1.0, eventType)
		ref1 := b.AllocSlot(id1, eventType, 0)
		id2 := b.Constant(2.0, eventType)
		ref2 := b.AllocSlot(id2, eventType, 0)
		outputs := passes.BlockOutputs{0: {"out": ref1}, 1: {"out": ref2}}

		port := registry.PortDecl{Name: "a"}
		ref, _, err := passes.ResolveInput(p, b, 2, "trigger", port, eventType, outputs)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Expr(ref.ID).CombineMode).To(Equal(ir.CombineAny))
	})
})
