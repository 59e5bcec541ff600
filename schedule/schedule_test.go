package schedule_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/passes"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/schedule"
	"github.com/sarchlab/patchc/types"
)

func newRenderFixtureRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register(&registry.BlockDefinition{
		Type:        "Const",
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: []string{"float"}}},
	})
	reg.Register(&registry.BlockDefinition{
		Type:        "Upstream",
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: []string{"float"}}},
	})
	reg.Register(&registry.BlockDefinition{
		Type:       "RenderSink",
		Capability: registry.CapabilityRender,
		InputPorts: []registry.PortDecl{{Name: "pos", AllowedPayloads: []string{"float"}, ExposedAsPort: true}},
	})
	return reg
}

var _ = Describe("Reachable", func() {
	It("marks only blocks that transitively feed a render block", func() {
		reg := newRenderFixtureRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "c0", Type: "Const"},
				{ID: "orphan", Type: "Const"},
				{ID: "sink", Type: "RenderSink"},
			},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "pos", ID: "e0"},
			},
		}
		reachable, err := schedule.Reachable(p, reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(reachable).To(HaveKey(patch.BlockIndex(0)))
		Expect(reachable).To(HaveKey(patch.BlockIndex(2)))
		Expect(reachable).NotTo(HaveKey(patch.BlockIndex(1)))
	})

	It("yields an empty reachable set when there are no render blocks", func() {
		reg := newRenderFixtureRegistry()
		p := &patch.NormalizedPatch{Blocks: []patch.Block{{ID: "c0", Type: "Const"}}}
		reachable, err := schedule.Reachable(p, reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(reachable).To(BeEmpty())
	})
})

var _ = Describe("Build", func() {
	floatSignal := types.Signal(types.Float(), types.Scalar())

	It("produces a renderAssemble step for a reachable constant feeding a render block", func() {
		reg := newRenderFixtureRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "c0", Type: "Const"},
				{ID: "sink", Type: "RenderSink"},
			},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 1, ToPort: "pos", ID: "e0"},
			},
		}
		b := ir.NewBuilder()
		constID := b.Constant(1.0, floatSignal)
		constRef := b.AllocSlot(constID, floatSignal, 0)

		outputs := passes.BlockOutputs{0: {"out": constRef}}
		inputs := passes.BlockInputs{1: {"pos": constRef}}

		reachable, err := schedule.Reachable(p, reg)
		Expect(err).NotTo(HaveOccurred())

		steps, err := schedule.Build(p, reg, b, outputs, inputs, reachable)
		Expect(err).NotTo(HaveOccurred())

		Expect(steps[0].Kind).To(Equal(schedule.StepTimeDerive))

		var sawSignalEval, sawRenderAssemble bool
		for _, s := range steps {
			switch s.Kind {
			case schedule.StepSignalEval:
				sawSignalEval = true
				Expect(s.BlockID).To(Equal("c0"))
			case schedule.StepRenderAssemble:
				sawRenderAssemble = true
				Expect(s.BlockID).To(Equal("sink"))
				Expect(s.DependsOn).To(ContainElement(constRef.Slot))
			}
		}
		Expect(sawSignalEval).To(BeTrue())
		Expect(sawRenderAssemble).To(BeTrue())
	})

	It("yields an empty step list when there are no reachable blocks", func() {
		reg := newRenderFixtureRegistry()
		p := &patch.NormalizedPatch{Blocks: []patch.Block{{ID: "c0", Type: "Const"}}}
		b := ir.NewBuilder()

		reachable, err := schedule.Reachable(p, reg)
		Expect(err).NotTo(HaveOccurred())

		steps, err := schedule.Build(p, reg, b, passes.BlockOutputs{}, passes.BlockInputs{}, reachable)
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(BeEmpty())
	})

	It("emits a materialize step for a reachable field output", func() {
		reg := newRenderFixtureRegistry()
		instance := types.Instance{DomainType: "Array", InstanceID: "arr0"}
		fieldType := types.Field(types.Float(), types.Scalar(), instance)

		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "f0", Type: "Upstream"},
				{ID: "sink", Type: "RenderSink"},
			},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 1, ToPort: "pos", ID: "e0"},
			},
		}
		b := ir.NewBuilder()
		fieldID := b.FieldIntrinsic(ir.IntrinsicNormalizedIndex, fieldType)
		fieldRef := b.AllocSlot(fieldID, fieldType, 0)

		outputs := passes.BlockOutputs{0: {"out": fieldRef}}
		inputs := passes.BlockInputs{1: {"pos": fieldRef}}

		reachable, err := schedule.Reachable(p, reg)
		Expect(err).NotTo(HaveOccurred())

		steps, err := schedule.Build(p, reg, b, outputs, inputs, reachable)
		Expect(err).NotTo(HaveOccurred())

		var sawMaterialize bool
		for _, s := range steps {
			if s.Kind == schedule.StepMaterialize {
				sawMaterialize = true
				Expect(s.BlockID).To(Equal("f0"))
			}
		}
		Expect(sawMaterialize).To(BeTrue())
	})

	It("emits a stateWrite step for a reachable stateful block, depending on the written expression's slot", func() {
		reg := registry.New()
		reg.Register(&registry.BlockDefinition{Type: "UnitDelay", IsStateful: true})
		p := &patch.NormalizedPatch{Blocks: []patch.Block{{ID: "delay", Type: "UnitDelay"}}}
		b := ir.NewBuilder()

		valID := b.Constant(1.0, floatSignal)
		valRef := b.AllocSlot(valID, floatSignal, 0)
		slot := b.AllocStateSlot("delay", 0.0, floatSignal)
		b.StepStateWrite(slot, valRef.ID)

		reachable := map[patch.BlockIndex]bool{0: true}
		steps, err := schedule.Build(p, reg, b, passes.BlockOutputs{}, passes.BlockInputs{}, reachable)
		Expect(err).NotTo(HaveOccurred())

		Expect(steps).To(HaveLen(2)) // timeDerive + stateWrite
		last := steps[len(steps)-1]
		Expect(last.Kind).To(Equal(schedule.StepStateWrite))
		Expect(last.StateSlot).To(Equal(slot))
		Expect(last.DependsOn).To(ContainElement(valRef.Slot))
	})

	It("drops a stateWrite for an unreachable block", func() {
		reg := registry.New()
		p := &patch.NormalizedPatch{Blocks: []patch.Block{{ID: "delay", Type: "UnitDelay"}}}
		b := ir.NewBuilder()

		valID := b.Constant(1.0, floatSignal)
		valRef := b.AllocSlot(valID, floatSignal, 0)
		slot := b.AllocStateSlot("delay", 0.0, floatSignal)
		b.StepStateWrite(slot, valRef.ID)

		reachable := map[patch.BlockIndex]bool{}
		steps, err := schedule.Build(p, reg, b, passes.BlockOutputs{}, passes.BlockInputs{}, reachable)
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(BeEmpty())
	})
})
