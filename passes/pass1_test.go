package passes_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchc/passes"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

func newUnitFixtureRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register(&registry.BlockDefinition{
		Type:        "ConstFloat",
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: []string{"float"}, Unit: "scalar"}},
	})
	reg.Register(&registry.BlockDefinition{
		Type:        "DegreesSource",
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: []string{"float"}, Unit: "degrees"}},
	})
	reg.Register(&registry.BlockDefinition{
		Type: "RadiansSink",
		InputPorts: []registry.PortDecl{
			{Name: "in", AllowedPayloads: []string{"float"}, Unit: "radians", ExposedAsPort: true},
		},
	})
	reg.Register(&registry.BlockDefinition{
		Type: "Add",
		Cardinality: registry.CardinalityMetadata{
			Mode:            registry.CardinalityPreserve,
			LaneCoupling:    registry.LaneLocal,
			BroadcastPolicy: registry.BroadcastAllowZipSig,
		},
		InputPorts: []registry.PortDecl{
			{Name: "a", AllowedPayloads: genericPayloads(), Unit: "scalar", ExposedAsPort: true},
			{Name: "b", AllowedPayloads: genericPayloads(), Unit: "scalar", ExposedAsPort: true},
		},
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: genericPayloads(), Unit: "scalar"}},
	})
	reg.Register(&registry.BlockDefinition{
		Type: "FieldSource",
		Cardinality: registry.CardinalityMetadata{
			Mode: registry.CardinalityFieldOnly,
		},
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: []string{"float"}, Unit: "scalar"}},
	})
	reg.Register(&registry.BlockDefinition{
		Type: "PreserveDisallow",
		Cardinality: registry.CardinalityMetadata{
			Mode:            registry.CardinalityPreserve,
			LaneCoupling:    registry.LaneLocal,
			BroadcastPolicy: registry.BroadcastDisallowSignalMix,
		},
		InputPorts:  []registry.PortDecl{{Name: "a", AllowedPayloads: []string{"float"}, Unit: "scalar", ExposedAsPort: true}},
		OutputPorts: []registry.PortDecl{{Name: "out", AllowedPayloads: []string{"float"}, Unit: "scalar"}},
	})
	return reg
}

var _ = Describe("InferTypes", func() {
	It("resolves payload and unit across a two-input Add", func() {
		reg := newUnitFixtureRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "c1", Type: "ConstFloat"},
				{ID: "c2", Type: "ConstFloat"},
				{ID: "add", Type: "Add"},
			},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "b", ID: "e1"},
			},
		}
		Expect(passes.ResolvePayloads(p, reg)).To(Succeed())
		table, err := passes.InferTypes(p, reg)
		Expect(err).NotTo(HaveOccurred())

		out, ok := table.Lookup(2, "out", passes.DirectionOut)
		Expect(ok).To(BeTrue())
		Expect(out.Payload.Kind()).To(Equal(types.PayloadFloat))
		Expect(out.Unit.Tag()).To(Equal(types.UnitScalar))
	})

	It("reports ConflictingUnits for a fixed-unit mismatch across an edge", func() {
		reg := newUnitFixtureRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "deg", Type: "DegreesSource"}, {ID: "rad", Type: "RadiansSink"}},
			Edges:  []patch.Edge{{FromBlock: 0, FromPort: "out", ToBlock: 1, ToPort: "in", ID: "e0"}},
		}
		_, err := passes.InferTypes(p, reg)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("conflicting units"))
	})

	It("joins a preserve block's output cardinality to many when fed by a field", func() {
		reg := newUnitFixtureRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{
				{ID: "f0", Type: "FieldSource"},
				{ID: "c0", Type: "ConstFloat"},
				{ID: "add", Type: "Add"},
			},
			Edges: []patch.Edge{
				{FromBlock: 0, FromPort: "out", ToBlock: 2, ToPort: "a", ID: "e0"},
				{FromBlock: 1, FromPort: "out", ToBlock: 2, ToPort: "b", ID: "e1"},
			},
		}
		Expect(passes.ResolvePayloads(p, reg)).To(Succeed())
		table, err := passes.InferTypes(p, reg)
		Expect(err).NotTo(HaveOccurred())

		out, _ := table.Lookup(2, "out", passes.DirectionOut)
		Expect(out.Extent.Cardinality.Mode).To(Equal(types.CardinalityMany))
	})

	It("reports ImplicitBroadcastDisallowed when a field feeds a mix-disallowing block", func() {
		reg := newUnitFixtureRegistry()
		p := &patch.NormalizedPatch{
			Blocks: []patch.Block{{ID: "f0", Type: "FieldSource"}, {ID: "pd", Type: "PreserveDisallow"}},
			Edges:  []patch.Edge{{FromBlock: 0, FromPort: "out", ToBlock: 1, ToPort: "a", ID: "e0"}},
		}
		_, err := passes.InferTypes(p, reg)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("mixes a many-cardinality"))
	})
})
