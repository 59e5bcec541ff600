package passes

import (
	"fmt"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

// InferTypes runs pass 1 (§4.5): seeds a CanonicalType for every declared
// port (substituting pass 0's resolved payload into payload variables),
// unifies unit variables across edges, computes preserve-block output
// cardinality as the join of its inputs, and validates cardinality mixing
// against each block's broadcast policy. It returns the resolved type
// table and an aggregated error for every finding (§4.5, §4.2).
func InferTypes(p *patch.NormalizedPatch, reg *registry.Registry) (TypeTable, error) {
	defs := make([]*registry.BlockDefinition, len(p.Blocks))
	for i, b := range p.Blocks {
		def, err := reg.Require(b.Type)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}

	table := make(TypeTable)
	unitResolved := make(map[string]types.Unit)

	for i, b := range p.Blocks {
		idx := patch.BlockIndex(i)
		def := defs[i]
		for _, in := range def.InputPorts {
			table[PortKey{idx, in.Name, DirectionIn}] = seedPortType(b, in, def.Cardinality, false)
		}
		for _, out := range def.OutputPorts {
			table[PortKey{idx, out.Name, DirectionOut}] = seedPortType(b, out, def.Cardinality, true)
		}
	}

	// Unit unification: iterate edges to a fixed point, propagating a
	// concrete unit across any edge where exactly one side is still a
	// variable, and recording a conflict when both sides are concrete and
	// differ (§4.5).
	var conflicts []*diagnostics.CompileError
	for pass := 0; pass < len(p.Blocks)+1; pass++ {
		changed := false
		for _, e := range p.Edges {
			fromKey := PortKey{e.FromBlock, e.FromPort, DirectionOut}
			toKey := PortKey{e.ToBlock, e.ToPort, DirectionIn}
			fromType, fromOK := table[fromKey]
			toType, toOK := table[toKey]
			if !fromOK || !toOK {
				continue
			}
			if propagateUnit(&fromType, &toType, unitResolved) {
				table[fromKey] = fromType
				table[toKey] = toType
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for _, e := range p.Edges {
		fromType := table[PortKey{e.FromBlock, e.FromPort, DirectionOut}]
		toType := table[PortKey{e.ToBlock, e.ToPort, DirectionIn}]
		if !fromType.Unit.IsVariable() && !toType.Unit.IsVariable() && !fromType.Unit.Equal(toType.Unit) {
			conflicts = append(conflicts, diagnostics.AtEdge(
				diagnostics.ConflictingUnits,
				fmt.Sprintf("conflicting units on edge %s: %s vs %s", e.ID, fromType.Unit, toType.Unit),
				e.ID,
			))
		}
	}

	// Cardinality: iterate preserve-block outputs to a fixed point, then
	// validate mixing against broadcast policy (§4.5, §4.6's mixing
	// check shares this data but is reported here where it is computed).
	var cardinalityErrs []*diagnostics.CompileError
	for pass := 0; pass < len(p.Blocks)+1; pass++ {
		changed := false
		for i, def := range defs {
			idx := patch.BlockIndex(i)
			if def.Cardinality.Mode != registry.CardinalityPreserve {
				continue
			}
			joined := joinInputCardinality(p, table, defs, idx, def)
			for _, out := range def.OutputPorts {
				key := PortKey{idx, out.Name, DirectionOut}
				ct := table[key]
				if !ct.Extent.Cardinality.Equal(joined) {
					ct = ct.WithCardinality(joined)
					table[key] = ct
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for _, e := range p.Edges {
		toDef := defs[e.ToBlock]
		fromType := table[PortKey{e.FromBlock, e.FromPort, DirectionOut}]
		toType := table[PortKey{e.ToBlock, e.ToPort, DirectionIn}]
		if fromType.Extent.Cardinality.Mode == types.CardinalityMany && toType.Extent.Cardinality.Mode != types.CardinalityMany {
			allowed := toDef.Cardinality.Mode == registry.CardinalityPreserve &&
				toDef.Cardinality.LaneCoupling == registry.LaneLocal &&
				toDef.Cardinality.BroadcastPolicy != registry.BroadcastDisallowSignalMix
			if !allowed {
				cardinalityErrs = append(cardinalityErrs, diagnostics.AtEdge(
					diagnostics.ImplicitBroadcastDisallowed,
					fmt.Sprintf("edge %s mixes a many-cardinality source into a one-cardinality port without an allowing broadcast policy", e.ID),
					e.ID,
				))
			}
		}
	}

	var unresolved []*diagnostics.CompileError
	for key, ct := range table {
		if ct.Unit.IsVariable() {
			unresolved = append(unresolved, diagnostics.At(diagnostics.UnresolvedUnit,
				fmt.Sprintf("port %q on block %d has an unresolved unit", key.Port, key.Block),
				p.Blocks[key.Block].ID, key.Port))
		}
		if ct.Payload.IsVariable() {
			unresolved = append(unresolved, diagnostics.At(diagnostics.UnresolvedPayload,
				fmt.Sprintf("port %q on block %d has an unresolved payload", key.Port, key.Block),
				p.Blocks[key.Block].ID, key.Port))
		}
	}

	all := append(append(append([]*diagnostics.CompileError{}, conflicts...), cardinalityErrs...), unresolved...)
	return table, diagnostics.NewAggregate(all)
}

// seedPortType builds a port's initial CanonicalType: its payload (pass
// 0's resolution substituted for generic ports), its declared unit or a
// fresh unit variable, and its extent (fixed for signal/field-only
// blocks, the default for everything else pending the preserve-join
// fixed point).
func seedPortType(b patch.Block, port registry.PortDecl, card registry.CardinalityMetadata, isOutput bool) types.CanonicalType {
	payload := seedPayload(b, port)
	unit := seedUnit(b, port)
	extent := types.DefaultExtent()
	if isOutput && card.Mode == registry.CardinalityFieldOnly {
		extent.Cardinality = types.Many(types.Instance{DomainType: b.Type, InstanceID: b.ID})
	}
	if port.Temporality == types.Discrete {
		extent.Temporality = types.Discrete
	}
	return types.CanonicalType{Payload: payload, Unit: unit, Extent: extent}
}

func seedPayload(b patch.Block, port registry.PortDecl) types.Payload {
	varName := b.ID + ":" + port.Name
	if len(port.AllowedPayloads) > 1 {
		if pt := b.ParamString(payloadTypeParam); pt != "" {
			if payload, ok := types.PayloadByName(pt); ok {
				return payload
			}
		}
		return types.PayloadVar(varName)
	}
	if len(port.AllowedPayloads) == 1 {
		if payload, ok := types.PayloadByName(port.AllowedPayloads[0]); ok {
			return payload
		}
	}
	if payload, ok := types.PayloadByName(port.Type); ok {
		return payload
	}
	return types.PayloadVar(varName)
}

func seedUnit(b patch.Block, port registry.PortDecl) types.Unit {
	if port.Unit != "" {
		if u, ok := types.UnitByName(port.Unit); ok {
			return u
		}
	}
	return types.UnitVar(b.ID + ":" + port.Name)
}

// propagateUnit unifies the unit axis between a connected output/input
// pair: a concrete unit on either side resolves the other's variable
// (recording the resolution so every other occurrence of that variable
// converges too). Returns whether anything changed this call.
func propagateUnit(fromType, toType *types.CanonicalType, resolved map[string]types.Unit) bool {
	changed := false
	if fromType.Unit.IsVariable() {
		if u, ok := resolved[fromType.Unit.VariableName()]; ok {
			fromType.Unit = u
			changed = true
		}
	}
	if toType.Unit.IsVariable() {
		if u, ok := resolved[toType.Unit.VariableName()]; ok {
			toType.Unit = u
			changed = true
		}
	}
	if !fromType.Unit.IsVariable() && toType.Unit.IsVariable() {
		resolved[toType.Unit.VariableName()] = fromType.Unit
		toType.Unit = fromType.Unit
		changed = true
	}
	if !toType.Unit.IsVariable() && fromType.Unit.IsVariable() {
		resolved[fromType.Unit.VariableName()] = toType.Unit
		fromType.Unit = toType.Unit
		changed = true
	}
	return changed
}

// joinInputCardinality computes a preserve block's output cardinality:
// many if any input is many, else one (§4.5).
func joinInputCardinality(p *patch.NormalizedPatch, table TypeTable, defs []*registry.BlockDefinition, idx patch.BlockIndex, def *registry.BlockDefinition) types.Cardinality {
	for _, in := range def.InputPorts {
		for _, e := range p.EdgesInto(idx, in.Name) {
			fromType, ok := table[PortKey{e.FromBlock, e.FromPort, DirectionOut}]
			if ok && fromType.Extent.Cardinality.Mode == types.CardinalityMany {
				return fromType.Extent.Cardinality
			}
		}
	}
	return types.One()
}
