package passes

import (
	"fmt"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/graph"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

// InstanceContexts maps a block index to the many-cardinality instance its
// field outputs carry, propagated during lowering (§4.10, §9).
type InstanceContexts map[patch.BlockIndex]*types.Instance

// BlockInputs maps a block index to its resolved, writer-bound input refs
// (§4.10 step 2's ctx.InputsByID, captured for every block that goes
// through the standard lowering path). Schedule construction consults
// this to wire a render block's pos/color/size/shape inputs from their
// resolved refs (§4.12) without re-resolving writers and risking a
// duplicate combine node.
type BlockInputs map[patch.BlockIndex]map[string]ir.ValueRefExpr

// LowerBlocks runs pass 6 (§4.10) over every SCC in topological order
// (as produced by ValidateSCCs): trivial SCCs lower in a single pass,
// non-trivial ones in the two-pass stateful-cycle protocol. Every failure
// is accumulated; lowering continues with the remaining blocks so a
// caller sees every failure from one compile (§7).
func LowerBlocks(p *patch.NormalizedPatch, reg *registry.Registry, b *ir.Builder, table TypeTable, sccs []graph.SCC) (BlockOutputs, InstanceContexts, BlockInputs, error) {
	defs := make([]*registry.BlockDefinition, len(p.Blocks))
	var errs []*diagnostics.CompileError
	for i, blk := range p.Blocks {
		def, err := reg.Require(blk.Type)
		if err != nil {
			errs = append(errs, err.(*diagnostics.CompileError))
			continue
		}
		defs[i] = def
	}
	if len(errs) > 0 {
		return nil, nil, nil, diagnostics.NewAggregate(errs)
	}

	outputs := BlockOutputs{}
	instanceCtx := InstanceContexts{}
	inputs := BlockInputs{}

	for _, scc := range sccs {
		if !scc.HasStateBoundary {
			idx := scc.Nodes[0]
			if err := lowerOne(p, defs, b, table, idx, nil, outputs, instanceCtx, inputs); err != nil {
				errs = append(errs, asCompileErrors(err)...)
			}
			continue
		}
		if err := lowerCycle(p, defs, b, table, scc.Nodes, outputs, instanceCtx, inputs); err != nil {
			errs = append(errs, asCompileErrors(err)...)
		}
	}

	return outputs, instanceCtx, inputs, diagnostics.NewAggregate(errs)
}

// lowerCycle implements §4.10's two-pass non-trivial SCC protocol.
func lowerCycle(p *patch.NormalizedPatch, defs []*registry.BlockDefinition, b *ir.Builder, table TypeTable, nodes []patch.BlockIndex, outputs BlockOutputs, instanceCtx InstanceContexts, inputs BlockInputs) error {
	inSCC := make(map[patch.BlockIndex]bool, len(nodes))
	for _, n := range nodes {
		inSCC[n] = true
	}

	var stateful, nonStateful []patch.BlockIndex
	for _, n := range nodes {
		if defs[n].IsStateful && defs[n].LowerOutputsOnly != nil {
			stateful = append(stateful, n)
		} else {
			nonStateful = append(nonStateful, n)
		}
	}

	var errs []*diagnostics.CompileError

	// Phase 1: stateful blocks publish outputs with no inputs bound.
	for _, n := range stateful {
		ctx := buildLowerCtx(p, defs[n], b, table, n, nil, outputs, instanceCtx, true)
		res, err := defs[n].LowerOutputsOnly(ctx)
		if err != nil {
			errs = append(errs, asCompileErrors(err)...)
			continue
		}
		outputs[n] = res.OutputsByID
		propagateInstance(defs[n], n, res, outputs, instanceCtx)
	}

	// Work-list over the non-stateful blocks: lower any block whose
	// in-SCC dependencies are already satisfied.
	remaining := make(map[patch.BlockIndex]bool, len(nonStateful))
	for _, n := range nonStateful {
		remaining[n] = true
	}
	for len(remaining) > 0 {
		progressed := false
		for _, n := range nonStateful {
			if !remaining[n] {
				continue
			}
			if !dependenciesSatisfied(p, defs[n], n, inSCC, outputs) {
				continue
			}
			if err := lowerOne(p, defs, b, table, n, nil, outputs, instanceCtx, inputs); err != nil {
				errs = append(errs, asCompileErrors(err)...)
			}
			delete(remaining, n)
			progressed = true
		}
		if !progressed {
			var stuck []patch.BlockIndex
			for n := range remaining {
				stuck = append(stuck, n)
			}
			errs = append(errs, diagnostics.New(
				diagnostics.CycleWithoutStatefulBoundary,
				fmt.Sprintf("blocks %v could not be ordered within their SCC", stuck),
			))
			break
		}
	}

	// Phase 2: re-lower stateful blocks through the standard path,
	// passing phase 1's outputs so state-write can wire to the resolved
	// input while reusing the published output refs.
	for _, n := range stateful {
		existing := outputs[n]
		if err := lowerOne(p, defs, b, table, n, existing, outputs, instanceCtx, inputs); err != nil {
			errs = append(errs, asCompileErrors(err)...)
		}
	}

	return diagnostics.NewAggregate(errs)
}

func dependenciesSatisfied(p *patch.NormalizedPatch, def *registry.BlockDefinition, idx patch.BlockIndex, inSCC map[patch.BlockIndex]bool, outputs BlockOutputs) bool {
	for _, in := range def.InputPorts {
		for _, e := range p.EdgesInto(idx, in.Name) {
			if !inSCC[e.FromBlock] {
				continue
			}
			if _, ok := outputs[e.FromBlock]; !ok {
				return false
			}
		}
	}
	return true
}

// lowerOne implements §4.10's trivial single-pass lowering, also reused
// by the SCC work-list and phase 2 (with existingOutputs non-nil).
func lowerOne(p *patch.NormalizedPatch, defs []*registry.BlockDefinition, b *ir.Builder, table TypeTable, idx patch.BlockIndex, existingOutputs map[string]ir.ValueRefExpr, outputs BlockOutputs, instanceCtx InstanceContexts, inputs BlockInputs) error {
	def := defs[idx]
	blk, _ := p.BlockAt(idx)

	ctx := buildLowerCtx(p, def, b, table, idx, existingOutputs, outputs, instanceCtx, false)

	var errs []*diagnostics.CompileError
	for _, in := range def.InputPorts {
		if !in.ExposedAsPort {
			continue
		}
		portType, _ := table.Lookup(idx, in.Name, DirectionIn)
		ref, present, err := ResolveInput(p, b, idx, blk.ID, in, portType, outputs)
		if err != nil {
			errs = append(errs, asCompileErrors(err)...)
			continue
		}
		if present {
			ctx.InputsByID[in.Name] = ref
		}
	}
	if len(errs) > 0 {
		return diagnostics.NewAggregate(errs)
	}
	ctx.InferredInstance = inferInstance(ctx.InputsByID)

	res, err := def.Lower(ctx)
	if err != nil {
		return err
	}
	outputs[idx] = res.OutputsByID
	if len(ctx.InputsByID) > 0 {
		inputs[idx] = ctx.InputsByID
	}
	propagateInstance(def, idx, res, outputs, instanceCtx)
	return nil
}

func buildLowerCtx(p *patch.NormalizedPatch, def *registry.BlockDefinition, b *ir.Builder, table TypeTable, idx patch.BlockIndex, existingOutputs map[string]ir.ValueRefExpr, outputs BlockOutputs, instanceCtx InstanceContexts, outputsOnly bool) *ir.LowerCtx {
	blk, _ := p.BlockAt(idx)

	inputTypes := make(map[string]types.CanonicalType, len(def.InputPorts))
	for _, in := range def.InputPorts {
		if ct, ok := table.Lookup(idx, in.Name, DirectionIn); ok {
			inputTypes[in.Name] = ct
		} else {
			inputTypes[in.Name] = seedPortType(blk, in, def.Cardinality, false)
		}
	}
	outputTypes := make(map[string]types.CanonicalType, len(def.OutputPorts))
	for _, out := range def.OutputPorts {
		if ct, ok := table.Lookup(idx, out.Name, DirectionOut); ok {
			outputTypes[out.Name] = ct
		} else {
			outputTypes[out.Name] = seedPortType(blk, out, def.Cardinality, true)
		}
	}

	return &ir.LowerCtx{
		Builder:         b,
		BlockID:         blk.ID,
		BlockIndex:      int(idx),
		InputTypes:      inputTypes,
		OutputTypes:     outputTypes,
		InputsByID:      map[string]ir.ValueRefExpr{},
		ExistingOutputs: existingOutputs,
		Config:          blk.Params,
	}
}

func inferInstance(inputs map[string]ir.ValueRefExpr) *types.Instance {
	for _, ref := range inputs {
		if ref.Type.Extent.Cardinality.Mode == types.CardinalityMany {
			inst := ref.Type.Extent.Cardinality.Instance
			return &inst
		}
	}
	return nil
}

// propagateInstance implements §4.10's auto-propagation rule: if the
// block's lower function didn't explicitly set an instance context and
// any of its outputs is a field, adopt that field output's instance (which
// pass 1 derives from the block's upstream many-cardinality inputs).
func propagateInstance(def *registry.BlockDefinition, idx patch.BlockIndex, res ir.LowerResult, outputs BlockOutputs, instanceCtx InstanceContexts) {
	if res.InstanceContext != nil {
		instanceCtx[idx] = res.InstanceContext
		return
	}
	for _, ref := range outputs[idx] {
		if ref.Type.Kind() == types.KindField {
			inst := ref.Type.Extent.Cardinality.Instance
			instanceCtx[idx] = &inst
			return
		}
	}
}

func asCompileErrors(err error) []*diagnostics.CompileError {
	if agg, ok := err.(*diagnostics.Aggregate); ok {
		return agg.Errors
	}
	if ce, ok := err.(*diagnostics.CompileError); ok {
		return []*diagnostics.CompileError{ce}
	}
	return []*diagnostics.CompileError{diagnostics.New(diagnostics.NotImplemented, err.Error())}
}
