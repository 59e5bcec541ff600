package schedule

import (
	"sort"

	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/passes"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

// StepKind names one of §4.12's five step categories.
type StepKind int

const (
	StepTimeDerive StepKind = iota
	StepSignalEval
	StepMaterialize
	StepRenderAssemble
	StepStateWrite
)

func (k StepKind) String() string {
	switch k {
	case StepTimeDerive:
		return "timeDerive"
	case StepSignalEval:
		return "signalEval"
	case StepMaterialize:
		return "materialize"
	case StepRenderAssemble:
		return "renderAssemble"
	case StepStateWrite:
		return "stateWrite"
	default:
		return "unknown"
	}
}

// Step is one entry in the schedule's ordered step list (§4.12). Slot is
// the run-time storage this step publishes into; it is the zero value for
// timeDerive and stateWrite, neither of which publish an ordinary value
// slot. DependsOn lists the slots that must already hold a value before
// this step runs — a runtime may execute steps in any order consistent
// with these dependencies, not only the list order.
type Step struct {
	Kind      StepKind
	BlockID   string
	Port      string
	Slot      ir.SlotID
	StateSlot ir.StateSlotID
	DependsOn []ir.SlotID
}

// Build assembles the final ordered step list (§4.12): timeDerive, then
// signalEval for every reachable signal/event expression, then
// materialize for every reachable field expression, then renderAssemble
// per reachable render block (wiring its resolved input refs), then
// stateWrite for every queued state write.
func Build(
	p *patch.NormalizedPatch,
	reg *registry.Registry,
	b *ir.Builder,
	outputs passes.BlockOutputs,
	inputs passes.BlockInputs,
	reachable map[patch.BlockIndex]bool,
) ([]Step, error) {
	exprToSlot := make(map[ir.ValueExprId]ir.SlotID, len(b.Slots()))
	for _, s := range b.Slots() {
		exprToSlot[s.Expr] = s.ID
	}

	var steps []Step
	if len(reachable) > 0 {
		// A patch with no reachable blocks needs no time derivation either
		// — the empty schedule is a true no-op, not a single dangling step.
		steps = append(steps, Step{Kind: StepTimeDerive})
	}

	signalRefs, fieldRefs := partitionOutputs(p, outputs, reachable)

	for _, r := range signalRefs {
		steps = append(steps, Step{
			Kind:      StepSignalEval,
			BlockID:   r.blockID,
			Port:      r.port,
			Slot:      r.ref.Slot,
			DependsOn: exprDependencies(b.Expr(r.ref.ID), exprToSlot),
		})
	}
	for _, r := range fieldRefs {
		steps = append(steps, Step{
			Kind:      StepMaterialize,
			BlockID:   r.blockID,
			Port:      r.port,
			Slot:      r.ref.Slot,
			DependsOn: exprDependencies(b.Expr(r.ref.ID), exprToSlot),
		})
	}

	renderSteps, err := renderAssembleSteps(p, reg, inputs, reachable)
	if err != nil {
		return nil, err
	}
	steps = append(steps, renderSteps...)

	stateSlotBlock := make(map[ir.StateSlotID]patch.BlockIndex, len(b.StateSlots()))
	blockByID := make(map[string]patch.BlockIndex, len(p.Blocks))
	for i, blk := range p.Blocks {
		blockByID[blk.ID] = patch.BlockIndex(i)
	}
	for _, s := range b.StateSlots() {
		if idx, ok := blockByID[s.StableID]; ok {
			stateSlotBlock[s.ID] = idx
		}
	}

	for _, w := range b.StateWrites() {
		idx, ok := stateSlotBlock[w.Slot]
		if !ok || !reachable[idx] {
			continue
		}
		var deps []ir.SlotID
		if slot, ok := exprToSlot[w.Value]; ok {
			deps = []ir.SlotID{slot}
		}
		steps = append(steps, Step{Kind: StepStateWrite, StateSlot: w.Slot, DependsOn: deps})
	}

	return steps, nil
}

type outputRef struct {
	blockID string
	port    string
	ref     ir.ValueRefExpr
}

// partitionOutputs walks reachable blocks in patch order, ports sorted by
// name, splitting resolved outputs into signal/event refs (signalEval)
// and field refs (materialize). Ordering here is exactly the
// deterministic order the resulting steps carry (§5).
func partitionOutputs(p *patch.NormalizedPatch, outputs passes.BlockOutputs, reachable map[patch.BlockIndex]bool) (signals, fields []outputRef) {
	for i, blk := range p.Blocks {
		idx := patch.BlockIndex(i)
		if !reachable[idx] {
			continue
		}
		ports := outputs[idx]
		names := make([]string, 0, len(ports))
		for name := range ports {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := ports[name]
			if ref.Type.Kind() == types.KindField {
				fields = append(fields, outputRef{blk.ID, name, ref})
			} else {
				signals = append(signals, outputRef{blk.ID, name, ref})
			}
		}
	}
	return signals, fields
}

func renderAssembleSteps(p *patch.NormalizedPatch, reg *registry.Registry, inputs passes.BlockInputs, reachable map[patch.BlockIndex]bool) ([]Step, error) {
	var errs []*diagnostics.CompileError
	var steps []Step
	for i, blk := range p.Blocks {
		idx := patch.BlockIndex(i)
		if !reachable[idx] {
			continue
		}
		def, err := reg.Require(blk.Type)
		if err != nil {
			errs = append(errs, err.(*diagnostics.CompileError))
			continue
		}
		if def.Capability != registry.CapabilityRender {
			continue
		}
		bound := inputs[idx]
		names := make([]string, 0, len(bound))
		for name := range bound {
			names = append(names, name)
		}
		sort.Strings(names)
		var deps []ir.SlotID
		for _, name := range names {
			deps = append(deps, bound[name].Slot)
		}
		steps = append(steps, Step{Kind: StepRenderAssemble, BlockID: blk.ID, DependsOn: deps})
	}
	if len(errs) > 0 {
		return nil, diagnostics.NewAggregate(errs)
	}
	return steps, nil
}

// exprDependencies returns the immediate slot dependencies of e, skipping
// any referenced expression that was never itself registered as a slot
// (only writer-resolved and declared-output expressions are; every such
// reference this function needs has one, per §4.3's registration
// invariant).
func exprDependencies(e ir.ValueExpr, exprToSlot map[ir.ValueExprId]ir.SlotID) []ir.SlotID {
	var ids []ir.ValueExprId
	switch e.Kind {
	case ir.ExprKernelMap, ir.ExprKernelZip:
		ids = e.Args
	case ir.ExprBroadcast:
		ids = []ir.ValueExprId{e.BroadcastSource}
	case ir.ExprCombine:
		ids = e.CombineArgs
	case ir.ExprPack:
		ids = e.PackComponents
	}

	seen := make(map[ir.SlotID]bool, len(ids))
	var deps []ir.SlotID
	for _, id := range ids {
		slot, ok := exprToSlot[id]
		if !ok || seen[slot] {
			continue
		}
		seen[slot] = true
		deps = append(deps, slot)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	return deps
}
