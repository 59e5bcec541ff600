package passes

import (
	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

// TimeSignals maps every canonical time signal published by the time root
// to its registered IR expression (§4.7).
type TimeSignals map[ir.TimeSignal]ir.ValueExprId

// ResolveTimeTopology runs pass 3 (§4.7): finds the patch's unique
// time-root block, builds its TimeModel from its periodAMs/periodBMs
// params, and registers the canonical time signals as time expressions in
// the IR builder.
func ResolveTimeTopology(p *patch.NormalizedPatch, reg *registry.Registry, b *ir.Builder) (*TimeModel, patch.BlockIndex, TimeSignals, error) {
	var roots []patch.BlockIndex
	for i, blk := range p.Blocks {
		def, err := reg.Require(blk.Type)
		if err != nil {
			return nil, 0, nil, err
		}
		if def.Capability == registry.CapabilityTime {
			roots = append(roots, patch.BlockIndex(i))
		}
	}

	if len(roots) == 0 {
		return nil, 0, nil, diagnostics.New(diagnostics.NoTimeRoot, "patch declares no time-root block")
	}
	if len(roots) > 1 {
		return nil, 0, nil, diagnostics.New(diagnostics.MultipleTimeRoots, "patch declares more than one time-root block")
	}

	rootIdx := roots[0]
	root := p.Blocks[rootIdx]
	model := &TimeModel{
		Kind:      TimeModelInfinite,
		PeriodAMs: paramFloat(root, "periodAMs", 1000),
		PeriodBMs: paramFloat(root, "periodBMs", 1000),
	}

	signals := TimeSignals{
		ir.TimeMs:     b.Time(ir.TimeMs, types.Signal(types.Float(), types.Ms())),
		ir.PhaseA:     b.Time(ir.PhaseA, types.Signal(types.Float(), types.Phase01())),
		ir.PhaseB:     b.Time(ir.PhaseB, types.Signal(types.Float(), types.Phase01())),
		ir.DeltaTime:  b.Time(ir.DeltaTime, types.Signal(types.Float(), types.Ms())),
		ir.Palette:    b.Time(ir.Palette, types.Signal(types.Color(), types.Scalar())),
		ir.Energy:     b.Time(ir.Energy, types.Signal(types.Float(), types.Scalar())),
		ir.ProgressSig: b.Time(ir.ProgressSig, types.Signal(types.Float(), types.Phase01())),
	}

	return model, rootIdx, signals, nil
}

func paramFloat(b patch.Block, key string, def float64) float64 {
	if b.Params == nil {
		return def
	}
	v, ok := b.Params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}
