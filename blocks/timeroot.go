package blocks

import (
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/registry"
)

// TimeRootType is the block type string pass 3 matches via capability
// rather than by name, but a stable constant keeps patch fixtures honest.
const TimeRootType = "TimeRoot"

// timeRootDef declares the unique per-patch time root (§4.7). It publishes
// no ports of its own: pass 3 registers tMs/phaseA/phaseB/dt/palette/
// energy/progress directly into the IR builder from the block's
// periodAMs/periodBMs params before pass 6 ever runs, so this block's
// lower function has nothing left to emit.
func timeRootDef() *registry.BlockDefinition {
	return &registry.BlockDefinition{
		Type:       TimeRootType,
		Label:      "Time Root",
		Category:   "time",
		Capability: registry.CapabilityTime,
		Lower: func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
			return ir.LowerResult{}, nil
		},
	}
}
