package passes

import (
	"github.com/sarchlab/patchc/patch"
	"github.com/sarchlab/patchc/types"
)

// Direction distinguishes a block's input ports from its output ports
// within the (blockIndex, portName, direction) type map pass 1 produces
// (§4.5).
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
)

// PortKey identifies one typed port occurrence.
type PortKey struct {
	Block     patch.BlockIndex
	Port      string
	Direction Direction
}

// TypeTable is pass 1's output: a fully resolved CanonicalType per
// (blockIndex, portName, direction) (§4.5).
type TypeTable map[PortKey]types.CanonicalType

// Lookup returns a port's resolved type, falling back to a zero-value
// CanonicalType when absent (e.g. a config-only port pass 1 never seeds).
func (t TypeTable) Lookup(block patch.BlockIndex, port string, dir Direction) (types.CanonicalType, bool) {
	ct, ok := t[PortKey{Block: block, Port: port, Direction: dir}]
	return ct, ok
}
