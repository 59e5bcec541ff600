package ir

import "github.com/sarchlab/patchc/types"

// LowerCtx is the context a block's lower function receives (§4.10). It
// carries the shared builder, this block's identity, its resolved port
// types, its already-bound input values, and registry-provided
// configuration.
type LowerCtx struct {
	Builder *Builder

	BlockID    string
	BlockIndex int

	// InputTypes / OutputTypes are pass 1's resolved port types, keyed by
	// port name, falling back to the block's declared type when pass 1
	// left a port untouched (e.g. config-only ports).
	InputTypes  map[string]types.CanonicalType
	OutputTypes map[string]types.CanonicalType

	// InputsByID holds the writer resolver's bound value for every
	// exposed input with at least one writer. An optional input with no
	// writer is simply absent — the lower function must check presence
	// and fail via the returned error, not panic. A required input with no
	// writer never reaches lower: writer resolution already failed it
	// with UpstreamError.
	InputsByID map[string]ValueRefExpr

	// ExistingOutputs carries phase 1's already-published outputs into
	// phase 2 of non-trivial SCC lowering, so a stateful block can wire a
	// state-write to its resolved input while reusing the output refs it
	// already emitted (§4.10).
	ExistingOutputs map[string]ValueRefExpr

	// InferredInstance is the union of upstream many-cardinality input
	// contexts, computed before invoking lower (§4.10 step 2).
	InferredInstance *types.Instance

	// Config is the block instance's params map, resolved by pass 0/1
	// (e.g. payloadType) plus any user-set configuration.
	Config map[string]interface{}
}

// Input looks up a bound input by port name and reports whether it was
// present (i.e. had at least one writer).
func (c *LowerCtx) Input(port string) (ValueRefExpr, bool) {
	v, ok := c.InputsByID[port]
	return v, ok
}

// LowerResult is what a block's lower function returns: every declared
// output port bound to a value, plus an optional instance context used for
// downstream propagation.
type LowerResult struct {
	OutputsByID     map[string]ValueRefExpr
	InstanceContext *types.Instance
}

// LowerFn is a block's core lowering function: given a fully resolved
// context, produce output bindings or fail.
type LowerFn func(ctx *LowerCtx) (LowerResult, error)

// LowerOutputsOnlyFn is the reduced entry point a stateful block exposes
// for phase 1 of non-trivial SCC lowering (§4.10): it is invoked with no
// inputs bound and must produce outputs from state alone (typically a
// stateRead).
type LowerOutputsOnlyFn func(ctx *LowerCtx) (LowerResult, error)
