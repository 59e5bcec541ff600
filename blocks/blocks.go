// Package blocks provides the built-in block catalog (§4.1, §8): the
// handful of block definitions exercised by the end-to-end scenarios —
// a time root, a constant source, the arithmetic opcode family, a
// stateful unit delay, an array/field source, and a render sink. Register
// populates a *registry.Registry the same way the teacher's
// defaultISAinit populates its default ISA: the arithmetic opcodes come
// from a declarative table walked in a loop, and each of the other blocks
// has its own registration call.
package blocks

import (
	"github.com/sarchlab/patchc/registry"
	"github.com/sarchlab/patchc/types"
)

// init populates the process-wide default registry, per the contract
// registry.Default documents: built-in block packages call Register from
// an init() function.
func init() {
	Register(registry.Default)
}

// Register adds every built-in block definition to reg. Registration is
// idempotent (registry.Register replaces by type string), so calling it
// more than once on the same registry is harmless.
func Register(reg *registry.Registry) {
	reg.Register(timeRootDef())
	reg.Register(constDef())
	for _, spec := range opcodeSpecs {
		reg.Register(spec.definition())
	}
	reg.Register(unitDelayDef())
	reg.Register(arrayDef())
	reg.Register(renderDef())
}

// standardNumericPayloadNames is the AllowedPayloads value shared by every
// payload-generic port in this package.
func standardNumericPayloadNames() []string {
	payloads := types.StandardNumericPayloads()
	names := make([]string, len(payloads))
	for i, p := range payloads {
		names[i] = p.String()
	}
	return names
}
