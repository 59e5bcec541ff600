// Package registry implements the block registry (§4.1): an immutable,
// process-wide catalog mapping block type strings to BlockDefinitions. The
// registry carries no compile-specific state — definitions are plain
// records with function members, not an open set of classes, per §9's
// design note.
package registry

import (
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/types"
)

// Form distinguishes a block assembled from other blocks (derived) from an
// atomic one (primitive).
type Form int

const (
	FormPrimitive Form = iota
	FormDerived
)

// Capability names the kind of side effect or role a block plays.
type Capability int

const (
	CapabilityPure Capability = iota
	CapabilityState
	CapabilityIO
	CapabilityTime
	CapabilityRender
	CapabilityIdentity
)

// CardinalityMode describes how a block's output cardinality relates to
// its inputs (§3).
type CardinalityMode int

const (
	CardinalityPreserve CardinalityMode = iota
	CardinalitySignalOnly
	CardinalityFieldOnly
	CardinalityTransform
)

// LaneCoupling distinguishes blocks whose many-cardinality lanes operate
// independently from blocks that couple lanes together.
type LaneCoupling int

const (
	LaneLocal LaneCoupling = iota
	LaneCoupled
)

// BroadcastPolicy governs how a block admits mixed one/many inputs (§4.1,
// §4.6).
type BroadcastPolicy int

const (
	BroadcastAllowZipSig BroadcastPolicy = iota
	BroadcastRequireExpr
	BroadcastDisallowSignalMix
)

// CardinalityMetadata is a block's cardinality polymorphism description.
type CardinalityMetadata struct {
	Mode            CardinalityMode
	LaneCoupling    LaneCoupling
	BroadcastPolicy BroadcastPolicy
}

// PayloadSemantics distinguishes blocks whose payload handling is uniform
// across payload kinds from ones requiring a payload-specific branch.
type PayloadSemantics int

const (
	SemanticsComponentwise PayloadSemantics = iota
	SemanticsTypeSpecific
)

// PayloadCombination is one allowed (inputPayloads -> outputPayload)
// tuple in a block's explicit combination table.
type PayloadCombination struct {
	Inputs []string // payload kind names, in port-declaration order
	Output string
}

// PayloadMetadata is a block's payload polymorphism description.
type PayloadMetadata struct {
	Semantics    PayloadSemantics
	Combinations []PayloadCombination // optional; nil means no explicit table
}

// CombinePolicyWhen controls when a combine node is emitted for a
// multi-writer port (§4.11).
type CombinePolicyWhen int

const (
	CombineWhenMulti CombinePolicyWhen = iota
	CombineWhenAlways
)

// CombineMode is a port's effective multi-writer merge mode (§4.11). It is
// not the same set as ir.CombineMode: first/layer/error reduce to an
// ir.CombineMode during writer resolution, they are not IR-level modes
// themselves, and ir.CombineAny has no counterpart here.
type CombineMode int

const (
	// CombineLast is the zero value so a PortDecl left with a zero-value
	// CombinePolicy gets the spec's documented default mode (§4.11).
	CombineLast CombineMode = iota
	CombineSum
	CombineAverage
	CombineMin
	CombineMax
	CombineFirst
	CombineLayer
	CombineProduct
	CombineError
)

// CombinePolicy is a port's resolved multi-writer policy.
type CombinePolicy struct {
	When CombinePolicyWhen
	Mode CombineMode
}

// PortDecl declares one input or output port on a block.
type PortDecl struct {
	Name string
	Type string // declared type name, used as a fallback before pass 1 resolves the real CanonicalType

	// AllowedPayloads lists the payload kind names this port accepts.
	// Length > 1 marks the port as payload-generic and eligible to seed
	// pass 0 inference (§4.4).
	AllowedPayloads []string

	// Unit names the port's fixed unit tag (e.g. "radians"). Empty means
	// the port seeds a unit variable for pass 1 unification (§4.5).
	Unit string

	// Temporality overrides the default continuous seeding for this
	// port; set to types.Discrete to declare an event port.
	Temporality types.Temporality

	// Input-only fields.
	Optional      bool
	ExposedAsPort bool
	UIHint        string
	HasDefault    bool
	DefaultSource string
	CombinePolicy CombinePolicy

	// ScalarWorld marks a port representing a single world-space scalar
	// (e.g. a transform or position feed) that forbids multiple writers
	// outright, regardless of combine mode (§4.11).
	ScalarWorld bool

	// Output-only.
	Label string
}

// BlockDefinition is the registry's immutable entry for one block type
// (§4.1). It is a plain record with function members — never a trait
// object or an open class hierarchy (§9).
type BlockDefinition struct {
	Type     string
	Label    string
	Category string

	Form       Form
	Capability Capability
	IsStateful bool

	Cardinality CardinalityMetadata
	Payload     PayloadMetadata

	InputPorts  []PortDecl
	OutputPorts []PortDecl

	Lower            ir.LowerFn
	LowerOutputsOnly ir.LowerOutputsOnlyFn
}

// InputPort looks up a declared input port by name.
func (d *BlockDefinition) InputPort(name string) (PortDecl, bool) {
	for _, p := range d.InputPorts {
		if p.Name == name {
			return p, true
		}
	}
	return PortDecl{}, false
}

// OutputPort looks up a declared output port by name.
func (d *BlockDefinition) OutputPort(name string) (PortDecl, bool) {
	for _, p := range d.OutputPorts {
		if p.Name == name {
			return p, true
		}
	}
	return PortDecl{}, false
}
