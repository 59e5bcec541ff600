// Package types implements the compiler's canonical type system: payload
// kinds, unit tags, the five-axis extent record, and the variables each of
// payload and unit resolve through during pass 0 and pass 1.
package types

// Payload is the concrete value kind of a CanonicalType, or a variable
// awaiting resolution by pass 0.
type Payload struct {
	kind PayloadKind
	// variable is non-empty when kind == PayloadVariable. It names the
	// generic slot (e.g. a block's single payload-generic port group) so
	// pass 0 can unify occurrences of the same variable.
	variable string
}

// PayloadKind enumerates the concrete payload kinds plus the variable and
// joker markers used before and during inference.
type PayloadKind int

const (
	// PayloadVariable marks a payload awaiting pass 0 resolution.
	PayloadVariable PayloadKind = iota
	PayloadFloat
	PayloadInt
	PayloadBool
	PayloadVec2
	PayloadVec3
	PayloadColor
	PayloadShape
	PayloadCameraProjection
	// PayloadJoker is "???", the universal joker admitted only by pass 2's
	// exact-compatibility check (§4.2).
	PayloadJoker
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadVariable:
		return "variable"
	case PayloadFloat:
		return "float"
	case PayloadInt:
		return "int"
	case PayloadBool:
		return "bool"
	case PayloadVec2:
		return "vec2"
	case PayloadVec3:
		return "vec3"
	case PayloadColor:
		return "color"
	case PayloadShape:
		return "shape"
	case PayloadCameraProjection:
		return "cameraProjection"
	case PayloadJoker:
		return "???"
	default:
		return "unknown"
	}
}

// Concrete payload constructors.
func Float() Payload            { return Payload{kind: PayloadFloat} }
func Int() Payload              { return Payload{kind: PayloadInt} }
func Bool() Payload             { return Payload{kind: PayloadBool} }
func Vec2() Payload             { return Payload{kind: PayloadVec2} }
func Vec3() Payload             { return Payload{kind: PayloadVec3} }
func Color() Payload            { return Payload{kind: PayloadColor} }
func Shape() Payload             { return Payload{kind: PayloadShape} }
func CameraProjection() Payload { return Payload{kind: PayloadCameraProjection} }
func Joker() Payload            { return Payload{kind: PayloadJoker} }

// PayloadVar creates an unresolved payload variable named by a stable key,
// typically "<blockID>:<portGroup>".
func PayloadVar(name string) Payload {
	return Payload{kind: PayloadVariable, variable: name}
}

// IsVariable reports whether this payload is still awaiting pass 0
// resolution.
func (p Payload) IsVariable() bool { return p.kind == PayloadVariable }

// VariableName returns the variable's identity. Only meaningful when
// IsVariable is true.
func (p Payload) VariableName() string { return p.variable }

// Kind returns the concrete kind, or PayloadVariable if unresolved.
func (p Payload) Kind() PayloadKind { return p.kind }

func (p Payload) String() string {
	if p.kind == PayloadVariable {
		return "$" + p.variable
	}
	return p.kind.String()
}

// Equal compares two payloads structurally. A joker on either side matches
// any concrete payload (but not another variable) — this is only valid
// during pass 2's exact-compatibility check per §4.2.
func (p Payload) Equal(other Payload) bool {
	if p.kind == PayloadJoker || other.kind == PayloadJoker {
		return p.kind != PayloadVariable && other.kind != PayloadVariable
	}
	if p.kind == PayloadVariable || other.kind == PayloadVariable {
		return p.kind == PayloadVariable && other.kind == PayloadVariable && p.variable == other.variable
	}
	return p.kind == other.kind
}

// Stride is the number of scalar components a payload occupies in a
// strided storage region. float -> 1, vec2 -> 2, vec3 -> 3, color -> 4.
// Bool, int, shape, and cameraProjection are single-slot opaque payloads.
func (p Payload) Stride() int {
	switch p.kind {
	case PayloadVec2:
		return 2
	case PayloadVec3:
		return 3
	case PayloadColor:
		return 4
	default:
		return 1
	}
}

// StandardNumericPayloads is the canonical generic-port payload set used by
// arithmetic blocks: any payload that supports componentwise arithmetic.
func StandardNumericPayloads() []Payload {
	return []Payload{Float(), Vec2(), Vec3(), Color()}
}

// PayloadByName resolves one of the concrete payload constructors by its
// String() spelling, the form pass 0 writes into a block's payloadType
// param and pass 1 reads back when substituting a resolved payload into a
// payload-variable type.
func PayloadByName(name string) (Payload, bool) {
	switch name {
	case "float":
		return Float(), true
	case "int":
		return Int(), true
	case "bool":
		return Bool(), true
	case "vec2":
		return Vec2(), true
	case "vec3":
		return Vec3(), true
	case "color":
		return Color(), true
	case "shape":
		return Shape(), true
	case "cameraProjection":
		return CameraProjection(), true
	default:
		return Payload{}, false
	}
}
