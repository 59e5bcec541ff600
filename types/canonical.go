package types

// CanonicalType is the full (payload, unit, extent) triple carried by every
// value in the IR.
type CanonicalType struct {
	Payload Payload
	Unit    Unit
	Extent  Extent
}

// New builds a canonical type with an explicit extent.
func New(payload Payload, unit Unit, extent Extent) CanonicalType {
	return CanonicalType{Payload: payload, Unit: unit, Extent: extent}
}

// Signal builds the common case: a one-cardinality, continuous value.
func Signal(payload Payload, unit Unit) CanonicalType {
	return CanonicalType{Payload: payload, Unit: unit, Extent: DefaultExtent()}
}

// Field builds a many-cardinality, continuous value at the given instance.
func Field(payload Payload, unit Unit, inst Instance) CanonicalType {
	return CanonicalType{
		Payload: payload,
		Unit:    unit,
		Extent:  Extent{Cardinality: Many(inst), Temporality: Continuous},
	}
}

// Event builds a discrete-temporality value.
func Event(payload Payload, unit Unit) CanonicalType {
	return CanonicalType{
		Payload: payload,
		Unit:    unit,
		Extent:  Extent{Cardinality: One(), Temporality: Discrete},
	}
}

// IsVariable reports whether payload or unit is still unresolved.
func (t CanonicalType) IsVariable() bool {
	return t.Payload.IsVariable() || t.Unit.IsVariable()
}

// ExactCompatible implements §4.2's exact type compatibility: payload
// equal (joker admitted only here), temporality equal, cardinality equal
// (including instance identity for many).
func (t CanonicalType) ExactCompatible(other CanonicalType) bool {
	return t.Payload.Equal(other.Payload) &&
		t.Extent.Temporality == other.Extent.Temporality &&
		t.Extent.Cardinality.Equal(other.Extent.Cardinality)
}

// Equal is strict structural equality across payload, unit, and every
// extent axis — used once types are fully resolved (post pass 1).
func (t CanonicalType) Equal(other CanonicalType) bool {
	return t.Payload.Equal(other.Payload) && t.Unit.Equal(other.Unit) && t.Extent.Equal(other.Extent)
}

// Stride delegates to the payload: stride is a pure function of payload.
func (t CanonicalType) Stride() int { return t.Payload.Stride() }

// Kind derives signal/field/event from extent alone.
func (t CanonicalType) Kind() Kind { return t.Extent.DeriveKind() }

func (t CanonicalType) String() string {
	return t.Payload.String() + "/" + t.Unit.String() + "/" + t.Extent.Cardinality.String()
}

// WithPayload returns a copy of t with the payload replaced. Used by pass 0
// to substitute a resolved payload into a payload-variable type.
func (t CanonicalType) WithPayload(p Payload) CanonicalType {
	t.Payload = p
	return t
}

// WithUnit returns a copy of t with the unit replaced. Used by pass 1's
// unification.
func (t CanonicalType) WithUnit(u Unit) CanonicalType {
	t.Unit = u
	return t
}

// WithCardinality returns a copy of t with the cardinality replaced. Used by
// pass 1 when computing the join of input cardinalities for a preserve
// block.
func (t CanonicalType) WithCardinality(c Cardinality) CanonicalType {
	t.Extent.Cardinality = c
	return t
}
