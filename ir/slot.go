package ir

import "github.com/sarchlab/patchc/types"

// SlotID names run-time value storage the builder allocates. Multi-
// component values occupy a strided region starting at this slot.
type SlotID int

// StateSlotID names a state slot: last-frame storage with a stable
// identity (block id plus role tag), written at end-of-frame and read as
// the current frame's previous value.
type StateSlotID int

// EventSlotID names discrete-temporality storage, kept distinct from
// SlotID so a runtime can treat events (reset each frame) differently from
// signal/field slots (persist across reads within a frame).
type EventSlotID int

// SlotInfo records a registered slot's type, tying slot allocation to the
// expression and declared type that produced it (§4.3: "Registration calls
// tie slot id to expression id and to a declared slot type").
type SlotInfo struct {
	ID     SlotID
	Expr   ValueExprId
	Type   types.CanonicalType
	Stride int
}

// StateSlot is a stateful block's allocated storage: a stable identity
// (block id + role tag), an initial value, and a type.
type StateSlot struct {
	ID       StateSlotID
	StableID string
	Init     interface{}
	Type     types.CanonicalType
}

// EventSlotInfo mirrors SlotInfo for discrete-temporality storage.
type EventSlotInfo struct {
	ID   EventSlotID
	Expr ValueExprId
	Type types.CanonicalType
}

// ValueRefExpr packages a reference to a value-expression table entry with
// the run-time slot it was registered against, per §3.
type ValueRefExpr struct {
	ID         ValueExprId
	Slot       SlotID
	Type       types.CanonicalType
	Stride     int
	Components []int
	EventSlot  *EventSlotID
}

// StateWrite is a queued end-of-frame write: the value computed this frame
// that becomes next frame's stateRead result.
type StateWrite struct {
	Slot  StateSlotID
	Value ValueExprId
}

// ExternalRead records a side-effecting read of a named external channel,
// tracked so a runtime knows which channels a program polls.
type ExternalRead struct {
	Name string
	Expr ValueExprId
}
