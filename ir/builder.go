package ir

import (
	"fmt"

	"github.com/sarchlab/patchc/types"
)

// Builder is the IR builder (§4.3): a single append-only value-expression
// table plus slot/state-slot allocation, owned by exactly one compilation.
// It is never shared across compiles (§5).
type Builder struct {
	exprs  []ValueExpr
	slots  []SlotInfo
	events []EventSlotInfo

	stateSlots   []StateSlot
	stateByStable map[string]StateSlotID

	stateWrites   []StateWrite
	externalReads []ExternalRead

	nextSlot  SlotID
	nextEvent EventSlotID
}

// NewBuilder creates an empty IR builder for one compilation.
func NewBuilder() *Builder {
	return &Builder{
		stateByStable: make(map[string]StateSlotID),
	}
}

func (b *Builder) append(e ValueExpr) ValueExprId {
	id := ValueExprId(len(b.exprs))
	e.ID = id
	b.exprs = append(b.exprs, e)
	return id
}

// Constant appends a literal-value expression.
func (b *Builder) Constant(value interface{}, t types.CanonicalType) ValueExprId {
	return b.append(ValueExpr{Kind: ExprConstant, Type: t, ConstantValue: value})
}

// Time appends a reference to a named time-system port. Time expressions
// are registered once per signal by pass 3; callers needing the same
// signal again should keep the returned id rather than re-append.
func (b *Builder) Time(signal TimeSignal, t types.CanonicalType) ValueExprId {
	return b.append(ValueExpr{Kind: ExprTime, Type: t, TimeSignal: signal})
}

// External appends a reference to a named external channel.
func (b *Builder) External(name string, t types.CanonicalType) ValueExprId {
	id := b.append(ValueExpr{Kind: ExprExternal, Type: t, ExternalName: name})
	b.externalReads = append(b.externalReads, ExternalRead{Name: name, Expr: id})
	return id
}

// Opcode wraps a closed-enum arithmetic opcode as a KernelFn.
func (b *Builder) Opcode(op Opcode) KernelFn { return OpcodeFn(op) }

// Kernel wraps a named, non-arithmetic kernel as a KernelFn.
func (b *Builder) Kernel(name string) KernelFn { return Kernel(name) }

// KernelMap appends a unary elementwise expression.
func (b *Builder) KernelMap(arg ValueExprId, fn KernelFn, outType types.CanonicalType) ValueExprId {
	return b.append(ValueExpr{Kind: ExprKernelMap, Type: outType, Kernel: fn, Args: []ValueExprId{arg}})
}

// KernelZip appends an n-ary elementwise expression.
func (b *Builder) KernelZip(args []ValueExprId, fn KernelFn, outType types.CanonicalType) ValueExprId {
	argsCopy := append([]ValueExprId(nil), args...)
	return b.append(ValueExpr{Kind: ExprKernelZip, Type: outType, Kernel: fn, Args: argsCopy})
}

// Broadcast appends a one-to-many expansion at an instance context.
func (b *Builder) Broadcast(sig ValueExprId, fieldType types.CanonicalType) ValueExprId {
	return b.append(ValueExpr{Kind: ExprBroadcast, Type: fieldType, BroadcastSource: sig})
}

// FieldIntrinsic appends a named per-element source.
func (b *Builder) FieldIntrinsic(name string, fieldType types.CanonicalType) ValueExprId {
	return b.append(ValueExpr{Kind: ExprFieldIntrinsic, Type: fieldType, IntrinsicName: name})
}

// Combine appends an n-ary combine expression over same-typed arguments.
func (b *Builder) Combine(ids []ValueExprId, mode CombineMode, t types.CanonicalType) ValueExprId {
	idsCopy := append([]ValueExprId(nil), ids...)
	return b.append(ValueExpr{Kind: ExprCombine, Type: t, CombineMode: mode, CombineArgs: idsCopy})
}

// StateRead appends a read of a state slot's previous-frame value.
func (b *Builder) StateRead(slot StateSlotID, t types.CanonicalType) ValueExprId {
	return b.append(ValueExpr{Kind: ExprStateRead, Type: t, StateSlot: slot})
}

// Pack appends an expression composing multiple scalars into a
// multi-component payload.
func (b *Builder) Pack(components []ValueExprId, t types.CanonicalType) ValueExprId {
	compsCopy := append([]ValueExprId(nil), components...)
	return b.append(ValueExpr{Kind: ExprPack, Type: t, PackComponents: compsCopy})
}

// StepStateWrite queues an end-of-frame write to a state slot. It returns
// no id: state writes are side effects, not values.
func (b *Builder) StepStateWrite(slot StateSlotID, value ValueExprId) {
	b.stateWrites = append(b.stateWrites, StateWrite{Slot: slot, Value: value})
}

// AllocSlot allocates a fresh run-time storage slot sized by strideHint
// (minimum 1) and registers it against expr/t. Returns the allocated
// ValueRefExpr.
func (b *Builder) AllocSlot(expr ValueExprId, t types.CanonicalType, strideHint int) ValueRefExpr {
	if strideHint < 1 {
		strideHint = t.Stride()
	}
	slot := b.nextSlot
	b.nextSlot += SlotID(strideHint)
	b.slots = append(b.slots, SlotInfo{ID: slot, Expr: expr, Type: t, Stride: strideHint})

	ref := ValueRefExpr{ID: expr, Slot: slot, Type: t, Stride: strideHint}
	if t.Kind() == types.KindEvent {
		evt := b.nextEvent
		b.nextEvent++
		b.events = append(b.events, EventSlotInfo{ID: evt, Expr: expr, Type: t})
		ref.EventSlot = &evt
	}
	return ref
}

// AllocStateSlot allocates a state slot with the given stable identity,
// idempotently: a second call with the same stableID within one compile
// returns the previously allocated slot rather than a fresh one, since
// phase 1 and phase 2 of non-trivial SCC lowering (§4.10) both reference
// the same stateful block's slot.
func (b *Builder) AllocStateSlot(stableID string, init interface{}, t types.CanonicalType) StateSlotID {
	if id, ok := b.stateByStable[stableID]; ok {
		return id
	}
	id := StateSlotID(len(b.stateSlots))
	b.stateSlots = append(b.stateSlots, StateSlot{ID: id, StableID: stableID, Init: init, Type: t})
	b.stateByStable[stableID] = id
	return id
}

// AllocEventSlot allocates a standalone event slot not tied to a value
// slot (used when an event is consumed only as a trigger, with no
// strided backing storage).
func (b *Builder) AllocEventSlot(expr ValueExprId, t types.CanonicalType) EventSlotID {
	id := b.nextEvent
	b.nextEvent++
	b.events = append(b.events, EventSlotInfo{ID: id, Expr: expr, Type: t})
	return id
}

// Expr returns the expression table entry for id.
func (b *Builder) Expr(id ValueExprId) ValueExpr { return b.exprs[id] }

// Exprs returns the full, append-only expression table.
func (b *Builder) Exprs() []ValueExpr { return b.exprs }

// Slots returns the registered slot table.
func (b *Builder) Slots() []SlotInfo { return b.slots }

// EventSlots returns the registered event-slot table.
func (b *Builder) EventSlots() []EventSlotInfo { return b.events }

// StateSlots returns every allocated state slot.
func (b *Builder) StateSlots() []StateSlot { return b.stateSlots }

// StateWrites returns every queued end-of-frame state write.
func (b *Builder) StateWrites() []StateWrite { return b.stateWrites }

// ExternalReads returns every recorded external-channel read.
func (b *Builder) ExternalReads() []ExternalRead { return b.externalReads }

// ValidateSlotRegistration checks the §3 invariant that every slot
// referenced by any step is registered with a type; callers (schedule
// construction) pass the slots actually referenced by the final step list.
func (b *Builder) ValidateSlotRegistration(referenced []SlotID) error {
	registered := make(map[SlotID]bool, len(b.slots))
	for _, s := range b.slots {
		registered[s.ID] = true
	}
	for _, slot := range referenced {
		if !registered[slot] {
			return fmt.Errorf("ir: slot %d referenced by a step but never registered", slot)
		}
	}
	return nil
}
