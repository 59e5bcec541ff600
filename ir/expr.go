package ir

import "github.com/sarchlab/patchc/types"

// ValueExprId is an index into the IR builder's append-only value
// expression table. Allocation is monotonic within a compile; ids are
// never reused (§5).
type ValueExprId int

// ExprKind enumerates the value-expression kinds a Builder can append (§3).
type ExprKind int

const (
	ExprConstant ExprKind = iota
	ExprTime
	ExprExternal
	ExprKernelMap
	ExprKernelZip
	ExprBroadcast
	ExprFieldIntrinsic
	ExprCombine
	ExprStateRead
	ExprPack
)

func (k ExprKind) String() string {
	switch k {
	case ExprConstant:
		return "constant"
	case ExprTime:
		return "time"
	case ExprExternal:
		return "external"
	case ExprKernelMap:
		return "kernelMap"
	case ExprKernelZip:
		return "kernelZip"
	case ExprBroadcast:
		return "broadcast"
	case ExprFieldIntrinsic:
		return "fieldIntrinsic"
	case ExprCombine:
		return "combine"
	case ExprStateRead:
		return "stateRead"
	case ExprPack:
		return "pack"
	default:
		return "unknown"
	}
}

// CombineMode is the merge policy for an n-ary combine expression over
// same-typed arguments (§3).
type CombineMode int

const (
	CombineSum CombineMode = iota
	CombineAverage
	CombineMin
	CombineMax
	CombineLast
	CombineProduct
	// CombineAny is the v1 event-stream combine mode (§4.11): any writer
	// firing produces the combined event, order-insensitive.
	CombineAny
)

func (m CombineMode) String() string {
	switch m {
	case CombineSum:
		return "sum"
	case CombineAverage:
		return "average"
	case CombineMin:
		return "min"
	case CombineMax:
		return "max"
	case CombineLast:
		return "last"
	case CombineProduct:
		return "product"
	case CombineAny:
		return "any"
	default:
		return "unknown"
	}
}

// TimeSignal names one of the canonical per-frame time ports a time-root
// block publishes (§3, §4.7).
type TimeSignal string

const (
	TimeMs     TimeSignal = "tMs"
	PhaseA     TimeSignal = "phaseA"
	PhaseB     TimeSignal = "phaseB"
	DeltaTime  TimeSignal = "dt"
	Palette    TimeSignal = "palette"
	Energy     TimeSignal = "energy"
	ProgressSig TimeSignal = "progress"
)

// ValueExpr is one entry in the append-only value expression table. Only
// the fields relevant to Kind are populated; the rest are zero.
type ValueExpr struct {
	ID   ValueExprId
	Kind ExprKind
	Type types.CanonicalType

	// constant
	ConstantValue interface{}

	// time
	TimeSignal TimeSignal

	// external
	ExternalName string

	// kernelMap / kernelZip
	Kernel KernelFn
	Args   []ValueExprId

	// broadcast
	BroadcastSource ValueExprId

	// fieldIntrinsic
	IntrinsicName string

	// combine
	CombineMode CombineMode
	CombineArgs []ValueExprId

	// stateRead
	StateSlot StateSlotID

	// pack
	PackComponents []ValueExprId
}

// FieldIntrinsic names a per-element source recognized by the pack (§3):
// normalizedIndex, index, randomId, and similar.
const (
	IntrinsicNormalizedIndex = "normalizedIndex"
	IntrinsicIndex           = "index"
	IntrinsicRandomId        = "randomId"
)
