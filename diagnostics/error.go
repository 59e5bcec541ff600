// Package diagnostics defines the compiler's error/warning model: error
// codes, the Where locator, severity configuration, and the partitioner
// that splits raw findings into errors/warnings/ignored (§6, §7).
package diagnostics

// Code enumerates every CompileError code named in §7.
type Code string

const (
	UnknownBlockType            Code = "UnknownBlockType"
	PortTypeMismatch             Code = "PortTypeMismatch"
	UnconnectedInput             Code = "UnconnectedInput"
	Cycle                         Code = "Cycle"
	IllegalCycle                 Code = "IllegalCycle"
	CycleWithoutStatefulBoundary Code = "CycleWithoutStatefulBoundary"
	NotImplemented               Code = "NotImplemented"
	IRValidationFailed           Code = "IRValidationFailed"
	UpstreamError                Code = "UpstreamError"
	CardinalityMismatch          Code = "CardinalityMismatch"
	ImplicitBroadcastDisallowed  Code = "ImplicitBroadcastDisallowed"
	PayloadNotAllowed            Code = "PayloadNotAllowed"
	PayloadCombinationNotAllowed Code = "PayloadCombinationNotAllowed"
	ConflictingUnits             Code = "ConflictingUnits"
	UnresolvedUnit               Code = "UnresolvedUnit"
	UnresolvedPayload            Code = "UnresolvedPayload"
	NoTimeRoot                   Code = "NoTimeRoot"
	MultipleTimeRoots            Code = "MultipleTimeRoots"
	InvalidDuration              Code = "InvalidDuration"
	BlockMissing                 Code = "BlockMissing"
	MissingOutputRegistration    Code = "MissingOutputRegistration"
	MissingInput                 Code = "MissingInput"
)

// Where locates a CompileError within the patch.
type Where struct {
	BlockID string
	Port    string
	EdgeID  string
}

// CompileError is a single compiler failure: a code, a human message, and
// an optional location (§7).
type CompileError struct {
	Code    Code
	Message string
	Where   *Where
}

func (e *CompileError) Error() string { return e.Message }

// New builds a CompileError with no location.
func New(code Code, message string) *CompileError {
	return &CompileError{Code: code, Message: message}
}

// At builds a CompileError located at a block (and optionally a port).
func At(code Code, message string, blockID string, port string) *CompileError {
	return &CompileError{Code: code, Message: message, Where: &Where{BlockID: blockID, Port: port}}
}

// AtEdge builds a CompileError located at an edge.
func AtEdge(code Code, message string, edgeID string) *CompileError {
	return &CompileError{Code: code, Message: message, Where: &Where{EdgeID: edgeID}}
}

// Aggregate is the error a pass returns when it accumulates more than one
// CompileError, per §7's "collect all errors, then throw a single
// aggregated exception" propagation policy.
type Aggregate struct {
	Errors []*CompileError
}

func (a *Aggregate) Error() string {
	if len(a.Errors) == 1 {
		return a.Errors[0].Error()
	}
	msg := ""
	for i, e := range a.Errors {
		if i > 0 {
			msg += "; "
		}
		msg += e.Error()
	}
	return msg
}

// NewAggregate wraps one or more errors, or returns nil if errs is empty.
func NewAggregate(errs []*CompileError) error {
	if len(errs) == 0 {
		return nil
	}
	return &Aggregate{Errors: errs}
}
