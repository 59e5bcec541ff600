package blocks

import (
	"github.com/sarchlab/patchc/diagnostics"
	"github.com/sarchlab/patchc/ir"
	"github.com/sarchlab/patchc/registry"
)

// opcodeArity distinguishes the shapes of arithmetic kernel an opcode
// block lowers to: kernelMap for one operand, kernelZip for more.
type opcodeArity int

const (
	unary opcodeArity = iota
	binary
	ternary
)

// opcodeSpec is one row of the arithmetic block table (§3, §6: "Arithmetic
// MUST be spelled as an opcode"). Every block in the table lowers to a
// single kernelMap/kernelZip expression whose kernel is the wrapped
// Opcode — never a named kernel, so the arithmetic denylist in ir/kernel.go
// is never at risk of tripping on one of these.
type opcodeSpec struct {
	Type       string
	Opcode     ir.Opcode
	Arity      opcodeArity
	InputNames []string
	// BoolOutput marks comparison ops, whose output payload is fixed at
	// bool rather than inherited from the (still numeric) inputs.
	BoolOutput bool
}

var opcodeSpecs = []opcodeSpec{
	{Type: "Add", Opcode: ir.OpAdd, Arity: binary, InputNames: []string{"a", "b"}},
	{Type: "Sub", Opcode: ir.OpSub, Arity: binary, InputNames: []string{"a", "b"}},
	{Type: "Mul", Opcode: ir.OpMul, Arity: binary, InputNames: []string{"a", "b"}},
	{Type: "Div", Opcode: ir.OpDiv, Arity: binary, InputNames: []string{"a", "b"}},
	{Type: "Mod", Opcode: ir.OpMod, Arity: binary, InputNames: []string{"a", "b"}},
	{Type: "Pow", Opcode: ir.OpPow, Arity: binary, InputNames: []string{"base", "exponent"}},
	{Type: "Min", Opcode: ir.OpMin, Arity: binary, InputNames: []string{"a", "b"}},
	{Type: "Max", Opcode: ir.OpMax, Arity: binary, InputNames: []string{"a", "b"}},

	{Type: "Sin", Opcode: ir.OpSin, Arity: unary, InputNames: []string{"in"}},
	{Type: "Cos", Opcode: ir.OpCos, Arity: unary, InputNames: []string{"in"}},
	{Type: "Sqrt", Opcode: ir.OpSqrt, Arity: unary, InputNames: []string{"in"}},
	{Type: "Exp", Opcode: ir.OpExp, Arity: unary, InputNames: []string{"in"}},
	{Type: "Log", Opcode: ir.OpLog, Arity: unary, InputNames: []string{"in"}},
	{Type: "Abs", Opcode: ir.OpAbs, Arity: unary, InputNames: []string{"in"}},
	{Type: "Floor", Opcode: ir.OpFloor, Arity: unary, InputNames: []string{"in"}},
	{Type: "Ceil", Opcode: ir.OpCeil, Arity: unary, InputNames: []string{"in"}},
	{Type: "Round", Opcode: ir.OpRound, Arity: unary, InputNames: []string{"in"}},
	{Type: "Fract", Opcode: ir.OpFract, Arity: unary, InputNames: []string{"in"}},
	{Type: "Sign", Opcode: ir.OpSign, Arity: unary, InputNames: []string{"in"}},
	{Type: "Wrap01", Opcode: ir.OpWrap01, Arity: unary, InputNames: []string{"in"}},
	{Type: "Hash", Opcode: ir.OpHash, Arity: unary, InputNames: []string{"in"}},

	{Type: "Lerp", Opcode: ir.OpLerp, Arity: ternary, InputNames: []string{"a", "b", "t"}},
	{Type: "Clamp", Opcode: ir.OpClamp, Arity: ternary, InputNames: []string{"value", "lo", "hi"}},

	{Type: "Gt", Opcode: ir.OpGt, Arity: binary, InputNames: []string{"a", "b"}, BoolOutput: true},
	{Type: "Lt", Opcode: ir.OpLt, Arity: binary, InputNames: []string{"a", "b"}, BoolOutput: true},
	{Type: "Eq", Opcode: ir.OpEq, Arity: binary, InputNames: []string{"a", "b"}, BoolOutput: true},
}

func (s opcodeSpec) definition() *registry.BlockDefinition {
	outputPayloads := standardNumericPayloadNames()
	if s.BoolOutput {
		outputPayloads = []string{"bool"}
	}

	inputs := make([]registry.PortDecl, len(s.InputNames))
	for i, name := range s.InputNames {
		inputs[i] = registry.PortDecl{Name: name, AllowedPayloads: standardNumericPayloadNames(), Unit: "scalar", ExposedAsPort: true}
	}

	return &registry.BlockDefinition{
		Type:       s.Type,
		Label:      s.Type,
		Category:   "arithmetic",
		InputPorts: inputs,
		OutputPorts: []registry.PortDecl{
			{Name: "out", AllowedPayloads: outputPayloads, Unit: "scalar"},
		},
		Lower: s.lower(),
	}
}

func (s opcodeSpec) lower() ir.LowerFn {
	return func(ctx *ir.LowerCtx) (ir.LowerResult, error) {
		args := make([]ir.ValueExprId, len(s.InputNames))
		for i, name := range s.InputNames {
			ref, ok := ctx.Input(name)
			if !ok {
				return ir.LowerResult{}, diagnostics.At(
					diagnostics.MissingInput,
					"required input \""+name+"\" on block "+ctx.BlockID+" has no writer",
					ctx.BlockID, name,
				)
			}
			args[i] = ref.ID
		}

		t := ctx.OutputTypes["out"]
		fn := ctx.Builder.Opcode(s.Opcode)

		var id ir.ValueExprId
		if s.Arity == unary {
			id = ctx.Builder.KernelMap(args[0], fn, t)
		} else {
			id = ctx.Builder.KernelZip(args, fn, t)
		}
		ref := ctx.Builder.AllocSlot(id, t, 0)
		return ir.LowerResult{OutputsByID: map[string]ir.ValueRefExpr{"out": ref}}, nil
	}
}
