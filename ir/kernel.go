package ir

// Opcode is a member of the closed arithmetic-kernel enumeration (§3).
// Arithmetic MUST be spelled as an opcode; a named kernel from the
// arithmetic denylist is a compile-time regression (§6, §8).
type Opcode int

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpSin
	OpCos
	OpSqrt
	OpExp
	OpLog
	OpAbs
	OpFloor
	OpCeil
	OpRound
	OpFract
	OpSign
	OpWrap01
	OpClamp
	OpLerp
	OpPow
	OpMin
	OpMax
	OpHash
	OpGt
	OpLt
	OpEq
)

var opcodeNames = [...]string{
	"Add", "Sub", "Mul", "Div", "Mod", "Sin", "Cos", "Sqrt", "Exp", "Log",
	"Abs", "Floor", "Ceil", "Round", "Fract", "Sign", "Wrap01", "Clamp",
	"Lerp", "Pow", "Min", "Max", "Hash", "Gt", "Lt", "Eq",
}

func (o Opcode) String() string {
	if int(o) < 0 || int(o) >= len(opcodeNames) {
		return "UnknownOp"
	}
	return opcodeNames[o]
}

// arithmeticDenylist names arithmetic-looking kernel names that must never
// be used for a named kernel; they exist purely to catch a regression where
// arithmetic leaks into a named kernel instead of an opcode path (§6, §8).
var arithmeticDenylist = map[string]bool{
	"fieldAdd":       true,
	"fieldSubtract":  true,
	"simplexNoise1D": true,
	"polygonVertex":  true,
}

// KernelFn is either an opcode or a named kernel (e.g. "oscSin",
// "packVec2", "packColor"). The two are mutually exclusive; IsOpcode
// distinguishes them.
type KernelFn struct {
	isOpcode bool
	opcode   Opcode
	name     string
}

// OpcodeFn wraps a closed-enum arithmetic opcode as a KernelFn.
func OpcodeFn(op Opcode) KernelFn {
	return KernelFn{isOpcode: true, opcode: op}
}

// Kernel wraps a named, non-arithmetic kernel as a KernelFn. Panics if name
// collides with the arithmetic denylist — named arithmetic kernels are
// forbidden outright, not just discouraged.
func Kernel(name string) KernelFn {
	if arithmeticDenylist[name] {
		panic("ir: named arithmetic kernel is forbidden: " + name)
	}
	return KernelFn{name: name}
}

func (k KernelFn) IsOpcode() bool { return k.isOpcode }
func (k KernelFn) Opcode() Opcode { return k.opcode }
func (k KernelFn) Name() string {
	if k.isOpcode {
		return k.opcode.String()
	}
	return k.name
}

func (k KernelFn) String() string { return k.Name() }
