package vm

// Opcode identifies one instruction. Every opcode's operand layout is fixed
// (spec.md §4.8.2): the generator and executor agree on it by switching on
// this value, never by a variable-length encoding.
type Opcode uint16

const (
	OpNop Opcode = iota

	// Jump family. JmpCmp/JmpSet/JmpCas read their jump target from the
	// const segment (a ScriptAddr pointing at a stored pc), so back-patching
	// a branch target never shifts code-segment offsets (spec.md §4.8.6).
	OpJmp     // Jmp(pc)
	OpJmpCmp  // JmpCmp(cond, pc) — jump if cond == 0
	OpJmpSet  // JmpSet(src, dst, pc) — move then jump, unconditionally
	OpJmpCas0 // JmpCas0(cond, src, dst, pc) — move+jump iff cond == 0
	OpJmpCas1 // JmpCas1(cond, src, dst, pc) — move+jump iff cond != 0

	// Unary.
	OpMov
	OpNeg
	OpNot // Not(x) = 1 if x == 0 else 0

	// Binary.
	OpMul
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe

	// Ternary select: IfElseN(c, x, y, dst) picks x if (c!=0)==flag else y.
	OpIfElse0
	OpIfElse1

	// Numeric.
	OpAbs
	OpMin
	OpMax
	OpFloor
	OpCeil
	OpRound
	OpClamp    // Clamp(x, min, max)
	OpSaturate // Saturate(x) -> [0,1]
	OpLerp     // Lerp(x, y, s)

	// Exp.
	OpSqrt
	OpExp

	// Circular.
	OpDegrees
	OpRadians
	OpSin
	OpCos
	OpTan

	// Extern method dispatch: opcode plus a packed (var_id, var_seg) word
	// after the opcode, then the method's source operands, then (expr form
	// only) a destination. Statement forms leave dst unused.
	OpExternStmt
	OpExternExpr
)

func (op Opcode) String() string {
	switch op {
	case OpNop:
		return "Nop"
	case OpJmp:
		return "Jmp"
	case OpJmpCmp:
		return "JmpCmp"
	case OpJmpSet:
		return "JmpSet"
	case OpJmpCas0:
		return "JmpCas0"
	case OpJmpCas1:
		return "JmpCas1"
	case OpMov:
		return "Mov"
	case OpNeg:
		return "Neg"
	case OpNot:
		return "Not"
	case OpMul:
		return "Mul"
	case OpDiv:
		return "Div"
	case OpRem:
		return "Rem"
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpLt:
		return "Lt"
	case OpLe:
		return "Le"
	case OpGt:
		return "Gt"
	case OpGe:
		return "Ge"
	case OpEq:
		return "Eq"
	case OpNe:
		return "Ne"
	case OpIfElse0:
		return "IfElse0"
	case OpIfElse1:
		return "IfElse1"
	case OpAbs:
		return "Abs"
	case OpMin:
		return "Min"
	case OpMax:
		return "Max"
	case OpFloor:
		return "Floor"
	case OpCeil:
		return "Ceil"
	case OpRound:
		return "Round"
	case OpClamp:
		return "Clamp"
	case OpSaturate:
		return "Saturate"
	case OpLerp:
		return "Lerp"
	case OpSqrt:
		return "Sqrt"
	case OpExp:
		return "Exp"
	case OpDegrees:
		return "Degrees"
	case OpRadians:
		return "Radians"
	case OpSin:
		return "Sin"
	case OpCos:
		return "Cos"
	case OpTan:
		return "Tan"
	case OpExternStmt:
		return "ExternStmt"
	case OpExternExpr:
		return "ExternExpr"
	default:
		return "Illegal"
	}
}

// IsUnary/IsBinary/IsTernary classify the fixed-arity opcodes that
// both the codegen and the executor dispatch identically over; the Jump
// family and Extern family have their own bespoke encodings and are not
// covered here.
func IsUnary(op Opcode) bool {
	switch op {
	case OpMov, OpNeg, OpNot, OpAbs, OpFloor, OpCeil, OpRound, OpSaturate, OpSqrt, OpExp, OpDegrees, OpRadians, OpSin, OpCos, OpTan:
		return true
	default:
		return false
	}
}

func IsBinary(op Opcode) bool {
	switch op {
	case OpMul, OpDiv, OpRem, OpAdd, OpSub, OpLt, OpLe, OpGt, OpGe, OpEq, OpNe, OpMin, OpMax:
		return true
	default:
		return false
	}
}

func IsTernary(op Opcode) bool {
	switch op {
	case OpIfElse0, OpIfElse1, OpClamp, OpLerp:
		return true
	default:
		return false
	}
}
