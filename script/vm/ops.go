package vm

import "github.com/embervale/actioncore/fx"

// unaryOp/binaryOp/ternaryOp implement the fixed-point semantics of
// §3.1/§4.8.2's numeric, exponential, and circular opcodes. All arithmetic
// is the saturating fx.Fx arithmetic defined in package fx; nothing here
// introduces float rounding.
func unaryOp(op Opcode, x fx.Fx) fx.Fx {
	switch op {
	case OpMov:
		return x
	case OpNeg:
		return x.Neg()
	case OpNot:
		if x == 0 {
			return fx.One
		}
		return fx.Zero
	case OpAbs:
		return x.Abs()
	case OpFloor:
		return x.Floor()
	case OpCeil:
		return x.Ceil()
	case OpRound:
		return x.Round()
	case OpSaturate:
		return fx.Saturate(x)
	case OpSqrt:
		return fx.Sqrt(x)
	case OpExp:
		return fx.Exp(x)
	case OpDegrees:
		return fx.Degrees(x)
	case OpRadians:
		return fx.Radians(x)
	case OpSin:
		return fx.Sin(x)
	case OpCos:
		return fx.Cos(x)
	case OpTan:
		return fx.Tan(x)
	default:
		return 0
	}
}

func boolFx(b bool) fx.Fx {
	if b {
		return fx.One
	}
	return fx.Zero
}

func binaryOp(op Opcode, a, b fx.Fx) fx.Fx {
	switch op {
	case OpMul:
		return a.Mul(b)
	case OpDiv:
		return a.Div(b)
	case OpRem:
		return a.Rem(b)
	case OpAdd:
		return a.Add(b)
	case OpSub:
		return a.Sub(b)
	case OpLt:
		return boolFx(a < b)
	case OpLe:
		return boolFx(a <= b)
	case OpGt:
		return boolFx(a > b)
	case OpGe:
		return boolFx(a >= b)
	case OpEq:
		return boolFx(a == b)
	case OpNe:
		return boolFx(a != b)
	case OpMin:
		return fx.Min2(a, b)
	case OpMax:
		return fx.Max2(a, b)
	default:
		return 0
	}
}

// ternaryOp covers IfElse0/1 (a=cond, b=x, c=y) and Clamp/Lerp (a=x, b,
// c=min/max or y/s).
func ternaryOp(op Opcode, a, b, c fx.Fx) fx.Fx {
	switch op {
	case OpIfElse0:
		if a == 0 {
			return b
		}
		return c
	case OpIfElse1:
		if a != 0 {
			return b
		}
		return c
	case OpClamp:
		return fx.Clamp(a, b, c)
	case OpLerp:
		return fx.Lerp(a, b, c)
	default:
		return 0
	}
}
