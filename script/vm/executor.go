package vm

import (
	"errors"
	"fmt"

	"github.com/embervale/actioncore/fx"
)

// registerCount is the size of the executor's own register segment
// (spec.md §4.8.1: "segment 1 = the executor's register stack (64 words)").
const registerCount = 64

// RegisterCount exposes the register stack size to the code generator,
// which must not allocate beyond it.
const RegisterCount = registerCount

// Sentinel errors for script runtime faults (spec.md §7). A fault aborts
// execution cleanly before any further mutation; writes performed before
// the fault remain visible — the VM never rolls back.
var (
	ErrClassMismatch      = errors.New("vm: context class does not match program")
	ErrBadOpcode          = errors.New("vm: invalid opcode")
	ErrSegmentFault       = errors.New("vm: segment overflow or unbound segment")
	ErrWriteToReadOnly    = errors.New("vm: write to read-only segment")
	ErrStepLimitExceeded  = errors.New("vm: instruction step limit exceeded")
	ErrMethodNotSupported = errors.New("vm: segment does not support extern methods")
)

// Executor is the stateful object that runs a compiled Program against a
// Context (spec.md §4.8.6): a pc cursor, the 16-entry segment pointer
// table, and a 64-entry register stack. An Executor is reusable across
// Run calls; each call resets its register stack and segment table.
type Executor struct {
	pc   int
	regs [registerCount]int64
	segs [MaxSegments]Segment
}

// NewExecutor constructs an idle executor.
func NewExecutor() *Executor { return &Executor{} }

// Run executes byteCode against ctx from pc 0 until a terminating
// instruction (falling off the end of Code) or a fault (spec.md §4.8.6).
func (e *Executor) Run(program *Program, ctx Context) error {
	if program.CtxID != ctx.CtxID() {
		return ErrClassMismatch
	}

	e.regs = [registerCount]int64{}
	for i := range e.segs {
		e.segs[i] = nil
	}
	e.segs[SegConst] = constSegment{words: program.Const}
	e.segs[SegRegister] = registerSegment{words: &e.regs}
	ctx.FillSegments(e.segs[SegContextBase:])

	e.pc = 0
	limit := program.NumInstructionWords()
	steps := 0
	for e.pc < len(program.Code) {
		if steps > limit {
			return ErrStepLimitExceeded
		}
		steps++
		if err := e.step(program); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) fetchAddr(program *Program) ScriptAddr {
	a := ScriptAddr(program.Code[e.pc])
	e.pc++
	return a
}

func (e *Executor) read(addr ScriptAddr) (int64, error) {
	seg := e.segs[addr.Segment()]
	if seg == nil || addr.Offset() >= seg.Len() {
		return 0, ErrSegmentFault
	}
	return seg.Get(addr.Offset()), nil
}

func (e *Executor) write(addr ScriptAddr, v int64) error {
	seg := e.segs[addr.Segment()]
	if seg == nil || addr.Offset() >= seg.Len() {
		return ErrSegmentFault
	}
	if !seg.Writable() {
		return ErrWriteToReadOnly
	}
	seg.Set(addr.Offset(), v)
	return nil
}

// readFx/writeFx interpret a segment word as fx.Fx, the common case for
// every opcode except id-typed Mov and the raw var_id/var_seg packing.
func (e *Executor) readFx(addr ScriptAddr) (fx.Fx, error) {
	v, err := e.read(addr)
	return fx.Fx(v), err
}

func (e *Executor) writeFx(addr ScriptAddr, v fx.Fx) error {
	return e.write(addr, int64(v))
}

// jumpTo reads the pc target stored at a const-segment address and moves
// the cursor there. Targets are always stored in the const segment so that
// back-patching a branch never shifts code-segment word offsets (spec.md
// §4.8.5/§4.8.6).
func (e *Executor) jumpTo(pcAddr ScriptAddr) error {
	target, err := e.read(pcAddr)
	if err != nil {
		return err
	}
	e.pc = int(target)
	return nil
}

func (e *Executor) step(program *Program) error {
	op := Opcode(program.Code[e.pc])
	e.pc++

	switch {
	case op == OpNop:
		return nil

	case op == OpJmp:
		pcAddr := e.fetchAddr(program)
		return e.jumpTo(pcAddr)

	case op == OpJmpCmp:
		cond := e.fetchAddr(program)
		pcAddr := e.fetchAddr(program)
		v, err := e.readFx(cond)
		if err != nil {
			return err
		}
		if v == 0 {
			return e.jumpTo(pcAddr)
		}
		return nil

	case op == OpJmpSet:
		src := e.fetchAddr(program)
		dst := e.fetchAddr(program)
		pcAddr := e.fetchAddr(program)
		v, err := e.read(src)
		if err != nil {
			return err
		}
		if err := e.write(dst, v); err != nil {
			return err
		}
		return e.jumpTo(pcAddr)

	case op == OpJmpCas0 || op == OpJmpCas1:
		cond := e.fetchAddr(program)
		src := e.fetchAddr(program)
		dst := e.fetchAddr(program)
		pcAddr := e.fetchAddr(program)
		c, err := e.readFx(cond)
		if err != nil {
			return err
		}
		take := c == 0
		if op == OpJmpCas1 {
			take = c != 0
		}
		if !take {
			return nil
		}
		v, err := e.read(src)
		if err != nil {
			return err
		}
		if err := e.write(dst, v); err != nil {
			return err
		}
		return e.jumpTo(pcAddr)

	case IsUnary(op):
		src := e.fetchAddr(program)
		dst := e.fetchAddr(program)
		x, err := e.readFx(src)
		if err != nil {
			return err
		}
		return e.writeFx(dst, unaryOp(op, x))

	case IsBinary(op):
		a := e.fetchAddr(program)
		b := e.fetchAddr(program)
		dst := e.fetchAddr(program)
		x, err := e.readFx(a)
		if err != nil {
			return err
		}
		y, err := e.readFx(b)
		if err != nil {
			return err
		}
		return e.writeFx(dst, binaryOp(op, x, y))

	case IsTernary(op):
		a := e.fetchAddr(program)
		b := e.fetchAddr(program)
		c := e.fetchAddr(program)
		dst := e.fetchAddr(program)
		x, err := e.readFx(a)
		if err != nil {
			return err
		}
		y, err := e.readFx(b)
		if err != nil {
			return err
		}
		z, err := e.readFx(c)
		if err != nil {
			return err
		}
		return e.writeFx(dst, ternaryOp(op, x, y, z))

	case op == OpExternStmt || op == OpExternExpr:
		return e.execExtern(program, op)

	default:
		return fmt.Errorf("%w: %d", ErrBadOpcode, op)
	}
}

// execExtern decodes (var_id, var_seg) packed into one word, then argc,
// then that many source operands, then (expression form only) a
// destination (spec.md §4.8.2).
func (e *Executor) execExtern(program *Program, op Opcode) error {
	packed := program.Code[e.pc]
	e.pc++
	methodID := int(packed >> 8)
	varSeg := int(packed & 0xFF)

	argc := int(program.Code[e.pc])
	e.pc++

	args := make([]int64, argc)
	for i := range args {
		addr := e.fetchAddr(program)
		v, err := e.read(addr)
		if err != nil {
			return err
		}
		args[i] = v
	}

	seg := e.segs[varSeg]
	if seg == nil {
		return ErrSegmentFault
	}
	methodSeg, ok := seg.(MethodSegment)
	if !ok {
		return ErrMethodNotSupported
	}
	result, _ := methodSeg.CallMethod(methodID, args)

	if op == OpExternExpr {
		dst := e.fetchAddr(program)
		return e.write(dst, result)
	}
	return nil
}
