// Package codegen is the compile pipeline's final stage: a single-pass
// AST-to-bytecode generator (spec.md §4.8.5) producing a vm.Program. It
// folds literal/field reads straight into their consuming instruction's
// operand slots rather than routing every value through a temporary
// register, stores all jump targets in the const segment so back-patching
// never shifts code offsets (spec.md §4.8.6), and lowers `&&`/`||` to the
// VM's JmpCas0/JmpCas1 move-and-jump instructions so the right-hand side
// is only evaluated when it can affect the result.
package codegen

import (
	"errors"
	"fmt"

	"github.com/embervale/actioncore/script/ast"
	"github.com/embervale/actioncore/script/token"
	"github.com/embervale/actioncore/script/vm"
)

var (
	// ErrRegistersExhausted means an expression nested too deeply for the
	// 64-entry register stack (spec.md §4.8.1).
	ErrRegistersExhausted = errors.New("codegen: register stack exhausted")
	// ErrConstOverflow means a program needed more than 4096 const-segment
	// words (literals, id values, jump targets).
	ErrConstOverflow = errors.New("codegen: const segment overflow")
)

var binaryOpcode = map[token.Type]vm.Opcode{
	token.PLUS:    vm.OpAdd,
	token.MINUS:   vm.OpSub,
	token.STAR:    vm.OpMul,
	token.SLASH:   vm.OpDiv,
	token.PERCENT: vm.OpRem,
	token.LT:      vm.OpLt,
	token.LE:      vm.OpLe,
	token.GT:      vm.OpGt,
	token.GE:      vm.OpGe,
	token.EQ:      vm.OpEq,
	token.NEQ:     vm.OpNe,
}

var builtinOpcode = map[string]vm.Opcode{
	"abs": vm.OpAbs, "floor": vm.OpFloor, "ceil": vm.OpCeil, "round": vm.OpRound,
	"saturate": vm.OpSaturate, "sqrt": vm.OpSqrt, "exp": vm.OpExp,
	"degrees": vm.OpDegrees, "radians": vm.OpRadians,
	"sin": vm.OpSin, "cos": vm.OpCos, "tan": vm.OpTan,
	"min": vm.OpMin, "max": vm.OpMax,
	"clamp": vm.OpClamp, "lerp": vm.OpLerp,
}

// regAlloc is a LIFO free-list over the executor's fixed register stack:
// expressions allocate a register for their result and free it once the
// consumer has read it, so sibling subexpressions reuse slots instead of
// walking the stack forward forever.
type regAlloc struct {
	next int
	free []int
}

func (r *regAlloc) alloc() (int, error) {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		return idx, nil
	}
	if r.next >= vm.RegisterCount {
		return 0, ErrRegistersExhausted
	}
	idx := r.next
	r.next++
	return idx, nil
}

func (r *regAlloc) release(idx int) {
	r.free = append(r.free, idx)
}

type generator struct {
	ctx        ast.ContextSpec
	code       []uint16
	constWords []int64
	constIndex map[int64]int
	regs       regAlloc
}

// Generate compiles prog to a vm.Program tagged with ctx.CtxID.
func Generate(prog *ast.Program, ctx ast.ContextSpec) (*vm.Program, error) {
	g := &generator{ctx: ctx, constIndex: make(map[int64]int)}
	for _, stmt := range prog.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return nil, err
		}
	}
	return &vm.Program{CtxID: ctx.CtxID, Const: g.constWords, Code: g.code}, nil
}

func (g *generator) emit(word uint16) { g.code = append(g.code, word) }
func (g *generator) emitAddr(a vm.ScriptAddr) { g.emit(uint16(a)) }
func (g *generator) pc() int { return len(g.code) }

// addConst appends or reuses a const-segment slot for a plain literal
// value. Jump-target placeholders never go through this path: each branch
// needs its own slot to back-patch independently of any other branch that
// happens to currently hold the same target pc.
func (g *generator) addConst(v int64) (vm.ScriptAddr, error) {
	if idx, ok := g.constIndex[v]; ok {
		return vm.MakeAddr(vm.SegConst, idx), nil
	}
	idx := len(g.constWords)
	if idx > vm.MaxOffset {
		return 0, ErrConstOverflow
	}
	g.constWords = append(g.constWords, v)
	g.constIndex[v] = idx
	return vm.MakeAddr(vm.SegConst, idx), nil
}

func (g *generator) addConstUnique(v int64) (vm.ScriptAddr, error) {
	idx := len(g.constWords)
	if idx > vm.MaxOffset {
		return 0, ErrConstOverflow
	}
	g.constWords = append(g.constWords, v)
	return vm.MakeAddr(vm.SegConst, idx), nil
}

func (g *generator) patchConst(addr vm.ScriptAddr, v int64) {
	g.constWords[addr.Offset()] = v
}

func fieldAddr(ref *ast.FieldRef) vm.ScriptAddr {
	return vm.MakeAddr(ref.Seg.Index, ref.Desc.Offset)
}

// genExpr evaluates e into some address and reports whether that address
// is a temporary register the caller must release after use.
func (g *generator) genExpr(e ast.Expr) (vm.ScriptAddr, bool, error) {
	return g.genExprTo(e, nil)
}

// genExprTo evaluates e. If want is non-nil the result is written directly
// into *want (no intermediate register, no redundant Mov chain); otherwise
// a fresh temp register is allocated for it.
func (g *generator) genExprTo(e ast.Expr, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return g.genLeaf(int64(n.Value), want)
	case *ast.NamedConst:
		return g.genLeaf(int64(n.Value), want)
	case *ast.IDRef:
		return g.genLeaf(n.Value, want)
	case *ast.FieldRef:
		addr := fieldAddr(n)
		if want == nil {
			return addr, false, nil
		}
		g.emit(uint16(vm.OpMov))
		g.emitAddr(addr)
		g.emitAddr(*want)
		return *want, false, nil
	case *ast.UnaryExpr:
		return g.genUnary(n, want)
	case *ast.BinaryExpr:
		return g.genBinary(n, want)
	case *ast.CallExpr:
		return g.genCall(n, want)
	default:
		return 0, false, fmt.Errorf("codegen: unknown expression node %T", e)
	}
}

func (g *generator) genLeaf(v int64, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	addr, err := g.addConst(v)
	if err != nil {
		return 0, false, err
	}
	if want == nil {
		return addr, false, nil
	}
	g.emit(uint16(vm.OpMov))
	g.emitAddr(addr)
	g.emitAddr(*want)
	return *want, false, nil
}

func (g *generator) genUnary(n *ast.UnaryExpr, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	if n.Op == token.PLUS {
		return g.genExprTo(n.X, want)
	}
	op := vm.OpNeg
	if n.Op == token.BANG {
		op = vm.OpNot
	}
	xAddr, xTemp, err := g.genExpr(n.X)
	if err != nil {
		return 0, false, err
	}
	dst, isTemp, err := g.dest(want)
	if err != nil {
		return 0, false, err
	}
	g.emit(uint16(op))
	g.emitAddr(xAddr)
	g.emitAddr(dst)
	if xTemp {
		g.regs.release(xAddr.Offset())
	}
	return dst, isTemp, nil
}

// dest returns want if set, else allocates a fresh temp register.
func (g *generator) dest(want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	if want != nil {
		return *want, false, nil
	}
	idx, err := g.regs.alloc()
	if err != nil {
		return 0, false, err
	}
	return vm.MakeAddr(vm.SegRegister, idx), true, nil
}

func (g *generator) genBinary(n *ast.BinaryExpr, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	if n.Op == token.ANDAND || n.Op == token.OROR {
		return g.genShortCircuit(n, want)
	}

	op, ok := binaryOpcode[n.Op]
	if !ok {
		return 0, false, fmt.Errorf("codegen: unsupported binary operator %s", n.Op)
	}
	aAddr, aTemp, err := g.genExpr(n.X)
	if err != nil {
		return 0, false, err
	}
	bAddr, bTemp, err := g.genExpr(n.Y)
	if err != nil {
		return 0, false, err
	}
	dst, isTemp, err := g.dest(want)
	if err != nil {
		return 0, false, err
	}
	g.emit(uint16(op))
	g.emitAddr(aAddr)
	g.emitAddr(bAddr)
	g.emitAddr(dst)
	if aTemp {
		g.regs.release(aAddr.Offset())
	}
	if bTemp {
		g.regs.release(bAddr.Offset())
	}
	return dst, isTemp, nil
}

// genShortCircuit lowers `a && b` / `a || b` to a JmpCas0/JmpCas1: the left
// operand decides whether the result is already known — `&&` short-circuits
// on a falsy (== 0) left operand, `||` on a truthy one — and in that case
// the result is a's own value, not a normalized boolean (so e.g. `9 || x`
// yields 9, and the right operand is never evaluated). Only when the left
// operand doesn't decide the result is the right operand evaluated, written
// straight into dst.
func (g *generator) genShortCircuit(n *ast.BinaryExpr, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	aAddr, aTemp, err := g.genExpr(n.X)
	if err != nil {
		return 0, false, err
	}
	dst, isTemp, err := g.dest(want)
	if err != nil {
		return 0, false, err
	}

	endLabel, err := g.addConstUnique(0)
	if err != nil {
		return 0, false, err
	}

	op := vm.OpJmpCas0
	if n.Op == token.OROR {
		op = vm.OpJmpCas1
	}
	g.emit(uint16(op))
	g.emitAddr(aAddr) // cond
	g.emitAddr(aAddr) // src: keep a's own value, not a booleanized constant
	g.emitAddr(dst)
	g.emitAddr(endLabel)
	if aTemp {
		g.regs.release(aAddr.Offset())
	}

	bAddr, bTemp, err := g.genExprTo(n.Y, &dst)
	if err != nil {
		return 0, false, err
	}
	if bTemp {
		g.regs.release(bAddr.Offset())
	}

	g.patchConst(endLabel, int64(g.pc()))
	return dst, isTemp, nil
}

func (g *generator) genCall(n *ast.CallExpr, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	if n.Prefix == "" {
		return g.genBuiltinCall(n, want)
	}
	if !n.Method.IsExpr {
		return 0, false, fmt.Errorf("codegen: %s.%s does not return a value", n.Prefix, n.Name)
	}
	return g.genExternCall(n, vm.OpExternExpr, want)
}

func (g *generator) genBuiltinCall(n *ast.CallExpr, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	op, ok := builtinOpcode[n.Name]
	if !ok {
		return 0, false, fmt.Errorf("codegen: unknown builtin function %q", n.Name)
	}

	argAddrs := make([]vm.ScriptAddr, len(n.Args))
	argTemps := make([]bool, len(n.Args))
	for i, a := range n.Args {
		addr, temp, err := g.genExpr(a)
		if err != nil {
			return 0, false, err
		}
		argAddrs[i], argTemps[i] = addr, temp
	}
	dst, isTemp, err := g.dest(want)
	if err != nil {
		return 0, false, err
	}

	g.emit(uint16(op))
	for _, a := range argAddrs {
		g.emitAddr(a)
	}
	g.emitAddr(dst)
	for i, t := range argTemps {
		if t {
			g.regs.release(argAddrs[i].Offset())
		}
	}
	return dst, isTemp, nil
}

// genExternCall emits an extern call (spec.md §4.8.2): opcode, then a
// packed (method_id, var_seg) word, then argc, then each argument address,
// then (expression form only) a destination address.
func (g *generator) genExternCall(n *ast.CallExpr, op vm.Opcode, want *vm.ScriptAddr) (vm.ScriptAddr, bool, error) {
	argAddrs := make([]vm.ScriptAddr, len(n.Args))
	argTemps := make([]bool, len(n.Args))
	for i, a := range n.Args {
		addr, temp, err := g.genExpr(a)
		if err != nil {
			return 0, false, err
		}
		argAddrs[i], argTemps[i] = addr, temp
	}

	g.emit(uint16(op))
	g.emit(uint16(n.Method.ID<<8 | n.Seg.Index))
	g.emit(uint16(len(n.Args)))
	for _, a := range argAddrs {
		g.emitAddr(a)
	}

	var dst vm.ScriptAddr
	isTemp := false
	var err error
	if op == vm.OpExternExpr {
		dst, isTemp, err = g.dest(want)
		if err != nil {
			return 0, false, err
		}
		g.emitAddr(dst)
	}
	for i, t := range argTemps {
		if t {
			g.regs.release(argAddrs[i].Offset())
		}
	}
	return dst, isTemp, nil
}

func (g *generator) genStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.AssignStmt:
		return g.genAssign(n)
	case *ast.CallStmt:
		_, _, err := g.genExternOrDiscard(n.Call)
		return err
	case *ast.IfStmt:
		return g.genIf(n)
	default:
		return fmt.Errorf("codegen: unknown statement node %T", s)
	}
}

// genExternOrDiscard generates a CallStmt: an extern call always runs as
// OpExternStmt (its result, if any, is discarded), a bare builtin call is
// evaluated into a scratch register purely for its (nonexistent) side
// effect and immediately released.
func (g *generator) genExternOrDiscard(call *ast.CallExpr) (vm.ScriptAddr, bool, error) {
	if call.Prefix != "" {
		return g.genExternCall(call, vm.OpExternStmt, nil)
	}
	addr, temp, err := g.genBuiltinCall(call, nil)
	if err != nil {
		return 0, false, err
	}
	if temp {
		g.regs.release(addr.Offset())
	}
	return addr, false, nil
}

func (g *generator) genAssign(n *ast.AssignStmt) error {
	target := fieldAddr(&n.Target)
	switch n.Op {
	case ast.AssignSet:
		_, _, err := g.genExprTo(n.Value, &target)
		return err
	case ast.AssignAdd, ast.AssignSub:
		valAddr, valTemp, err := g.genExpr(n.Value)
		if err != nil {
			return err
		}
		op := vm.OpAdd
		if n.Op == ast.AssignSub {
			op = vm.OpSub
		}
		g.emit(uint16(op))
		g.emitAddr(target)
		g.emitAddr(valAddr)
		g.emitAddr(target)
		if valTemp {
			g.regs.release(valAddr.Offset())
		}
		return nil
	default:
		return fmt.Errorf("codegen: unknown assignment operator %d", n.Op)
	}
}

// genIf lowers an if/elsif/else chain to a sequence of JmpCmp tests, each
// one jumping to the next branch's test (or, on the last branch, to the
// shared end label) when its condition is false. Every non-final branch
// that executes its body jumps to the same end label afterward so control
// never falls through into a sibling branch.
func (g *generator) genIf(n *ast.IfStmt) error {
	type branch struct {
		cond ast.Expr
		body []ast.Stmt
	}
	branches := []branch{{n.Cond, n.Then}}
	for _, e := range n.Elifs {
		branches = append(branches, branch{e.Cond, e.Body})
	}

	var endJumps []vm.ScriptAddr
	for i, b := range branches {
		condAddr, condTemp, err := g.genExpr(b.cond)
		if err != nil {
			return err
		}
		nextLabel, err := g.addConstUnique(0)
		if err != nil {
			return err
		}
		g.emit(uint16(vm.OpJmpCmp))
		g.emitAddr(condAddr)
		g.emitAddr(nextLabel)
		if condTemp {
			g.regs.release(condAddr.Offset())
		}

		for _, stmt := range b.body {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}

		isLast := i == len(branches)-1
		if !isLast || n.Else != nil {
			endLabel, err := g.addConstUnique(0)
			if err != nil {
				return err
			}
			g.emit(uint16(vm.OpJmp))
			g.emitAddr(endLabel)
			endJumps = append(endJumps, endLabel)
		}
		g.patchConst(nextLabel, int64(g.pc()))
	}

	if n.Else != nil {
		for _, stmt := range n.Else {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
	}

	end := int64(g.pc())
	for _, j := range endJumps {
		g.patchConst(j, end)
	}
	return nil
}
