package vm

// Segment is one addressable memory region a script instruction can read
// (and, if Writable, write) via a 12-bit offset (spec.md §4.8.1). Every
// slot holds a raw 64-bit word; numeric opcodes reinterpret it as an fx.Fx,
// id-typed field references as a raw identifier value.
type Segment interface {
	Writable() bool
	Len() int
	Get(offset int) int64
	Set(offset int, v int64)
}

// MethodSegment additionally exposes the extern-method table a context
// segment may provide for OpExternStmt/OpExternExpr (spec.md §4.8.2,
// §4.8.6). CallMethod's isExpr result tells whether result is meaningful.
// The executor does not read it: the generator only ever emits
// OpExternExpr against a method whose schema marks it IsExpr, and the
// executor writes result to the destination as returned.
type MethodSegment interface {
	Segment
	CallMethod(methodID int, args []int64) (result int64, isExpr bool)
}

// Context binds a compiled program's context segments (2..) to concrete
// backing storage for one execution (spec.md §4.8.1, §4.8.6).
type Context interface {
	// CtxID must match Program.CtxID, or Run fails with ErrClassMismatch.
	CtxID() uint8
	// FillSegments installs this context's segments starting at absolute
	// segment index SegContextBase; dst has length MaxSegments-SegContextBase.
	// A nil entry means that segment index is unused by this context.
	FillSegments(dst []Segment)
}

// constSegment is the read-only view of Program.Const as segment 0.
type constSegment struct{ words []int64 }

func (constSegment) Writable() bool         { return false }
func (c constSegment) Len() int             { return len(c.words) }
func (c constSegment) Get(offset int) int64 { return c.words[offset] }
func (constSegment) Set(int, int64)         { panic("vm: write to const segment") }

// registerSegment is the executor's own 64-word scratch stack, segment 1.
type registerSegment struct{ words *[registerCount]int64 }

func (registerSegment) Writable() bool            { return true }
func (registerSegment) Len() int                  { return registerCount }
func (r registerSegment) Get(offset int) int64     { return r.words[offset] }
func (r registerSegment) Set(offset int, v int64) { r.words[offset] = v }
