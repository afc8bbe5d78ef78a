package vm

// Program is one compiled script: a const segment of 64-bit words and a
// code segment of 16-bit instruction words (spec.md §3.7). Const words are
// untyped storage — a numeric literal's raw Q32.32 bits, an id value, or a
// jump target pc — reinterpreted by whichever opcode reads them.
type Program struct {
	CtxID uint8
	Const []int64
	Code  []uint16
}

// NumInstructionWords bounds the instruction count: every instruction
// occupies at least one code word, so len(Code) is always a safe upper
// bound on how many instructions Run may decode (spec.md §8's "terminates
// in at most K instructions for programs without back-edges").
func (p *Program) NumInstructionWords() int { return len(p.Code) }
