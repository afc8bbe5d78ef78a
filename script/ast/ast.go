// Package ast defines the scripting language's abstract syntax tree and
// the compile-time context schema (spec.md §4.8.1, §4.8.3) the parser
// resolves field references and extern calls against.
package ast

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/script/token"
)

// FieldDesc describes one addressable field within a context segment.
type FieldDesc struct {
	Offset int
}

// MethodDesc describes one extern method a context segment exposes to
// CallStmt/CallExpr (spec.md §4.8.2's "extern methods").
type MethodDesc struct {
	ID     int
	Arity  int
	IsExpr bool // writes a result (expression call) vs. statement-only
}

// SegmentDesc is the compile-time schema for one context-bound variable
// segment (spec.md §4.8.1): the prefix scripts address it by, its absolute
// segment index (2..15), whether it is writable, and its field/method
// tables.
type SegmentDesc struct {
	Name     string
	Index    int
	Writable bool
	Fields   map[string]FieldDesc
	Methods  map[string]MethodDesc
}

// ContextSpec is the full compile-time binding environment for one script:
// the context class id a compiled program is tagged with, its segment
// schema, and the named id constants '$ident' may resolve to.
type ContextSpec struct {
	CtxID    uint8
	Segments []SegmentDesc
	Idents   map[string]int64
}

// FindSegment looks up a segment by its script-facing prefix name.
func (c ContextSpec) FindSegment(name string) (SegmentDesc, bool) {
	for _, s := range c.Segments {
		if s.Name == name {
			return s, true
		}
	}
	return SegmentDesc{}, false
}

// Node is the common interface of every AST node.
type Node interface{ node() }

// Program is the root node: a sequence of top-level statements.
type Program struct {
	Stmts []Stmt
}

func (*Program) node() {}

// Stmt is one statement: an assignment, a bare extern call, or an
// if/elsif/else chain.
type Stmt interface {
	Node
	stmt()
}

// AssignOp distinguishes '=', '+=', '-='.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
)

// AssignStmt is `lhs (=|+=|-=) expr`; lhs must resolve to a writable field.
type AssignStmt struct {
	Target FieldRef
	Op     AssignOp
	Value  Expr
}

func (*AssignStmt) node() {}
func (*AssignStmt) stmt() {}

// CallStmt is a bare extern call used for its side effect, e.g.
// `owner.apply_damage(5)`.
type CallStmt struct {
	Call *CallExpr
}

func (*CallStmt) node() {}
func (*CallStmt) stmt() {}

// ElifClause is one `elsif cond { ... }` arm.
type ElifClause struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is an if/elsif*/else? chain.
type IfStmt struct {
	Cond  Expr
	Then  []Stmt
	Elifs []ElifClause
	Else  []Stmt // nil if no else clause
}

func (*IfStmt) node() {}
func (*IfStmt) stmt() {}

// Expr is one expression node.
type Expr interface {
	Node
	expr()
}

// NumberLit is a decimal-float or 0x-hex-int literal, already converted to
// its Fx representation.
type NumberLit struct {
	Value fx.Fx
}

func (*NumberLit) node() {}
func (*NumberLit) expr() {}

// NamedConst is one of the grammar's reserved numeric identifiers (PI, E,
// TAU, MAX, MIN).
type NamedConst struct {
	Name  string
	Value fx.Fx
}

func (*NamedConst) node() {}
func (*NamedConst) expr() {}

// FieldRef is a `<prefix>.<field>` reference, resolved against a
// ContextSpec at parse time (spec.md §4.8.3).
type FieldRef struct {
	Prefix string
	Field  string
	Seg    SegmentDesc
	Desc   FieldDesc
}

func (*FieldRef) node() {}
func (*FieldRef) expr() {}

// IDRef is a `$ident` reference, typed ID rather than Num; it resolves to
// a raw id word via ContextSpec.Idents.
type IDRef struct {
	Name  string
	Value int64
}

func (*IDRef) node() {}
func (*IDRef) expr() {}

// UnaryExpr is a prefix `+`, `-`, or `!` applied to X.
type UnaryExpr struct {
	Op token.Type
	X  Expr
}

func (*UnaryExpr) node() {}
func (*UnaryExpr) expr() {}

// BinaryExpr is one binary operator application from the climber's table:
// `||, &&, ==, !=, <, <=, >, >=, +, -, *, /, %`.
type BinaryExpr struct {
	Op token.Type
	X  Expr
	Y  Expr
}

func (*BinaryExpr) node() {}
func (*BinaryExpr) expr() {}

// CallExpr is a function call: either a built-in numeric function
// (Prefix == "") or an extern method bound to a context segment.
type CallExpr struct {
	Prefix string // "" for a built-in, else a ContextSpec segment name
	Name   string
	Args   []Expr

	// Resolved against the function/method registry during parsing.
	Seg    SegmentDesc // zero value when Prefix == ""
	Method MethodDesc  // zero value when Prefix == ""
}

func (*CallExpr) node() {}
func (*CallExpr) expr() {}
