// Package parser implements the scripting language's PEG-ish recursive-
// descent parser with a precedence climber over binary operators (spec.md
// §4.8.3). It resolves field references, extern calls, and named
// constants against a caller-supplied ast.ContextSpec as it parses, so the
// AST it returns already carries every ScriptAddr/function resolution the
// code generator needs.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/script/ast"
	"github.com/embervale/actioncore/script/lexer"
	"github.com/embervale/actioncore/script/token"
)

// Error is a script compile error with a source position (spec.md §7:
// "surfaced with a source location; no partial bytecode is retained").
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// builtinArity is the registry function calls are type-checked against
// (spec.md §4.8.3); every entry maps 1:1 to a numeric/exp/circular opcode.
var builtinArity = map[string]int{
	"abs": 1, "min": 2, "max": 2,
	"floor": 1, "ceil": 1, "round": 1,
	"clamp": 3, "saturate": 1, "lerp": 3,
	"sqrt": 1, "exp": 1,
	"degrees": 1, "radians": 1,
	"sin": 1, "cos": 1, "tan": 1,
}

var namedConsts = map[string]fx.Fx{
	"PI": fx.Pi, "E": fx.E, "TAU": fx.Tau, "MAX": fx.Max, "MIN": fx.Min,
}

// precedence is the climber's binding-power table; higher binds tighter.
var precedence = map[token.Type]int{
	token.OROR:    1,
	token.ANDAND:  2,
	token.EQ:      3,
	token.NEQ:     3,
	token.LT:      4,
	token.LE:      4,
	token.GT:      4,
	token.GE:      4,
	token.PLUS:    5,
	token.MINUS:   5,
	token.STAR:    6,
	token.SLASH:   6,
	token.PERCENT: 6,
}

// Parser consumes a pre-tokenized stream and resolves identifiers against
// ctx as it builds the AST.
type Parser struct {
	toks []token.Token
	pos  int
	ctx  ast.ContextSpec
}

// Parse tokenizes src and parses it to completion against ctx, returning
// the first error encountered with no partial AST retained.
func Parse(src string, ctx ast.ContextSpec) (*ast.Program, error) {
	p := &Parser{toks: lexer.Tokenize(src), ctx: ctx}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{Pos: p.cur().Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.cur().Type != t {
		return token.Token{}, p.errorf("expected %s, got %s %q", t, p.cur().Type, p.cur().Literal)
	}
	return p.advance(), nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur().Type != token.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, p.errorf("unexpected EOF inside block")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // RBRACE
	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Type {
	case token.IF:
		return p.parseIf()
	case token.IDENT:
		return p.parseAssignOrCall()
	default:
		return nil, p.errorf("unexpected token %s %q at statement start", p.cur().Type, p.cur().Literal)
	}
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance() // 'if'
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	for p.cur().Type == token.ELSIF {
		p.advance()
		c, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Cond: c, Body: b})
	}
	if p.cur().Type == token.ELSE {
		p.advance()
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = b
	}
	return stmt, nil
}

// parseAssignOrCall parses `Ident`, `Ident '.' Ident`, then decides between
// an assignment (=, +=, -=), a CallStat, or a CallExpr bound to the
// dotted prefix.
func (p *Parser) parseAssignOrCall() (ast.Stmt, error) {
	nameTok := p.advance() // IDENT
	name := nameTok.Literal

	var prefix, field string
	hasPrefix := false
	if p.cur().Type == token.DOT {
		p.advance()
		fieldTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		prefix, field, hasPrefix = name, fieldTok.Literal, true
	} else {
		field = name
	}

	if p.cur().Type == token.LPAREN {
		call, err := p.parseCallTail(prefix, field, hasPrefix, nameTok.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{Call: call}, nil
	}

	if !hasPrefix {
		return nil, p.errorf("assignment target must be <prefix>.<field>, got bare %q", name)
	}

	ref, err := p.resolveFieldRef(prefix, field, nameTok.Pos)
	if err != nil {
		return nil, err
	}
	if !ref.Seg.Writable {
		return nil, &Error{Pos: nameTok.Pos, Msg: fmt.Sprintf("%s.%s is not writable", prefix, field)}
	}

	var op ast.AssignOp
	switch p.cur().Type {
	case token.ASSIGN:
		op = ast.AssignSet
	case token.PLUSEQ:
		op = ast.AssignAdd
	case token.MINUSEQ:
		op = ast.AssignSub
	default:
		return nil, p.errorf("expected assignment operator, got %s", p.cur().Type)
	}
	p.advance()

	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{Target: *ref, Op: op, Value: value}, nil
}

func (p *Parser) resolveFieldRef(prefix, field string, pos token.Position) (*ast.FieldRef, error) {
	seg, ok := p.ctx.FindSegment(prefix)
	if !ok {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("unknown context variable %q", prefix)}
	}
	desc, ok := seg.Fields[field]
	if !ok {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("%s has no field %q", prefix, field)}
	}
	return &ast.FieldRef{Prefix: prefix, Field: field, Seg: seg, Desc: desc}, nil
}

func (p *Parser) parseCallTail(prefix, name string, hasPrefix bool, pos token.Position) (*ast.CallExpr, error) {
	p.advance() // '('
	var args []ast.Expr
	if p.cur().Type != token.RPAREN {
		for {
			arg, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	call := &ast.CallExpr{Prefix: prefix, Name: name, Args: args}
	if !hasPrefix {
		arity, ok := builtinArity[name]
		if !ok {
			return nil, &Error{Pos: pos, Msg: fmt.Sprintf("unknown function %q", name)}
		}
		if len(args) != arity {
			return nil, &Error{Pos: pos, Msg: fmt.Sprintf("%s expects %d argument(s), got %d", name, arity, len(args))}
		}
		return call, nil
	}

	seg, ok := p.ctx.FindSegment(prefix)
	if !ok {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("unknown context variable %q", prefix)}
	}
	method, ok := seg.Methods[name]
	if !ok {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("%s has no method %q", prefix, name)}
	}
	if len(args) != method.Arity {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("%s.%s expects %d argument(s), got %d", prefix, name, method.Arity, len(args))}
	}
	call.Seg, call.Method = seg, method
	return call, nil
}

// parseExpr is the precedence climber: it parses a unary/primary term,
// then repeatedly absorbs binary operators whose precedence is >= minPrec.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.cur()
		prec, ok := precedence[opTok.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, X: left, Y: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Type {
	case token.PLUS, token.MINUS, token.BANG:
		op := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op.Type, X: x}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.cur().Type {
	case token.NUMBER:
		tok := p.advance()
		v, err := parseNumber(tok.Literal)
		if err != nil {
			return nil, &Error{Pos: tok.Pos, Msg: err.Error()}
		}
		return &ast.NumberLit{Value: v}, nil

	case token.DOLLAR:
		p.advance()
		idTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		v, ok := p.ctx.Idents[idTok.Literal]
		if !ok {
			return nil, &Error{Pos: idTok.Pos, Msg: fmt.Sprintf("unknown id reference $%s", idTok.Literal)}
		}
		return &ast.IDRef{Name: idTok.Literal, Value: v}, nil

	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case token.IDENT:
		nameTok := p.advance()
		name := nameTok.Literal

		if p.cur().Type == token.DOT {
			p.advance()
			fieldTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if p.cur().Type == token.LPAREN {
				return p.parseCallTail(name, fieldTok.Literal, true, nameTok.Pos)
			}
			return p.resolveFieldRefExpr(name, fieldTok.Literal, nameTok.Pos)
		}

		if p.cur().Type == token.LPAREN {
			return p.parseCallTail("", name, false, nameTok.Pos)
		}

		if v, ok := namedConsts[name]; ok {
			return &ast.NamedConst{Name: name, Value: v}, nil
		}
		return nil, &Error{Pos: nameTok.Pos, Msg: fmt.Sprintf("bare identifier %q is not a named constant; field references need a <prefix>.<field> form", name)}

	default:
		return nil, p.errorf("unexpected token %s %q in expression", p.cur().Type, p.cur().Literal)
	}
}

func (p *Parser) resolveFieldRefExpr(prefix, field string, pos token.Position) (ast.Expr, error) {
	ref, err := p.resolveFieldRef(prefix, field, pos)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// parseNumber converts a NUMBER literal's text to Fx: 0x-prefixed text
// parses as a hex integer, everything else as a decimal float (spec.md
// §4.8.3).
func parseNumber(lit string) (fx.Fx, error) {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		v, err := strconv.ParseInt(lit[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex literal %q: %w", lit, err)
		}
		return fx.FromInt(v), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number literal %q: %w", lit, err)
	}
	return fx.FromFloat64(f), nil
}
