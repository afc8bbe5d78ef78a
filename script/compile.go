// Package script is the scripting language's front door: Compile runs
// source text through the full token→lexer→ast→parser→optimize→codegen
// pipeline (spec.md §4.8) and hands back a vm.Program ready for
// vm.Executor.Run, or the first compile error encountered with no partial
// bytecode retained (spec.md §7).
package script

import (
	"github.com/embervale/actioncore/script/ast"
	"github.com/embervale/actioncore/script/codegen"
	"github.com/embervale/actioncore/script/optimize"
	"github.com/embervale/actioncore/script/parser"
	"github.com/embervale/actioncore/script/vm"
)

// Compile parses and generates src against ctx's field/method/ident
// schema, producing a Program tagged with ctx.CtxID.
func Compile(src string, ctx ast.ContextSpec) (*vm.Program, error) {
	prog, err := parser.Parse(src, ctx)
	if err != nil {
		return nil, err
	}
	prog = optimize.Run(prog)
	return codegen.Generate(prog, ctx)
}
