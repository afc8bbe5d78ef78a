// Package optimize is the compile pipeline's optimization stage (spec.md
// §4.8.4). It currently runs the identity transform: scripts are short and
// step-limited, so the generator's own peepholes (assign-fold, direct-into
// codegen) cover the cases worth optimizing without a separate AST pass.
// The stage is kept as its own pipeline step so a real pass can slot in
// later without reshaping script.Compile's call sequence.
package optimize

import "github.com/embervale/actioncore/script/ast"

// Run applies the optimization stage to prog and returns the result.
func Run(prog *ast.Program) *ast.Program {
	return prog
}
