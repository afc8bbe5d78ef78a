package engine

import "github.com/embervale/actioncore/fx"

// Op is a player-facing input, buffered by Engine.Operate and translated
// into a Command by opToCmd at the start of the next tick (spec.md §4.5).
// Concrete variants are exhaustive; only this package implements isOp, so a
// switch over Op's dynamic type here is never missing a case silently.
type Op interface{ isOp() }

// OpMoveCharacter sets the main character's movement direction and
// moving/stationary state.
type OpMoveCharacter struct {
	Direction fx.Vec2
	IsMoving  bool
}

func (OpMoveCharacter) isOp() {}

// OpJumpCharacter requests a jump for the main character.
type OpJumpCharacter struct{}

func (OpJumpCharacter) isOp() {}
