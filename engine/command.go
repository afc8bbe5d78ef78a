package engine

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/ids"
)

// Command is an engine mutation, buffered by Engine.Command or produced
// from an Op by opToCmd, and applied during the tick's command step
// (spec.md §4.5).
type Command interface{ isCommand() }

// CmdNewStage creates the (singleton) stage.
type CmdNewStage struct{}

func (CmdNewStage) isCommand() {}

// CmdNewCharacter spawns a character at Position facing Direction.
type CmdNewCharacter struct {
	Position  fx.Vec3
	Direction fx.Vec2
	Speed     fx.Fx
	IsMain    bool
}

func (CmdNewCharacter) isCommand() {}

// CmdMoveCharacter updates an existing character's movement state.
type CmdMoveCharacter struct {
	ObjID     ids.FastObjID
	Direction fx.Vec2
	IsMoving  bool
}

func (CmdMoveCharacter) isCommand() {}

// CmdJumpCharacter requests a jump for a specific character.
type CmdJumpCharacter struct {
	ObjID ids.FastObjID
}

func (CmdJumpCharacter) isCommand() {}

// CmdNewSkill attaches a skill instance (backed by res) to an owner object.
type CmdNewSkill struct {
	OwnerID ids.FastObjID
	ResID   ids.ResID
}

func (CmdNewSkill) isCommand() {}

// CmdNewStageGeneral binds resource-driven stage data (restored by the
// resource cache, keyed by ResID) onto the already-created stage.
type CmdNewStageGeneral struct {
	FObjID ids.FastObjID
	ResID  ids.ResID
}

func (CmdNewStageGeneral) isCommand() {}

// CmdNewCharaGeneral binds resource-driven character data onto an
// already-created character.
type CmdNewCharaGeneral struct {
	FObjID ids.FastObjID
	ResID  ids.ResID
}

func (CmdNewCharaGeneral) isCommand() {}

// CmdRunResCommand runs a resource-defined command script by ResID. When a
// bound resource cache (Engine.SetResources) holds a command script for
// ResID, the script is compiled and run; otherwise the request is only
// recorded (see Engine.RanResCommands).
type CmdRunResCommand struct {
	ResID ids.ResID
}

func (CmdRunResCommand) isCommand() {}

// opToCmd translates a buffered Op into the Command it targets at the main
// character (spec.md §4.5 step 1). Returns nil for an Op that cannot be
// translated yet (no main character assigned).
func (e *Engine) opToCmd(op Op) Command {
	if !e.mainChar.Valid() {
		return nil
	}
	switch o := op.(type) {
	case OpMoveCharacter:
		return CmdMoveCharacter{ObjID: e.mainChar, Direction: o.Direction, IsMoving: o.IsMoving}
	case OpJumpCharacter:
		return CmdJumpCharacter{ObjID: e.mainChar}
	default:
		return nil
	}
}
