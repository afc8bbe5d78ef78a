package engine

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/ids"
	"github.com/embervale/actioncore/script/vm"
)

// SkillState is the per-tick state record payload for a skill instance
// (spec.md §3.6), written under ids.ClassSkill.
type SkillState struct {
	OwnerID ids.FastObjID
	ResID   ids.ResID
	Timer   fx.Fx
}

// Skill is a skill instance attached to an owner object by CmdNewSkill.
// TickProgram/HitProgram are compiled against SkillContextSpec by the
// resource cache when the owning resource defines on_tick/on_hit scripts
// (spec.md §4.8); a skill with neither is inert data the engine still
// tracks and emits state for.
type Skill struct {
	FastObjID ids.FastObjID
	OwnerID   ids.FastObjID
	ResID     ids.ResID

	// Timer is the skill's own writable scratch register, addressable from
	// its scripts as self.timer.
	Timer fx.Fx

	TickProgram *vm.Program
	HitProgram  *vm.Program
	executor    *vm.Executor

	justCreated bool
}

func newSkill(fobjID ids.FastObjID, ownerID ids.FastObjID, resID ids.ResID, owner *Character) *Skill {
	_ = owner // reserved: future script context binds owner stat fields here
	return &Skill{FastObjID: fobjID, OwnerID: ownerID, ResID: resID, justCreated: true}
}

// run executes program (TickProgram or HitProgram) against owner, lazily
// constructing this skill's own Executor on first use. A nil program is a
// no-op: not every skill defines every hook.
func (s *Skill) run(program *vm.Program, owner *Character) error {
	if program == nil {
		return nil
	}
	if s.executor == nil {
		s.executor = vm.NewExecutor()
	}
	return s.executor.Run(program, skillScriptContext{skill: s, owner: owner})
}
