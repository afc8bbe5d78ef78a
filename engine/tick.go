package engine

import (
	"github.com/embervale/actioncore/collision/world"
	"github.com/embervale/actioncore/ids"
	"github.com/embervale/actioncore/statepool"
)

// collide runs the collision world's update (broad-phase then narrow-phase)
// and delivers each resulting event to both sides' Collide hooks, in
// (self, other) order for each side (spec.md §4.5 step 3).
func (e *Engine) collide() {
	e.world.Update(allClasses)
	for _, ev := range e.world.Events() {
		started := ev.Kind == world.EventContactStarted || ev.Kind == world.EventProximityStarted
		a := e.world.Object(ev.A).Data
		b := e.world.Object(ev.B).Data
		e.dispatchCollide(a, b, started)
		e.dispatchCollide(b, a, started)
	}
}

func (e *Engine) dispatchCollide(self, other objData, started bool) {
	if self.Kind != objKindCharacter {
		return
	}
	chara, ok := e.characters[self.FastObjID]
	if !ok {
		return
	}
	chara.Collide(CollideContext{Self: self.FastObjID, Other: other.FastObjID, Started: started})

	// Skills with an on_hit script run it once per narrow-phase event
	// touching their owner, in creation order (spec.md §4.8's rollback-free
	// execution: a fault here aborts just that skill's hook, not the tick).
	for _, skillID := range e.skillOrder {
		skill := e.skills[skillID]
		if skill.OwnerID != self.FastObjID || skill.HitProgram == nil {
			continue
		}
		_ = skill.run(skill.HitProgram, chara)
	}
}

// update advances every character one tick and commits its predicted
// isometry into the collision world, then runs every skill's on_tick
// script against its owner (spec.md §4.5 step 4). Characters and skills
// are visited in creation order for determinism (spec.md §8).
func (e *Engine) update() {
	for _, fobjID := range e.characterOrder {
		chara := e.characters[fobjID]
		next := chara.step(e.tickDuration, e.world)
		obj := e.world.Object(chara.Handle)
		obj.Isometry = next
		obj.Flags |= world.FlagBoundingVolumeChanged
	}

	for _, skillID := range e.skillOrder {
		skill := e.skills[skillID]
		if skill.TickProgram == nil {
			continue
		}
		owner, ok := e.characters[skill.OwnerID]
		if !ok {
			continue
		}
		_ = skill.run(skill.TickProgram, owner)
	}
}

// state allocates a fresh StatePool and writes one record per live stage,
// character, and skill, in deterministic (creation) order (spec.md §4.5
// step 5). Stages/characters/skills report Created on the tick they were
// added and Updated on every subsequent tick.
func (e *Engine) state() *statepool.StatePool {
	pool := statepool.New(statepool.DefaultByteLimit)

	if e.stage != nil {
		lifecycle := statepool.LifecycleUpdated
		if e.stage.justCreated {
			lifecycle = statepool.LifecycleCreated
			e.stage.justCreated = false
		}
		_ = pool.Write(e.stage.FastObjID, ids.ClassStageGeneral, lifecycle, &StageState{ResID: e.stage.ResID})
	}

	for _, fobjID := range e.characterOrder {
		chara := e.characters[fobjID]
		lifecycle := statepool.LifecycleUpdated
		if chara.justCreated {
			lifecycle = statepool.LifecycleCreated
			chara.justCreated = false
		}
		obj := e.world.Object(chara.Handle)
		payload := &CharacterState{
			Position:  obj.Isometry.Position,
			Direction: chara.Direction,
			IsMoving:  chara.IsMoving,
			Grounded:  chara.Grounded,
		}
		_ = pool.Write(fobjID, ids.ClassCharaHuman, lifecycle, payload)
	}

	for _, fobjID := range e.skillOrder {
		skill := e.skills[fobjID]
		lifecycle := statepool.LifecycleUpdated
		if skill.justCreated {
			lifecycle = statepool.LifecycleCreated
			skill.justCreated = false
		}
		payload := &SkillState{OwnerID: skill.OwnerID, ResID: skill.ResID, Timer: skill.Timer}
		_ = pool.Write(fobjID, ids.ClassSkill, lifecycle, payload)
	}

	return pool
}
