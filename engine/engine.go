// Package engine implements the logic engine and tick pipeline (spec.md
// §4.5): the operation->command translator, the per-tick
// broad-phase/narrow-phase/update/state pipeline, and the sync/async agent
// wrappers external callers drive.
package engine

import (
	"fmt"

	"github.com/embervale/actioncore/collision/broadphase"
	"github.com/embervale/actioncore/collision/world"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/ids"
	"github.com/embervale/actioncore/resource"
	"github.com/embervale/actioncore/script/vm"
	"github.com/embervale/actioncore/statepool"
)

// classStatic/classMove/classHit are this package's local names for the
// collision world's three object classes (spec.md §3.3, and §9's decision
// to canonicalize CollisionObjectClass/CollisionObjectType down to a single
// three-valued Static/Move/Hit enum).
const (
	classStatic = broadphase.ClassStatic
	classMove   = broadphase.ClassMove
	classHit    = broadphase.ClassHit
)

// collisionWorld and objHandle are local aliases over the generic world
// package, parameterized on this engine's own object-data payload.
type collisionWorld = world.World[objData]
type objHandle = world.Handle

// objKind tags which engine-level record a collision object's Data
// back-pointer (spec.md §3.3) refers to.
type objKind uint8

const (
	objKindStage objKind = iota
	objKindCharacter
	objKindHitVolume
)

// objData is the Data payload every collision object in this engine carries,
// letting narrow-phase events and queries recover the engine-level record a
// handle refers to without a second lookup table.
type objData struct {
	Kind      objKind
	FastObjID ids.FastObjID
}

func contactQuery() world.QueryType { return world.QueryType{Kind: world.QueryContact} }

func proximityQuery(limit fx.Fx) world.QueryType {
	return world.QueryType{Kind: world.QueryProximity, Limit: limit}
}

// defaultStageGroups/defaultCharacterGroups/hitVolumeGroups fill in spec.md
// §4.4's team/role bitmask taxonomy. Stage geometry sits outside every team
// and must be explicitly whitelisted; characters occupy their own team slot
// and carry both a normal-bounding role and the Target role original_source
// gives every targetable body, until a skill attaches combat hit volumes.
func defaultStageGroups() world.Groups {
	return world.Groups{
		TeamMembership: world.TeamStage,
		TeamWhitelist:  world.TeamAll,
		RoleMembership: world.RoleNormalBounding,
		RoleWhitelist:  world.RoleMovement | world.RoleGiantMovement | world.RoleDamage | world.RoleHealth,
	}
}

func defaultCharacterGroups() world.Groups {
	return world.Groups{
		TeamMembership: world.Team1,
		TeamWhitelist:  world.TeamAll,
		RoleMembership: world.RoleNormalBounding | world.RoleTarget,
		RoleWhitelist:  world.RoleMovement | world.RoleTargetable,
	}
}

// hitVolumeGroups builds the groups for a skill's damage/health/defense
// volume: it keeps the owner's team membership but swaps in a combat role,
// whitelisting the owner's Target volume the way original_source's
// groups_damage/groups_health/groups_defense each whitelist GROUPS_TARGET
// alongside their direct combat counterpart.
func hitVolumeGroups(team uint16, role uint16) world.Groups {
	return world.Groups{
		TeamMembership: team,
		TeamWhitelist:  world.TeamAll,
		RoleMembership: role,
		RoleWhitelist:  world.RoleCombat | world.RoleTargetable,
	}
}

// broadphaseMargin loosens proxy bounding volumes before insertion to absorb
// small per-tick motion without broad-phase churn (spec.md §4.2).
var broadphaseMargin = fx.FromRatio(1, 10)

// allClasses is the class set engine.Update runs the broad-phase over: every
// tick re-examines all three classes since any of them may have moved.
var allClasses = []broadphase.Class{classStatic, classMove, classHit}

// Engine is the deterministic simulation core (spec.md §4.5). It owns the
// collision world, the id generator, and every live character/skill/stage
// record; callers drive it exclusively through Operate/Command/Tick (via an
// Agent) rather than reaching into its fields.
type Engine struct {
	idGen ids.FastObjIDGenerator

	world *collisionWorld

	stage      *Stage
	characters map[ids.FastObjID]*Character
	skills     map[ids.FastObjID]*Skill

	// characterOrder/skillOrder record creation order so per-tick iteration
	// (update, state emission) is deterministic regardless of Go's
	// randomized map iteration order (spec.md §8's tick-determinism
	// property requires bit-identical StatePool contents, including field
	// order, across runs).
	characterOrder []ids.FastObjID
	skillOrder     []ids.FastObjID

	mainChar ids.FastObjID

	tickDuration fx.Fx

	opsBuf  []Op
	cmdsBuf []Command

	// resources resolves a CmdNewSkill/CmdRunResCommand ResID to its
	// resource definition and compiles any scripts it names (spec.md §4.6,
	// §4.7). Nil disables script wiring entirely: commands that would need
	// it are accepted as before but run no script.
	resources *resource.Cache

	// ranResCommands records every CmdRunResCommand ResID that named a
	// resource without a standalone command script (or ran with resources
	// unset), so callers/tests can still observe the request was accepted.
	ranResCommands []ids.ResID
}

// SetResources binds the resource cache CmdNewSkill/CmdRunResCommand
// resolve ResID values against. Must be called before any command that
// references a resource; nil (the default) disables script wiring.
func (e *Engine) SetResources(cache *resource.Cache) { e.resources = cache }

// RanResCommands returns every resource command ResID that ran without a
// resolvable script body, for callers/tests observing CmdRunResCommand
// before resources are wired up.
func (e *Engine) RanResCommands() []ids.ResID { return e.ranResCommands }

// New constructs an engine with the given fixed tick duration (seconds, as
// an Fx); its collision world uses the package's broadphaseMargin as churn
// margin.
func New(tickDuration fx.Fx) *Engine {
	return &Engine{
		world:        world.New[objData](broadphaseMargin),
		characters:   make(map[ids.FastObjID]*Character),
		skills:       make(map[ids.FastObjID]*Skill),
		mainChar:     ids.InvalidFastObjID,
		tickDuration: tickDuration,
	}
}

// TickDuration returns the engine's fixed per-tick duration.
func (e *Engine) TickDuration() fx.Fx { return e.tickDuration }

// Operate buffers a player operation for translation at the start of the
// next Tick (spec.md §4.5 step 1). No side effects occur until Tick runs.
func (e *Engine) Operate(op Op) { e.opsBuf = append(e.opsBuf, op) }

// Command buffers an engine command for application during the next Tick's
// command step (spec.md §4.5 step 2).
func (e *Engine) Command(cmd Command) { e.cmdsBuf = append(e.cmdsBuf, cmd) }

// ErrUnknownObject is returned when a command targets a FastObjID that no
// longer (or never did) name a live character. Per spec.md §7, this is a
// data-shaped condition on a public command path, not a programming-error
// panic: malformed input from a stale client is expected and recoverable.
type ErrUnknownObject struct {
	FastObjID ids.FastObjID
}

func (e ErrUnknownObject) Error() string {
	return fmt.Sprintf("engine: unknown object %d", e.FastObjID)
}

// Tick runs one full simulation step: operations -> commands -> collide ->
// update -> state, in that strict order (spec.md §5 "Ordering"), and
// returns the tick's snapshot. The returned pool is owned by the caller; the
// engine allocates a fresh one every tick.
func (e *Engine) Tick() (*statepool.StatePool, error) {
	ops := e.opsBuf
	e.opsBuf = nil
	for _, op := range ops {
		if cmd := e.opToCmd(op); cmd != nil {
			if err := e.applyCommand(cmd); err != nil {
				return nil, err
			}
		}
	}

	cmds := e.cmdsBuf
	e.cmdsBuf = nil
	for _, cmd := range cmds {
		if err := e.applyCommand(cmd); err != nil {
			return nil, err
		}
	}

	e.collide()
	e.update()
	return e.state(), nil
}

// applyCommand mutates the engine/world per one buffered Command (spec.md
// §4.5 step 2).
func (e *Engine) applyCommand(cmd Command) error {
	switch c := cmd.(type) {
	case CmdNewStage:
		fobjID := e.idGen.Next()
		stage, _ := newStage(fobjID, e.world)
		e.stage = stage

	case CmdNewCharacter:
		fobjID := e.idGen.Next()
		chara, _ := newCharacter(fobjID, e.world, c.Position, c.Direction, c.Speed, c.IsMain)
		e.characters[fobjID] = chara
		e.characterOrder = append(e.characterOrder, fobjID)
		if c.IsMain {
			e.mainChar = fobjID
		}

	case CmdMoveCharacter:
		chara, ok := e.characters[c.ObjID]
		if !ok {
			return ErrUnknownObject{c.ObjID}
		}
		chara.Direction = c.Direction
		chara.IsMoving = c.IsMoving

	case CmdJumpCharacter:
		chara, ok := e.characters[c.ObjID]
		if !ok {
			return ErrUnknownObject{c.ObjID}
		}
		chara.jump()

	case CmdNewSkill:
		owner, ok := e.characters[c.OwnerID]
		if !ok {
			return ErrUnknownObject{c.OwnerID}
		}
		fobjID := e.idGen.Next()
		skill := newSkill(fobjID, c.OwnerID, c.ResID, owner)
		if e.resources != nil {
			if obj, ok := e.resources.Get(c.ResID); ok && obj.Skill != nil {
				spec := SkillContextSpec()
				if obj.Skill.OnTick != "" {
					prog, err := e.resources.CompileScript(obj.Skill.OnTick, spec)
					if err != nil {
						return err
					}
					skill.TickProgram = prog
				}
				if obj.Skill.OnHit != "" {
					prog, err := e.resources.CompileScript(obj.Skill.OnHit, spec)
					if err != nil {
						return err
					}
					skill.HitProgram = prog
				}
			}
		}
		e.skills[fobjID] = skill
		e.skillOrder = append(e.skillOrder, fobjID)

	case CmdNewStageGeneral:
		if e.stage == nil || e.stage.FastObjID != c.FObjID {
			return ErrUnknownObject{c.FObjID}
		}
		e.stage.ResID = c.ResID

	case CmdNewCharaGeneral:
		chara, ok := e.characters[c.FObjID]
		if !ok {
			return ErrUnknownObject{c.FObjID}
		}
		chara.ResID = c.ResID

	case CmdRunResCommand:
		ran := false
		if e.resources != nil {
			if obj, ok := e.resources.Get(c.ResID); ok && obj.Command != nil && obj.Command.Script != "" {
				prog, err := e.resources.CompileScript(obj.Command.Script, CommandContextSpec())
				if err != nil {
					return err
				}
				var scratch int64
				if err := vm.NewExecutor().Run(prog, commandScriptContext{value: &scratch}); err != nil {
					return err
				}
				ran = true
			}
		}
		if !ran {
			e.ranResCommands = append(e.ranResCommands, c.ResID)
		}
	}
	return nil
}
