package engine

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/script/ast"
	"github.com/embervale/actioncore/script/vm"
)

// ctxIDSkill tags every compiled skill script (on_tick/on_hit); scripts
// compiled against one ContextSpec can never run against a mismatched
// context (vm.ErrClassMismatch).
const ctxIDSkill uint8 = 1

// SkillContextSpec is the compile-time schema skill resource scripts are
// parsed against (spec.md §4.8.1, §4.8.3): a writable "self" segment
// holding the skill instance's own scratch state, and a read-only "owner"
// segment exposing its owning character's movement state plus a "jump"
// extern method.
func SkillContextSpec() ast.ContextSpec {
	return ast.ContextSpec{
		CtxID: ctxIDSkill,
		Segments: []ast.SegmentDesc{
			{
				Name:     "self",
				Index:    vm.SegContextBase,
				Writable: true,
				Fields: map[string]ast.FieldDesc{
					"timer": {Offset: 0},
				},
			},
			{
				Name:     "owner",
				Index:    vm.SegContextBase + 1,
				Writable: false,
				Fields: map[string]ast.FieldDesc{
					"moving":   {Offset: 0},
					"grounded": {Offset: 1},
					"speed":    {Offset: 2},
				},
				Methods: map[string]ast.MethodDesc{
					"jump": {ID: 0, Arity: 0, IsExpr: false},
				},
			},
		},
	}
}

// selfSegment backs the "self" segment with a skill's own scratch state.
type selfSegment struct{ skill *Skill }

func (selfSegment) Writable() bool { return true }
func (selfSegment) Len() int       { return 1 }

func (s selfSegment) Get(offset int) int64 {
	switch offset {
	case 0:
		return int64(s.skill.Timer)
	default:
		return 0
	}
}

func (s selfSegment) Set(offset int, v int64) {
	switch offset {
	case 0:
		s.skill.Timer = fx.Fx(v)
	}
}

// ownerSegment backs the read-only "owner" segment and its one extern
// method ("jump") with the skill's owning character.
type ownerSegment struct{ owner *Character }

func (ownerSegment) Writable() bool { return false }
func (ownerSegment) Len() int       { return 3 }

func boolWord(b bool) int64 {
	if b {
		return int64(fx.One)
	}
	return int64(fx.Zero)
}

func (o ownerSegment) Get(offset int) int64 {
	switch offset {
	case 0:
		return boolWord(o.owner.IsMoving)
	case 1:
		return boolWord(o.owner.Grounded)
	case 2:
		return int64(o.owner.Speed)
	default:
		return 0
	}
}

func (ownerSegment) Set(int, int64) { panic("engine: write to read-only owner segment") }

func (o ownerSegment) CallMethod(methodID int, args []int64) (result int64, isExpr bool) {
	if methodID == 0 {
		o.owner.jump()
	}
	return 0, false
}

// skillScriptContext binds SkillContextSpec's segments to one concrete
// (skill, owner) pair for a single Executor.Run call.
type skillScriptContext struct {
	skill *Skill
	owner *Character
}

func (skillScriptContext) CtxID() uint8 { return ctxIDSkill }

func (c skillScriptContext) FillSegments(dst []vm.Segment) {
	dst[0] = selfSegment{skill: c.skill}
	dst[1] = ownerSegment{owner: c.owner}
}

// ctxIDCommand tags standalone resource-defined command scripts run by
// CmdRunResCommand (spec.md §4.7): unlike a skill, a command has no
// owning character, just one writable scratch word.
const ctxIDCommand uint8 = 2

// CommandContextSpec is the schema CmdRunResCommand scripts are parsed
// against.
func CommandContextSpec() ast.ContextSpec {
	return ast.ContextSpec{
		CtxID: ctxIDCommand,
		Segments: []ast.SegmentDesc{
			{
				Name:     "self",
				Index:    vm.SegContextBase,
				Writable: true,
				Fields: map[string]ast.FieldDesc{
					"value": {Offset: 0},
				},
			},
		},
	}
}

type commandSelfSegment struct{ value *int64 }

func (commandSelfSegment) Writable() bool       { return true }
func (commandSelfSegment) Len() int             { return 1 }
func (s commandSelfSegment) Get(offset int) int64 {
	if offset == 0 {
		return *s.value
	}
	return 0
}
func (s commandSelfSegment) Set(offset int, v int64) {
	if offset == 0 {
		*s.value = v
	}
}

type commandScriptContext struct{ value *int64 }

func (commandScriptContext) CtxID() uint8 { return ctxIDCommand }

func (c commandScriptContext) FillSegments(dst []vm.Segment) {
	dst[0] = commandSelfSegment{value: c.value}
}
