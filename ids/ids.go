// Package ids defines object and resource identity: the user-facing string
// ObjID/ResID and their dense, monotonically generated FastObjID/FastResID
// counterparts, plus the small ClassID tag used for O(1) polymorphic
// dispatch across the engine.
package ids

import (
	"math"

	"github.com/google/uuid"
)

// ObjID is a user-facing object identifier. The empty string is invalid.
type ObjID string

// Valid reports whether id is non-empty.
func (id ObjID) Valid() bool { return id != "" }

// FastObjID is a dense 64-bit object identifier. math.MaxUint64 is invalid.
type FastObjID uint64

// InvalidFastObjID is the sentinel returned for objects that do not exist.
const InvalidFastObjID FastObjID = math.MaxUint64

func (id FastObjID) Valid() bool { return id != InvalidFastObjID }

// ResID is a user-facing resource identifier, analogous to ObjID.
type ResID string

func (id ResID) Valid() bool { return id != "" }

// FastResID is a dense 64-bit resource identifier, analogous to FastObjID.
type FastResID uint64

const InvalidFastResID FastResID = math.MaxUint64

func (id FastResID) Valid() bool { return id != InvalidFastResID }

// ClassID is a small enum tag identifying an object's concrete behavioral
// variant, used for O(1) downcasts by tag equality rather than runtime
// vtables on the hot path.
type ClassID uint8

const (
	ClassNone ClassID = iota
	ClassStageGeneral
	ClassCharaHuman
	ClassSkill
	ClassAction
	ClassCommand
	ClassBuff
)

func (c ClassID) String() string {
	switch c {
	case ClassStageGeneral:
		return "StageGeneral"
	case ClassCharaHuman:
		return "CharaHuman"
	case ClassSkill:
		return "Skill"
	case ClassAction:
		return "Action"
	case ClassCommand:
		return "Command"
	case ClassBuff:
		return "Buff"
	default:
		return "None"
	}
}

// FastObjIDGenerator hands out monotonically increasing FastObjID values.
// Owned exclusively by one Engine instance — never a process-wide global,
// per the source's design notes on thread-local globals (spec.md §9).
type FastObjIDGenerator struct {
	next uint64
}

// Next returns a fresh, never-before-issued FastObjID.
func (g *FastObjIDGenerator) Next() FastObjID {
	id := g.next
	g.next++
	return FastObjID(id)
}

// FastResIDGenerator is the resource-identity analogue, used by the
// resource cache's id table to assign FastResID values in stable,
// monotonic insertion order.
type FastResIDGenerator struct {
	next uint64
}

func (g *FastResIDGenerator) Next() FastResID {
	id := g.next
	g.next++
	return FastResID(id)
}

// NewObjID allocates a fresh random ObjID for callers that do not supply
// their own stable identifier (e.g. dynamically spawned projectiles).
func NewObjID() ObjID {
	return ObjID(uuid.NewString())
}
