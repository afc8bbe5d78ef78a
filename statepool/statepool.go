// Package statepool implements the per-tick state snapshot (spec.md §3.6,
// §4.6): a bump-allocated StatePool built once per tick and dispatched
// atomically, and the StateBus/StateRef machinery consumers use to track
// the most recent record for a given object.
package statepool

import (
	"errors"

	"github.com/embervale/actioncore/ids"
)

// DefaultByteLimit is the pool's default byte budget (4 MiB), matching the
// tick-local arena size spec.md §4.5 calls out for the sync/async agent's
// per-tick state step.
const DefaultByteLimit uint64 = 4 * 1024 * 1024

// estimatedRecordBytes approximates one Record's footprint against the
// pool's byte budget. A class-specific payload varies in size, but this
// module tracks it as a pointer (see Record.Payload's doc comment), so a
// fixed per-record estimate is the only budget the pool can enforce
// without reaching into payload internals.
const estimatedRecordBytes uint64 = 64

// ErrPoolFull is returned by Write once the pool's byte budget is exhausted.
var ErrPoolFull = errors.New("statepool: byte budget exceeded")

// Lifecycle tags what happened to an object since the previous snapshot.
type Lifecycle uint8

const (
	LifecycleCreated Lifecycle = iota
	LifecycleUpdated
	LifecycleDestroyed
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleCreated:
		return "Created"
	case LifecycleUpdated:
		return "Updated"
	case LifecycleDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Record is one object's state entry in a StatePool (spec.md §3.6).
//
// Payload always holds a pointer to the class-specific state struct (e.g.
// *CharacterState), never the struct by value: StateRef[S] recovers this
// pointer by type-asserting Payload back to *S, which is how a ref's
// pointer comes to point "inside the pool" without resorting to unsafe
// byte-arena arithmetic.
type Record struct {
	FastObjID ids.FastObjID
	ClassID   ids.ClassID
	Lifecycle Lifecycle
	Payload   any
}

// StatePool is an append-only, byte-budgeted pool of Records built during
// one tick and then dispatched as a unit.
type StatePool struct {
	limit   uint64
	used    uint64
	records []Record
}

// New constructs an empty pool with the given byte budget (DefaultByteLimit
// if limitBytes is 0).
func New(limitBytes uint64) *StatePool {
	if limitBytes == 0 {
		limitBytes = DefaultByteLimit
	}
	return &StatePool{limit: limitBytes}
}

// Write appends a record for one object's current state. payload must be
// a pointer to the class-specific state struct.
func (p *StatePool) Write(objID ids.FastObjID, classID ids.ClassID, lifecycle Lifecycle, payload any) error {
	if p.used+estimatedRecordBytes > p.limit {
		return ErrPoolFull
	}
	p.records = append(p.records, Record{FastObjID: objID, ClassID: classID, Lifecycle: lifecycle, Payload: payload})
	p.used += estimatedRecordBytes
	return nil
}

// Records returns every record written to the pool so far, in write order.
func (p *StatePool) Records() []Record { return p.records }

// Used returns the pool's current estimated byte usage.
func (p *StatePool) Used() uint64 { return p.used }

// Limit returns the pool's byte budget.
func (p *StatePool) Limit() uint64 { return p.limit }
