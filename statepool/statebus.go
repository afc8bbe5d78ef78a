package statepool

import (
	"sync"

	"github.com/embervale/actioncore/ids"
)

// ref is the narrow, type-erased view StateBus needs of a StateRef[S]
// without knowing S.
type ref interface {
	objID() ids.FastObjID
	null()
}

// binder additionally lets the bus attempt to bind a record without
// knowing the ref's payload type.
type binder interface {
	ref
	tryBind(rec Record) bool
}

// StateRef is a handle consumers create to track the most recent state
// record of a specific object and class (spec.md §4.6). Its pointer is
// overwritten on every Dispatch and nulled between dispatches, so reading
// it outside a live dispatch window fails explicitly via Get's ok return
// rather than silently returning stale data.
type StateRef[S any] struct {
	fobjID ids.FastObjID
	class  ids.ClassID
	ptr    *S
}

// NewRef constructs an unbound ref for the given object/class pair.
// Register it with a StateBus to start receiving dispatches.
func NewRef[S any](fobjID ids.FastObjID, class ids.ClassID) *StateRef[S] {
	return &StateRef[S]{fobjID: fobjID, class: class}
}

func (r *StateRef[S]) objID() ids.FastObjID { return r.fobjID }
func (r *StateRef[S]) null()                { r.ptr = nil }

func (r *StateRef[S]) tryBind(rec Record) bool {
	if rec.FastObjID != r.fobjID || rec.ClassID != r.class {
		return false
	}
	p, ok := rec.Payload.(*S)
	if !ok {
		return false
	}
	r.ptr = p
	return true
}

// Get returns the ref's currently bound record, or (nil, false) if it was
// nulled by the most recent Dispatch (no matching record was present).
func (r *StateRef[S]) Get() (*S, bool) {
	if r.ptr == nil {
		return nil, false
	}
	return r.ptr, true
}

// StateBus owns the map from FastObjID to its registered refs and
// dispatches StatePool snapshots to them (spec.md §4.6).
type StateBus struct {
	mu   sync.Mutex
	subs map[ids.FastObjID][]binder
	pool *StatePool // retains the most recently dispatched pool, keeping its records alive until the next dispatch
}

// NewStateBus constructs an empty bus.
func NewStateBus() *StateBus {
	return &StateBus{subs: make(map[ids.FastObjID][]binder)}
}

// Register subscribes r to dispatches for its (FastObjID, ClassID).
func Register[S any](bus *StateBus, r *StateRef[S]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subs[r.objID()] = append(bus.subs[r.objID()], r)
}

// Unregister removes r from the bus; it no longer receives dispatches.
func Unregister[S any](bus *StateBus, r *StateRef[S]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	list := bus.subs[r.objID()]
	for i, b := range list {
		if b == binder(r) {
			bus.subs[r.objID()] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Dispatch nulls every registered ref, walks pool once repointing any ref
// whose (class, fobj_id) matches a record, then retains pool so its
// records outlive this call. A ref reflects either a live record from the
// current pool or null afterward — never a partial or stale snapshot.
func (bus *StateBus) Dispatch(pool *StatePool) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, list := range bus.subs {
		for _, b := range list {
			b.null()
		}
	}
	for _, rec := range pool.Records() {
		for _, b := range bus.subs[rec.FastObjID] {
			b.tryBind(rec)
		}
	}
	bus.pool = pool
}
