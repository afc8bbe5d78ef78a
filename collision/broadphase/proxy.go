// Package broadphase implements the tri-tree broad-phase (spec.md §4.2):
// three independent dynamic bounding-volume trees indexed by object class,
// a proxy slab with deferred update queues, and the interference pair
// cache that drives interference_started/interference_stopped callbacks.
package broadphase

import (
	"github.com/embervale/actioncore/collision/dbvh"
	"github.com/embervale/actioncore/geom"
)

// Class is the three-valued object class the tri-tree is indexed by.
// Canonicalized per spec.md §9's open question: the source's
// CollisionObjectClass/CollisionObjectType distinction collapses to this
// single enum everywhere in this port.
type Class uint8

const (
	ClassStatic Class = iota
	ClassMove
	ClassHit
	numClasses
)

func (c Class) String() string {
	switch c {
	case ClassStatic:
		return "Static"
	case ClassMove:
		return "Move"
	case ClassHit:
		return "Hit"
	default:
		return "Unknown"
	}
}

// visits returns the classes that a proxy of class c must be checked
// against when it moves (spec.md §4.2.2 pair-rules table), and is reused
// as-is for shape queries (spec.md §4.2.3: "mirroring the pair-rules
// table").
func visits(c Class) []Class {
	switch c {
	case ClassStatic:
		return []Class{ClassMove, ClassHit}
	case ClassMove:
		return []Class{ClassStatic, ClassMove}
	case ClassHit:
		return []Class{ClassStatic, ClassHit}
	default:
		return nil
	}
}

// ProxyHandle indexes a proxy in the broad-phase's dense slab.
type ProxyHandle uint32

type proxyStatusKind uint8

const (
	statusCreated proxyStatusKind = iota
	statusDetached
	statusAttached
	statusDeleted
)

type proxyStatus struct {
	kind proxyStatusKind
	idx  int32        // queue index when Detached (this tick's leaves_to_update)
	leaf dbvh.NodeId  // tree leaf id when Attached
}

// Proxy is the broad-phase's record of one registered shape (spec.md §3.4).
type Proxy[D any] struct {
	status  proxyStatus
	class   Class
	data    D
	updated bool
	inUse   bool
	next    ProxyHandle // free-list link
}

// Class returns the proxy's class tag.
func (p Proxy[D]) Class() Class { return p.class }

// Data returns the proxy's user-data back-pointer.
func (p Proxy[D]) Data() D { return p.data }

// Attached reports whether the proxy currently has a tree leaf.
func (p Proxy[D]) Attached() bool { return p.status.kind == statusAttached }

type queuedUpdate struct {
	handle ProxyHandle
	bv     geom.AABB
}

// pendingPair carries the object-data pair for a stopped interference whose
// notification is deferred from Remove to the next Update call (see the
// doc comment on Remove for why).
type pendingPair[D any] struct {
	a, b D
}

// pairKey is an unordered pair of proxy handles, normalized so A < B.
type pairKey struct {
	A, B ProxyHandle
}

func makePairKey(a, b ProxyHandle) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}
