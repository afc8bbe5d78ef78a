package world

import (
	"github.com/embervale/actioncore/collision/broadphase"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
)

// Handle indexes a collision object in the world's dense slab.
type Handle uint32

// QueryKind distinguishes a contact query (must actually touch) from a
// proximity query (alert within a numeric limit, without touching).
type QueryKind uint8

const (
	QueryContact QueryKind = iota
	QueryProximity
)

// QueryType pairs a QueryKind with the margin the broad-phase should
// loosen the object's bounding volume by.
type QueryType struct {
	Kind  QueryKind
	Limit fx.Fx
}

// QueryLimit returns the margin this query type contributes to the
// proxy's loosened bounding volume: zero for a contact query, Limit for a
// proximity query.
func (q QueryType) QueryLimit() fx.Fx {
	if q.Kind == QueryProximity {
		return q.Limit
	}
	return 0
}

// UpdateFlags accumulates the mutations an object has seen since the last
// tick; cleared at tick end (spec.md §3.3).
type UpdateFlags uint8

const (
	FlagBoundingVolumeChanged UpdateFlags = 1 << iota
	FlagNeedsBroadPhaseRedispatch
)

func (f UpdateFlags) Has(bit UpdateFlags) bool { return f&bit != 0 }

// Object is one entry in the collision world's slab (spec.md §3.3).
type Object[D any] struct {
	inUse bool

	Class    broadphase.Class
	Isometry fx.Isometry
	// NextIsometry is the predicted next-tick pose, set by callers ahead
	// of update (e.g. a ground-raycast solver); it is used only when
	// HasNext is true, otherwise Isometry alone is used.
	NextIsometry   fx.Isometry
	HasNext        bool
	Shape          geom.Shape
	Groups         Groups
	Query          QueryType
	Flags          UpdateFlags
	Data           D
	proxy    broadphase.ProxyHandle
	graphIdx int
	freeNext Handle // free-list link while !inUse
}

// Proxy returns the object's broad-phase proxy handle.
func (o Object[D]) Proxy() broadphase.ProxyHandle { return o.proxy }

// swept returns the object's current (optionally motion-swept) bounding
// volume, loosened by its query type's limit.
func (o *Object[D]) swept() geom.AABB {
	bv := o.Shape.AABB(o.Isometry)
	if o.HasNext {
		bv = bv.Union(o.Shape.AABB(o.NextIsometry))
	}
	return bv.Loosened(o.Query.QueryLimit())
}
