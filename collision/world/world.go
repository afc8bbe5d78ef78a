// Package world implements the collision world (spec.md §4.3): the object
// slab, the tri-tree broad-phase, the interaction graph that tracks live
// interference pairs, and the query surface (point/AABB/ray, TOI sweeps)
// built on top of them.
package world

import (
	"github.com/embervale/actioncore/collision/broadphase"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
)

// EventKind distinguishes a touching contact from a proximity alert.
type EventKind uint8

const (
	EventContactStarted EventKind = iota
	EventContactStopped
	EventProximityStarted
	EventProximityStopped
)

// Event is one narrow-phase notification produced during Update.
type Event struct {
	A, B Handle
	Kind EventKind
}

// World is the collision world: object slab, broad-phase, interaction
// graph, and the pending event list the last Update produced.
type World[D any] struct {
	objects  []Object[D]
	freeHead Handle
	hasFree  bool

	bp    *broadphase.Broadphase[Handle]
	graph *graph

	events []Event
}

// New constructs an empty world whose broad-phase uses the given churn
// margin (spec.md §4.2).
func New[D any](margin fx.Fx) *World[D] {
	return &World[D]{
		bp:    broadphase.New[Handle](margin),
		graph: newGraph(),
	}
}

// Add registers a new collision object and returns its handle (spec.md
// §4.3's add algorithm).
func (w *World[D]) Add(class broadphase.Class, iso fx.Isometry, shape geom.Shape, groups Groups, query QueryType, data D) Handle {
	obj := Object[D]{
		inUse:    true,
		Class:    class,
		Isometry: iso,
		Shape:    shape,
		Groups:   groups,
		Query:    query,
		Data:     data,
	}

	var h Handle
	if w.hasFree {
		h = w.freeHead
		next := w.objects[h].freeNext
		if next == h {
			w.hasFree = false
		} else {
			w.freeHead = next
		}
		w.objects[h] = obj
	} else {
		w.objects = append(w.objects, obj)
		h = Handle(len(w.objects) - 1)
	}

	aabb := shape.AABB(iso).Loosened(query.QueryLimit())
	o := &w.objects[h]
	o.proxy = w.bp.CreateProxy(class, aabb, h)
	o.graphIdx = w.graph.addNode(h)
	return h
}

// Object returns the object record for h.
func (w *World[D]) Object(h Handle) *Object[D] { return &w.objects[h] }

// Update runs the collision world's per-tick pipeline (spec.md §4.3):
// push dirty bounding volumes to the broad-phase, let it regenerate
// interference pairs, translate those into narrow-phase events, and clear
// every object's update flags.
func (w *World[D]) Update(classes []broadphase.Class) {
	w.events = w.events[:0]

	for i := range w.objects {
		o := &w.objects[i]
		if !o.inUse {
			continue
		}
		if o.Flags.Has(FlagBoundingVolumeChanged) {
			w.bp.DeferredSetBoundingVolume(o.proxy, o.swept())
		}
		if o.Flags.Has(FlagNeedsBroadPhaseRedispatch) {
			w.bp.DeferredRecomputeAllProximitiesWith(o.proxy)
		}
	}

	w.bp.Update(classes, worldHandler[D]{w})

	for i := range w.objects {
		if w.objects[i].inUse {
			w.objects[i].Flags = 0
		}
	}
}

// Events returns the narrow-phase notifications produced by the most
// recent Update call.
func (w *World[D]) Events() []Event { return w.events }

// Remove unregisters the given objects: their broad-phase proxies are
// dropped, their interaction-graph nodes are removed (re-indexing
// whichever object got swapped into the freed slot), and their slab
// entries are freed.
func (w *World[D]) Remove(handles []Handle) {
	proxies := make([]broadphase.ProxyHandle, 0, len(handles))
	for _, h := range handles {
		if int(h) >= len(w.objects) || !w.objects[h].inUse {
			continue
		}
		proxies = append(proxies, w.objects[h].proxy)
	}
	w.bp.Remove(proxies)

	for _, h := range handles {
		if int(h) >= len(w.objects) || !w.objects[h].inUse {
			continue
		}
		if moved, ok := w.graph.removeNode(h); ok {
			w.objects[moved].graphIdx = w.graph.index[moved]
		}
		w.objects[h].inUse = false
		if !w.hasFree {
			w.objects[h].freeNext = h
			w.freeHead = h
			w.hasFree = true
		} else {
			w.objects[h].freeNext = w.freeHead
			w.freeHead = h
		}
	}
}

// --- broadphase.Handler adapter ------------------------------------------

type worldHandler[D any] struct {
	w *World[D]
}

func (h worldHandler[D]) IsInterferenceAllowed(a, b Handle) bool {
	oa, ob := &h.w.objects[a], &h.w.objects[b]
	return CanInteractWith(oa.Groups, ob.Groups)
}

func (h worldHandler[D]) InterferenceStarted(a, b Handle) {
	h.w.graph.addEdge(a, b)
	h.w.events = append(h.w.events, Event{A: a, B: b, Kind: eventKind(h.w, a, b, true)})
}

func (h worldHandler[D]) InterferenceStopped(a, b Handle) {
	h.w.graph.removeEdge(a, b)
	h.w.events = append(h.w.events, Event{A: a, B: b, Kind: eventKind(h.w, a, b, false)})
}

// eventKind classifies a pair as a proximity event if either side is a
// proximity query, else a contact event. The broad-phase itself only
// tests bounding-volume overlap; shapes are opaque to this package (spec.md
// §1), so bounding-volume overlap stands in for an exact contact test.
func eventKind[D any](w *World[D], a, b Handle, started bool) EventKind {
	proximity := w.objects[a].Query.Kind == QueryProximity || w.objects[b].Query.Kind == QueryProximity
	switch {
	case proximity && started:
		return EventProximityStarted
	case proximity && !started:
		return EventProximityStopped
	case started:
		return EventContactStarted
	default:
		return EventContactStopped
	}
}

// --- queries (spec.md §4.3 "ray/point/AABB queries go to broad-phase then
// filter narrow") ---------------------------------------------------------

// QueryPoint returns every object of the visited classes whose exact shape
// (not just its bounding volume) contains p.
func (w *World[D]) QueryPoint(queryClass broadphase.Class, p fx.Vec3) []Handle {
	candidates := w.bp.InterferencesWithPoint(queryClass, p)
	out := make([]Handle, 0, len(candidates))
	for _, h := range candidates {
		o := &w.objects[h]
		if o.Shape.ContainsPoint(o.Isometry, p) {
			out = append(out, h)
		}
	}
	return out
}

// QueryAABB returns every object of the visited classes whose bounding
// volume overlaps box.
func (w *World[D]) QueryAABB(queryClass broadphase.Class, box geom.AABB) []Handle {
	return w.bp.InterferencesWithAABB(queryClass, box)
}

// RayHit is one exact ray/shape intersection.
type RayHit struct {
	Handle Handle
	TOI    fx.Fx
}

// QueryRay returns every object the ray exactly intersects within tMax,
// each with its precise time-of-impact.
func (w *World[D]) QueryRay(queryClass broadphase.Class, origin, dir fx.Vec3, tMax fx.Fx) []RayHit {
	candidates := w.bp.InterferencesWithRay(queryClass, origin, dir, tMax)
	out := make([]RayHit, 0, len(candidates))
	for _, h := range candidates {
		o := &w.objects[h]
		if toi, hit := o.Shape.RayIntersect(o.Isometry, origin, dir, tMax); hit {
			out = append(out, RayHit{Handle: h, TOI: toi})
		}
	}
	return out
}

// FirstImpactWithObj casts h's own shape along dir up to dmax and returns
// the minimum exact time-of-impact among broad-phase candidates whose
// bounding volume the swept ray crosses (spec.md §4.3's
// first_impact_with_obj, approximated here as a ray sweep from the
// object's own position since the opaque Shape boundary exposes no
// convex-sweep primitive of its own).
func (w *World[D]) FirstImpactWithObj(h Handle, dir fx.Vec3, dmax fx.Fx) (fx.Fx, bool) {
	self := &w.objects[h]
	origin := self.Isometry.Position
	exactRay := func(data Handle, lowerBound fx.Fx) (fx.Fx, bool) {
		if data == h {
			return 0, false
		}
		o := &w.objects[data]
		return o.Shape.RayIntersect(o.Isometry, origin, dir, dmax)
	}
	best, found := w.bp.FirstInterferenceWithRay(self.Class, origin, dir, dmax, exactRay)
	if !found {
		return 0, false
	}
	toi, _ := exactRay(best, 0)
	return toi, true
}
