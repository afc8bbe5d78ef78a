package broadphase

import (
	"github.com/embervale/actioncore/collision/dbvh"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
)

// Handler receives the broad-phase's pair-lifecycle callbacks during
// Update, and decides which class/group combinations are even allowed to
// interfere (spec.md §4.2.2, §4.4).
type Handler[D any] interface {
	IsInterferenceAllowed(a, b D) bool
	InterferenceStarted(a, b D)
	InterferenceStopped(a, b D)
}

// pairEntry is the interference-pair cache's value: a freshness flag, true
// while the pair was rediscovered during the current tick's Phase B.
type pairEntry struct {
	fresh bool
}

// Broadphase is the tri-tree broad-phase: three independent FastDBVTs
// indexed by Class, a proxy slab, per-class deferred update queues, and
// the interference pair cache.
type Broadphase[D any] struct {
	trees    [numClasses]*dbvh.Tree[ProxyHandle]
	proxies  []Proxy[D]
	freeHead ProxyHandle
	hasFree  bool

	queues [numClasses][]queuedUpdate
	// pendingBV holds the loosened bounding volume queued for each
	// Detached proxy this tick, indexed by proxyStatus.idx; reset per class
	// at the start of each Update call.
	pendingBV [numClasses][]geom.AABB

	pairs    map[pairKey]*pairEntry
	margin   fx.Fx
	purgeAll bool

	// pendingStopped holds interference-stopped notifications deferred
	// from Remove to the next Update call, since Remove has no Handler to
	// call directly (spec.md §4.2.1 gives remove(handles) no handler
	// parameter) but spec.md §8's testable property requires the stopped
	// event to surface once Update next runs.
	pendingStopped []pendingPair[D]

	// collectScratch is reused across Phase B pair-discovery queries to
	// avoid per-tick allocation.
	collectScratch []ProxyHandle
}

// New constructs an empty broad-phase. margin controls how much a proxy's
// bounding volume is loosened before being pushed into the tree, to absorb
// small motions without broad-phase churn.
func New[D any](margin fx.Fx) *Broadphase[D] {
	bp := &Broadphase[D]{
		margin: margin,
		pairs:  make(map[pairKey]*pairEntry),
	}
	for i := range bp.trees {
		bp.trees[i] = dbvh.NewTree[ProxyHandle]()
	}
	return bp
}

// CreateProxy allocates a new proxy in status Created and enqueues its
// initial bounding volume on its class's deferred queue.
func (bp *Broadphase[D]) CreateProxy(class Class, bv geom.AABB, data D) ProxyHandle {
	var h ProxyHandle
	if bp.hasFree {
		h = bp.popFree()
	} else {
		bp.proxies = append(bp.proxies, Proxy[D]{})
		h = ProxyHandle(len(bp.proxies) - 1)
	}
	p := &bp.proxies[h]
	*p = Proxy[D]{class: class, data: data, inUse: true, status: proxyStatus{kind: statusCreated}}
	bp.queues[class] = append(bp.queues[class], queuedUpdate{handle: h, bv: bv.Loosened(bp.margin)})
	return h
}

func (bp *Broadphase[D]) popFree() ProxyHandle {
	h := bp.freeHead
	next := bp.proxies[h].next
	if next == h {
		bp.hasFree = false
	} else {
		bp.freeHead = next
	}
	return h
}

func (bp *Broadphase[D]) pushFree(h ProxyHandle) {
	if !bp.hasFree {
		bp.proxies[h].next = h
		bp.freeHead = h
		bp.hasFree = true
		return
	}
	bp.proxies[h].next = bp.freeHead
	bp.freeHead = h
}

// Proxy returns the proxy record for h (for diagnostics/tests).
func (bp *Broadphase[D]) Proxy(h ProxyHandle) Proxy[D] { return bp.proxies[h] }

// Remove detaches and deletes each handle: if attached, its leaf is pulled
// from the tree; any cached pairs referencing it are dropped immediately
// (spec.md §4.2.1's "sweep the pair cache"), with their
// interference-stopped notification queued for delivery on the next
// Update call, since Remove has no handler to call directly. Unknown
// handles are ignored (spec.md §7: public remove is tolerant).
func (bp *Broadphase[D]) Remove(handles []ProxyHandle) {
	for _, h := range handles {
		if int(h) >= len(bp.proxies) || !bp.proxies[h].inUse {
			continue
		}
		p := &bp.proxies[h]
		if p.status.kind == statusAttached {
			bp.trees[p.class].Remove(p.status.leaf)
		}

		for key := range bp.pairs {
			if key.A != h && key.B != h {
				continue
			}
			other := key.A
			if key.A == h {
				other = key.B
			}
			bp.pendingStopped = append(bp.pendingStopped, pendingPair[D]{a: p.data, b: bp.proxies[other].data})
			delete(bp.pairs, key)
		}

		p.status = proxyStatus{kind: statusDeleted}
		p.inUse = false
		bp.pushFree(h)
	}
}

// DeferredSetBoundingVolume queues bv for proxy h. If h is attached and its
// current (already loosened) bounding volume already contains bv, the
// update is skipped entirely (the cheap case); otherwise the loosened bv is
// enqueued.
func (bp *Broadphase[D]) DeferredSetBoundingVolume(h ProxyHandle, bv geom.AABB) {
	p := &bp.proxies[h]
	if p.status.kind == statusAttached {
		current := bp.trees[p.class].BV(p.status.leaf)
		if current.Contains(bv) {
			return
		}
	}
	bp.queues[p.class] = append(bp.queues[p.class], queuedUpdate{handle: h, bv: bv.Loosened(bp.margin)})
}

// DeferredRecomputeAllProximitiesWith re-triggers pair generation for h
// without any geometric change, by pushing its current bounding volume to
// the front of its class queue.
func (bp *Broadphase[D]) DeferredRecomputeAllProximitiesWith(h ProxyHandle) {
	p := &bp.proxies[h]
	if p.status.kind != statusAttached {
		return
	}
	bv := bp.trees[p.class].BV(p.status.leaf)
	bp.queues[p.class] = append([]queuedUpdate{{handle: h, bv: bv}}, bp.queues[p.class]...)
}

// DeferredRecomputeAllProximities re-triggers pair generation for every
// attached proxy, and forces a full pair-cache sweep at the next Update.
func (bp *Broadphase[D]) DeferredRecomputeAllProximities() {
	for h := range bp.proxies {
		p := &bp.proxies[h]
		if !p.inUse || p.status.kind != statusAttached {
			continue
		}
		bv := bp.trees[p.class].BV(p.status.leaf)
		bp.queues[p.class] = append([]queuedUpdate{{handle: ProxyHandle(h), bv: bv}}, bp.queues[p.class]...)
	}
	bp.purgeAll = true
}

// Update runs the three-phase tick algorithm of spec.md §4.2.2 over the
// given classes.
func (bp *Broadphase[D]) Update(types []Class, handler Handler[D]) {
	for _, pp := range bp.pendingStopped {
		handler.InterferenceStopped(pp.a, pp.b)
	}
	bp.pendingStopped = bp.pendingStopped[:0]

	var leavesToUpdate [numClasses][]ProxyHandle
	for _, class := range types {
		bp.pendingBV[class] = bp.pendingBV[class][:0]
	}

	// Phase A: remove updated leaves, routed by current status.
	for _, class := range types {
		queue := bp.queues[class]
		bp.queues[class] = nil
		for _, qu := range queue {
			p := &bp.proxies[qu.handle]
			switch p.status.kind {
			case statusAttached:
				bp.trees[class].Remove(p.status.leaf)
				idx := int32(len(leavesToUpdate[class]))
				leavesToUpdate[class] = append(leavesToUpdate[class], qu.handle)
				bp.pendingBV[class] = append(bp.pendingBV[class], qu.bv)
				p.status = proxyStatus{kind: statusDetached, idx: idx}
			case statusDetached:
				bp.pendingBV[class][p.status.idx] = qu.bv
			case statusCreated:
				idx := int32(len(leavesToUpdate[class]))
				leavesToUpdate[class] = append(leavesToUpdate[class], qu.handle)
				bp.pendingBV[class] = append(bp.pendingBV[class], qu.bv)
				p.status = proxyStatus{kind: statusDetached, idx: idx}
			case statusDeleted:
				// proxy was deleted after being queued; nothing to do.
			}
			p.updated = true
		}
	}

	// Phase B: reinsert updated leaves, generating/refreshing pairs.
	for _, class := range types {
		for _, h := range leavesToUpdate[class] {
			p := &bp.proxies[h]
			if p.status.kind != statusDetached {
				continue
			}
			bv := bp.pendingBV[class][p.status.idx]
			for _, other := range visits(class) {
				bp.collectScratch = bp.collectScratch[:0]
				bp.collectOverlaps(other, bv, h, &bp.collectScratch)
				for _, h2 := range bp.collectScratch {
					p2 := &bp.proxies[h2]
					if !handler.IsInterferenceAllowed(p.data, p2.data) {
						continue
					}
					key := makePairKey(h, h2)
					if entry, ok := bp.pairs[key]; ok {
						entry.fresh = true
					} else {
						bp.pairs[key] = &pairEntry{fresh: true}
						handler.InterferenceStarted(p.data, p2.data)
					}
				}
			}
			leaf := bp.trees[class].Insert(bv, h)
			p.status = proxyStatus{kind: statusAttached, leaf: leaf}
			p.updated = false
		}
	}

	// Phase C: purge stale pairs.
	for key, entry := range bp.pairs {
		if !bp.purgeAll && entry.fresh {
			entry.fresh = false
			continue
		}
		pa, okA := bp.safeProxy(key.A)
		pb, okB := bp.safeProxy(key.B)
		if !okA || !okB || pa.status.kind != statusAttached || pb.status.kind != statusAttached ||
			!handler.IsInterferenceAllowed(pa.data, pb.data) {
			handler.InterferenceStopped(pa.data, pb.data)
			delete(bp.pairs, key)
			continue
		}
		bvA := bp.trees[pa.class].BV(pa.status.leaf)
		bvB := bp.trees[pb.class].BV(pb.status.leaf)
		if bvA.Intersects(bvB) {
			entry.fresh = false
			continue
		}
		handler.InterferenceStopped(pa.data, pb.data)
		delete(bp.pairs, key)
	}
	bp.purgeAll = false
}

func (bp *Broadphase[D]) safeProxy(h ProxyHandle) (Proxy[D], bool) {
	if int(h) >= len(bp.proxies) || !bp.proxies[h].inUse {
		return Proxy[D]{}, false
	}
	return bp.proxies[h], true
}

func (bp *Broadphase[D]) collectOverlaps(class Class, bv geom.AABB, exclude ProxyHandle, out *[]ProxyHandle) {
	bp.trees[class].Visit(func(nbv geom.AABB, data ProxyHandle, isLeaf bool) dbvh.VisitAction {
		if !nbv.Intersects(bv) {
			return dbvh.VisitStop
		}
		if isLeaf && data != exclude {
			*out = append(*out, data)
		}
		return dbvh.VisitContinue
	})
}

// --- shape queries (spec.md §4.2.3) -------------------------------------

// InterferencesWithPoint returns the data of every proxy whose bounding
// volume contains p, among the classes the pair-rules table says queryClass
// would visit.
func (bp *Broadphase[D]) InterferencesWithPoint(queryClass Class, p fx.Vec3) []D {
	var out []D
	for _, class := range visits(queryClass) {
		bp.trees[class].Visit(func(bv geom.AABB, data ProxyHandle, isLeaf bool) dbvh.VisitAction {
			if !bv.ContainsPoint(p) {
				return dbvh.VisitStop
			}
			if isLeaf {
				out = append(out, bp.proxies[data].data)
			}
			return dbvh.VisitContinue
		})
	}
	return out
}

// InterferencesWithAABB returns the data of every proxy whose bounding
// volume overlaps box, among the classes queryClass visits.
func (bp *Broadphase[D]) InterferencesWithAABB(queryClass Class, box geom.AABB) []D {
	var out []D
	for _, class := range visits(queryClass) {
		bp.trees[class].Visit(func(bv geom.AABB, data ProxyHandle, isLeaf bool) dbvh.VisitAction {
			if !bv.Intersects(box) {
				return dbvh.VisitStop
			}
			if isLeaf {
				out = append(out, bp.proxies[data].data)
			}
			return dbvh.VisitContinue
		})
	}
	return out
}

// InterferencesWithRay collects every proxy whose bounding volume the ray
// crosses within tMax, among the classes queryClass visits.
func (bp *Broadphase[D]) InterferencesWithRay(queryClass Class, origin, dir fx.Vec3, tMax fx.Fx) []D {
	var out []D
	for _, class := range visits(queryClass) {
		bp.trees[class].Visit(func(bv geom.AABB, data ProxyHandle, isLeaf bool) dbvh.VisitAction {
			if _, hit := geom.RayAABB(origin, dir, tMax, bv); !hit {
				return dbvh.VisitStop
			}
			if isLeaf {
				out = append(out, bp.proxies[data].data)
			}
			return dbvh.VisitContinue
		})
	}
	return out
}

// FirstInterferenceWithRay runs best-first search across every class
// queryClass visits, using costFn to resolve an exact time-of-impact
// against the narrow shape; the broad-phase itself only ever supplies a
// lower-bound cost (the ray's entry distance into the candidate's bounding
// volume). The candidate with the smallest exact cost across all visited
// trees wins.
func (bp *Broadphase[D]) FirstInterferenceWithRay(queryClass Class, origin, dir fx.Vec3, tMax fx.Fx, costFn func(data D, lowerBound fx.Fx) (fx.Fx, bool)) (D, bool) {
	var best D
	bestCost := fx.Max
	found := false

	for _, class := range visits(queryClass) {
		var exactCost fx.Fx
		_, result, ok := dbvh.BestFirstSearch(bp.trees[class], func(curBest fx.Fx, bv geom.AABB, data ProxyHandle, isLeaf bool) dbvh.BestFirstOutcome[D] {
			lowerBound, hit := geom.RayAABB(origin, dir, tMax, bv)
			if !hit {
				return dbvh.BestFirstOutcome[D]{Action: dbvh.VisitStop}
			}
			if !isLeaf {
				return dbvh.BestFirstOutcome[D]{Action: dbvh.VisitContinue, Cost: lowerBound}
			}
			exact, ok := costFn(bp.proxies[data].data, lowerBound)
			if !ok {
				return dbvh.BestFirstOutcome[D]{Action: dbvh.VisitStop}
			}
			if exact < curBest {
				exactCost = exact
			}
			return dbvh.BestFirstOutcome[D]{
				Action:    dbvh.VisitContinue,
				Cost:      exact,
				Result:    bp.proxies[data].data,
				HasResult: true,
			}
		})
		if !ok {
			continue
		}
		if exactCost < bestCost {
			bestCost = exactCost
			best = result
			found = true
		}
	}
	return best, found
}
