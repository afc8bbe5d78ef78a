package broadphase

import (
	"testing"

	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
)

func box(minX, minY, minZ, maxX, maxY, maxZ int64) geom.AABB {
	return geom.AABB{
		Min: fx.V3(fx.FromInt(minX), fx.FromInt(minY), fx.FromInt(minZ)),
		Max: fx.V3(fx.FromInt(maxX), fx.FromInt(maxY), fx.FromInt(maxZ)),
	}
}

type recordingHandler struct {
	started []pairRecord
	stopped []pairRecord
	deny    map[[2]string]bool
}

type pairRecord struct{ a, b string }

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{deny: map[[2]string]bool{}}
}

func (h *recordingHandler) IsInterferenceAllowed(a, b string) bool {
	if a > b {
		a, b = b, a
	}
	return !h.deny[[2]string{a, b}]
}

func (h *recordingHandler) InterferenceStarted(a, b string) {
	h.started = append(h.started, pairRecord{a, b})
}

func (h *recordingHandler) InterferenceStopped(a, b string) {
	h.stopped = append(h.stopped, pairRecord{a, b})
}

// TestProximityCycle mirrors the scenario where two proxies drift apart and
// back together across several ticks: interference must start once, stop
// once while separated, and start again once they overlap a second time.
func TestProximityCycle(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()

	a := bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "a")
	b := bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "b")

	bp.Update([]Class{ClassMove}, h)
	if len(h.started) != 1 {
		t.Fatalf("expected 1 interference_started after initial overlap, got %d", len(h.started))
	}

	bp.DeferredSetBoundingVolume(b, box(100, 100, 100, 101, 101, 101))
	bp.Update([]Class{ClassMove}, h)
	if len(h.stopped) != 1 {
		t.Fatalf("expected 1 interference_stopped after separation, got %d", len(h.stopped))
	}

	bp.DeferredSetBoundingVolume(b, box(0, 0, 0, 1, 1, 1))
	bp.Update([]Class{ClassMove}, h)
	if len(h.started) != 2 {
		t.Fatalf("expected 2 interference_started after re-overlap, got %d", len(h.started))
	}

	_ = a
}

func TestRemoveDefersStoppedToNextUpdate(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()

	a := bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "a")
	b := bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "b")
	bp.Update([]Class{ClassMove}, h)
	if len(h.started) != 1 {
		t.Fatalf("expected 1 interference_started, got %d", len(h.started))
	}

	bp.Remove([]ProxyHandle{a})
	if len(h.stopped) != 0 {
		t.Fatalf("Remove must not call the handler synchronously, got %d stopped calls", len(h.stopped))
	}

	bp.Update(nil, h)
	if len(h.stopped) != 1 {
		t.Fatalf("expected Remove's pending stop to surface on next Update, got %d", len(h.stopped))
	}
	_ = b
}

func TestIsInterferenceAllowedBlocksPair(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()
	h.deny[[2]string{"a", "b"}] = true

	bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "a")
	bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "b")
	bp.Update([]Class{ClassMove}, h)

	if len(h.started) != 0 {
		t.Fatalf("expected disallowed pair to never start, got %d", len(h.started))
	}
}

func TestClassPairRulesOnlyVisitConfiguredClasses(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()

	bp.CreateProxy(ClassStatic, box(0, 0, 0, 1, 1, 1), "s1")
	bp.CreateProxy(ClassStatic, box(0, 0, 0, 1, 1, 1), "s2")
	bp.Update([]Class{ClassStatic}, h)

	if len(h.started) != 0 {
		t.Fatalf("Static-vs-Static must never generate a pair, got %d", len(h.started))
	}
}

func TestInterferencesWithPointAndAABB(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()
	bp.CreateProxy(ClassStatic, box(0, 0, 0, 2, 2, 2), "wall")
	bp.Update([]Class{ClassStatic}, h)

	hits := bp.InterferencesWithPoint(ClassMove, fx.V3(fx.One, fx.One, fx.One))
	if len(hits) != 1 || hits[0] != "wall" {
		t.Fatalf("expected point query to find wall, got %v", hits)
	}

	hits = bp.InterferencesWithAABB(ClassHit, box(1, 1, 1, 5, 5, 5))
	if len(hits) != 1 || hits[0] != "wall" {
		t.Fatalf("expected AABB query to find wall, got %v", hits)
	}
}

func TestFirstInterferenceWithRay(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()
	bp.CreateProxy(ClassStatic, box(10, 0, 0, 11, 1, 1), "near")
	bp.CreateProxy(ClassStatic, box(20, 0, 0, 21, 1, 1), "far")
	bp.Update([]Class{ClassStatic}, h)

	origin := fx.V3(0, 0, 0)
	dir := fx.V3(fx.One, 0, 0)
	data, ok := bp.FirstInterferenceWithRay(ClassMove, origin, dir, fx.FromInt(1000), func(data string, lowerBound fx.Fx) (fx.Fx, bool) {
		return lowerBound, true
	})
	if !ok || data != "near" {
		t.Fatalf("expected nearest hit to be 'near', got %q ok=%v", data, ok)
	}
}

func TestDeferredRecomputeAllProximitiesForcesFullSweep(t *testing.T) {
	bp := New[string](0)
	h := newRecordingHandler()

	bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "a")
	bp.CreateProxy(ClassMove, box(0, 0, 0, 1, 1, 1), "b")
	bp.Update([]Class{ClassMove}, h)
	if len(h.started) != 1 {
		t.Fatalf("setup: expected 1 start, got %d", len(h.started))
	}

	h.deny[[2]string{"a", "b"}] = true
	bp.DeferredRecomputeAllProximities()
	bp.Update([]Class{ClassMove}, h)
	if len(h.stopped) != 1 {
		t.Fatalf("expected forced sweep to stop the now-disallowed pair, got %d", len(h.stopped))
	}
}
