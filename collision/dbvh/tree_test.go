package dbvh

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

func TestInsertRemoveRoundTrip(t *testing.T) {
	tree := NewTree[string]()
	a := tree.Insert(box(0, 0, 0, 1, 1, 1), "a")
	b := tree.Insert(box(5, 5, 5, 6, 6, 6), "b")
	c := tree.Insert(box(2, 2, 2, 3, 3, 3), "c")

	seen := map[string]bool{}
	tree.Visit(func(bv geom.AABB, data string, isLeaf bool) VisitAction {
		if isLeaf {
			seen[data] = true
		}
		return VisitContinue
	})
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("expected leaf %q to be visited", want)
		}
	}

	removed := tree.Remove(b)
	if removed.Data != "b" {
		t.Errorf("Remove(b).Data = %q, want b", removed.Data)
	}

	seen = map[string]bool{}
	tree.Visit(func(bv geom.AABB, data string, isLeaf bool) VisitAction {
		if isLeaf {
			seen[data] = true
		}
		return VisitContinue
	})
	if seen["b"] {
		t.Error("b should no longer be in the tree after Remove")
	}
	if !seen["a"] || !seen["c"] {
		t.Error("a and c should remain after removing b")
	}

	tree.Remove(a)
	tree.Remove(c)
	if !tree.Empty() {
		t.Error("tree should be empty after removing all leaves")
	}
}

func TestVisitExitEarlyAborts(t *testing.T) {
	tree := NewTree[int]()
	for i := 0; i < 10; i++ {
		tree.Insert(box(int64(i), 0, 0, int64(i)+1, 1, 1), i)
	}
	visited := 0
	tree.Visit(func(bv geom.AABB, data int, isLeaf bool) VisitAction {
		visited++
		return VisitExitEarly
	})
	if visited != 1 {
		t.Errorf("ExitEarly on first node should abort immediately, visited %d nodes", visited)
	}
}

func TestBestFirstSearchFindsNearest(t *testing.T) {
	tree := NewTree[int]()
	for i := 0; i < 10; i++ {
		tree.Insert(box(int64(i)*10, 0, 0, int64(i)*10+1, 1, 1), i)
	}
	origin := fx.V3(0, 0, 0)

	_, result, ok := BestFirstSearch(tree, func(bestCost fx.Fx, bv geom.AABB, data int, isLeaf bool) BestFirstOutcome[int] {
		lowerBound, hit := geom.RayAABB(origin, fx.V3(fx.One, 0, 0), fx.FromInt(1000), bv)
		if !hit {
			return BestFirstOutcome[int]{Action: VisitStop}
		}
		if !isLeaf {
			return BestFirstOutcome[int]{Action: VisitContinue, Cost: lowerBound}
		}
		return BestFirstOutcome[int]{Action: VisitContinue, Cost: lowerBound, Result: data, HasResult: true}
	})
	if !ok {
		t.Fatal("expected a best-first hit")
	}
	if result != 0 {
		t.Errorf("nearest box along +X from origin should be box 0, got %d", result)
	}
}

func TestBestFirstSearchExitEarly(t *testing.T) {
	tree := NewTree[int]()
	tree.Insert(box(0, 0, 0, 1, 1, 1), 42)
	tree.Insert(box(100, 0, 0, 101, 1, 1), 7)

	_, result, ok := BestFirstSearch(tree, func(bestCost fx.Fx, bv geom.AABB, data int, isLeaf bool) BestFirstOutcome[int] {
		if isLeaf && data == 42 {
			return BestFirstOutcome[int]{Action: VisitExitEarly, Result: 42, HasResult: true}
		}
		return BestFirstOutcome[int]{Action: VisitContinue, Cost: 0}
	})
	if !ok || result != 42 {
		t.Errorf("ExitEarly should short-circuit with its own result, got %d ok=%v", result, ok)
	}
}
