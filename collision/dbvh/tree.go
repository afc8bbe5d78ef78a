// Package dbvh implements FastDBVT, the dynamic bounding-volume tree that
// underlies the broad-phase (spec.md §4.1). It is a generic, incrementally
// updatable binary tree of AABBs: Insert/Remove maintain it as objects move,
// Visit drives an externally-owned-stack depth-first walk, and
// BestFirstSearch drives an A*-style priority traversal for ray queries.
package dbvh

import (
	"container/heap"

	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
)

// NodeId indexes a node in a Tree's slab. It also serves as the LeafId
// returned by Insert, since leaves are just nodes with no children.
type NodeId int32

// NullNode is the sentinel for "no node".
const NullNode NodeId = -1

type node[T any] struct {
	bv             geom.AABB
	parent         NodeId
	left, right    NodeId
	next           NodeId // free-list link when this slot is not in use
	height         int32
	isLeaf         bool
	inUse          bool
	data           T
}

// Leaf is the payload handed back by Remove: the bounding volume and data
// the removed leaf carried.
type Leaf[T any] struct {
	BV   geom.AABB
	Data T
}

// Tree is a dynamic bounding-volume tree over AABBs, storing a T per leaf.
type Tree[T any] struct {
	nodes    []node[T]
	freeHead NodeId
	root     NodeId

	// stack is owned by the tree and reused across Visit calls so no
	// traversal allocates (spec.md §4.1: "no recursion, no per-call
	// allocation").
	stack []NodeId
}

// NewTree constructs an empty dynamic bounding-volume tree.
func NewTree[T any]() *Tree[T] {
	return &Tree[T]{root: NullNode, freeHead: NullNode}
}

func cost(bv geom.AABB) fx.Fx {
	ext := bv.Max.Sub(bv.Min)
	return ext.X.Add(ext.Y).Add(ext.Z)
}

func (t *Tree[T]) allocate() NodeId {
	if t.freeHead != NullNode {
		id := t.freeHead
		n := &t.nodes[id]
		t.freeHead = n.next
		*n = node[T]{inUse: true}
		return id
	}
	t.nodes = append(t.nodes, node[T]{inUse: true})
	return NodeId(len(t.nodes) - 1)
}

func (t *Tree[T]) free(id NodeId) {
	t.nodes[id] = node[T]{inUse: false, next: t.freeHead}
	t.freeHead = id
}

// Insert adds a new leaf with the given bounding volume and payload,
// returning its LeafId (== NodeId).
func (t *Tree[T]) Insert(bv geom.AABB, data T) NodeId {
	leaf := t.allocate()
	n := &t.nodes[leaf]
	n.bv = bv
	n.data = data
	n.isLeaf = true
	n.parent = NullNode
	n.left, n.right = NullNode, NullNode
	n.height = 0

	if t.root == NullNode {
		t.root = leaf
		return leaf
	}

	sibling := t.root
	for !t.nodes[sibling].isLeaf {
		left, right := t.nodes[sibling].left, t.nodes[sibling].right
		costLeft := cost(t.nodes[left].bv.Union(bv))
		costRight := cost(t.nodes[right].bv.Union(bv))
		if costLeft < costRight {
			sibling = left
		} else {
			sibling = right
		}
	}

	oldParent := t.nodes[sibling].parent
	newParent := t.allocate()
	pn := &t.nodes[newParent]
	pn.bv = t.nodes[sibling].bv.Union(bv)
	pn.parent = oldParent
	pn.left, pn.right = sibling, leaf
	pn.height = t.nodes[sibling].height + 1
	pn.isLeaf = false

	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	if oldParent == NullNode {
		t.root = newParent
	} else {
		if t.nodes[oldParent].left == sibling {
			t.nodes[oldParent].left = newParent
		} else {
			t.nodes[oldParent].right = newParent
		}
		t.refitFrom(oldParent)
	}
	return leaf
}

func (t *Tree[T]) refitFrom(id NodeId) {
	for id != NullNode {
		n := &t.nodes[id]
		l, r := &t.nodes[n.left], &t.nodes[n.right]
		n.bv = l.bv.Union(r.bv)
		if l.height > r.height {
			n.height = l.height + 1
		} else {
			n.height = r.height + 1
		}
		id = n.parent
	}
}

// Remove deletes a leaf from the tree and returns the bounding volume and
// data it carried.
func (t *Tree[T]) Remove(leaf NodeId) Leaf[T] {
	removed := Leaf[T]{BV: t.nodes[leaf].bv, Data: t.nodes[leaf].data}

	if leaf == t.root {
		t.root = NullNode
		t.free(leaf)
		return removed
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling NodeId
	if t.nodes[parent].left == leaf {
		sibling = t.nodes[parent].right
	} else {
		sibling = t.nodes[parent].left
	}

	if grandParent == NullNode {
		t.root = sibling
		t.nodes[sibling].parent = NullNode
	} else {
		if t.nodes[grandParent].left == parent {
			t.nodes[grandParent].left = sibling
		} else {
			t.nodes[grandParent].right = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.refitFrom(grandParent)
	}

	t.free(parent)
	t.free(leaf)
	return removed
}

// VisitAction is the outcome of a Visit callback.
type VisitAction int

const (
	// VisitContinue descends into the node's children (a no-op for leaves).
	VisitContinue VisitAction = iota
	// VisitStop prunes this subtree but continues the overall traversal.
	VisitStop
	// VisitExitEarly aborts the entire traversal immediately.
	VisitExitEarly
)

// Visit performs a depth-first walk of the tree using the tree's own
// reusable stack (no allocation, no recursion). The callback receives each
// node's bounding volume, payload (meaningful only when isLeaf), and
// whether the node is a leaf.
func (t *Tree[T]) Visit(visit func(bv geom.AABB, data T, isLeaf bool) VisitAction) {
	if t.root == NullNode {
		return
	}
	t.stack = t.stack[:0]
	t.stack = append(t.stack, t.root)
	for len(t.stack) > 0 {
		id := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		n := &t.nodes[id]
		action := visit(n.bv, n.data, n.isLeaf)
		switch action {
		case VisitExitEarly:
			return
		case VisitStop:
			continue
		default:
			if !n.isLeaf {
				t.stack = append(t.stack, n.left, n.right)
			}
		}
	}
}

// Root returns the root node id, or NullNode if the tree is empty.
func (t *Tree[T]) Root() NodeId { return t.root }

// Empty reports whether the tree has no nodes.
func (t *Tree[T]) Empty() bool { return t.root == NullNode }

// BV returns the bounding volume stored at id.
func (t *Tree[T]) BV(id NodeId) geom.AABB { return t.nodes[id].bv }

// Data returns the payload stored at leaf id.
func (t *Tree[T]) Data(id NodeId) T { return t.nodes[id].data }

// --- BestFirstSearch ---------------------------------------------------

// BestFirstOutcome is the result a BestFirstSearch visitor returns for one
// node, modeling spec.md §4.1's Continue/Stop/ExitEarly contract.
type BestFirstOutcome[R any] struct {
	Action    VisitAction // VisitContinue, VisitStop, or VisitExitEarly
	Cost      fx.Fx       // meaningful only when Action == VisitContinue
	Result    R
	HasResult bool
}

type pqItem struct {
	cost fx.Fx
	node NodeId
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// BestFirstSearch runs an A*-style priority-queue traversal over t,
// terminating as soon as the queue's minimum cost is no better than the
// best result found so far (spec.md §4.1). visit is called once for the
// root and then once per child as nodes are expanded; it must return a
// consistent lower bound as Cost so the pruning invariant holds.
//
// The visitor is free to use a non-strict lower bound, but per spec.md §9's
// open-question note, a child is only enqueued with priority from a
// Continue outcome — ties at exactly best_cost are pruned at the next pop,
// not re-expanded, so callers relying on non-strict bounds should tighten
// them if they need every tied candidate visited.
func BestFirstSearch[T any, R any](t *Tree[T], visit func(bestCost fx.Fx, bv geom.AABB, data T, isLeaf bool) BestFirstOutcome[R]) (bestNode NodeId, bestResult R, ok bool) {
	bestNode = NullNode
	if t.root == NullNode {
		return bestNode, bestResult, false
	}

	bestCost := fx.Max
	pq := &priorityQueue{}
	heap.Init(pq)

	rootNode := &t.nodes[t.root]
	rootOutcome := visit(bestCost, rootNode.bv, rootNode.data, rootNode.isLeaf)
	switch rootOutcome.Action {
	case VisitExitEarly:
		if rootOutcome.HasResult {
			return t.root, rootOutcome.Result, true
		}
		return NullNode, bestResult, false
	case VisitStop:
		return NullNode, bestResult, false
	default:
		if rootOutcome.HasResult && rootOutcome.Cost < bestCost {
			bestCost = rootOutcome.Cost
			bestResult = rootOutcome.Result
			bestNode = t.root
			ok = true
		}
		heap.Push(pq, pqItem{cost: rootOutcome.Cost, node: t.root})
	}

	for pq.Len() > 0 {
		top := heap.Pop(pq).(pqItem)
		if top.cost >= bestCost {
			return bestNode, bestResult, ok
		}
		n := &t.nodes[top.node]
		if n.isLeaf {
			continue
		}
		for _, childID := range [2]NodeId{n.left, n.right} {
			child := &t.nodes[childID]
			outcome := visit(bestCost, child.bv, child.data, child.isLeaf)
			switch outcome.Action {
			case VisitExitEarly:
				if outcome.HasResult {
					return childID, outcome.Result, true
				}
				return bestNode, bestResult, ok
			case VisitStop:
				continue
			default:
				if outcome.HasResult && outcome.Cost < bestCost {
					bestCost = outcome.Cost
					bestResult = outcome.Result
					bestNode = childID
					ok = true
				}
				heap.Push(pq, pqItem{cost: outcome.Cost, node: childID})
			}
		}
	}
	return bestNode, bestResult, ok
}
