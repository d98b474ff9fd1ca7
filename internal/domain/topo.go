package domain

import (
	"container/heap"
)

// readyHeap implements heap.Interface over slot indices whose predecessors
// have all been emitted. before decides which ready node goes first.
type readyHeap struct {
	nodes  []uint32
	before func(a, b uint32) bool
}

func (h *readyHeap) Len() int           { return len(h.nodes) }
func (h *readyHeap) Less(i, j int) bool { return h.before(h.nodes[i], h.nodes[j]) }
func (h *readyHeap) Swap(i, j int)      { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }

func (h *readyHeap) Push(x any) {
	h.nodes = append(h.nodes, x.(uint32))
}

func (h *readyHeap) Pop() any {
	old := h.nodes
	n := len(old)
	item := old[n-1]
	h.nodes = old[:n-1]
	return item
}

// TopoOrder returns every node such that each edge's source precedes its
// target. Nodes with no ordering between them come out in insertion order,
// so repeated calls on an unchanged block agree.
//
// An empty block yields ErrEmptyGraph.
func (b *Block[A, T, D]) TopoOrder() ([]NodeHandle, error) {
	order, err := b.topoOrder(b.bySeq)
	if err != nil {
		return nil, err
	}
	return b.handles(order), nil
}

// TopoOrderFunc is TopoOrder with a caller tie-break policy: whenever several
// nodes are ready, those for which less reports true go first. Insertion
// order settles anything less leaves equal.
func (b *Block[A, T, D]) TopoOrderFunc(less func(a, b NodeHandle) bool) ([]NodeHandle, error) {
	before := b.bySeq
	if less != nil {
		before = func(x, y uint32) bool {
			hx, hy := b.handle(x), b.handle(y)
			if less(hx, hy) {
				return true
			}
			if less(hy, hx) {
				return false
			}
			return b.bySeq(x, y)
		}
	}
	order, err := b.topoOrder(before)
	if err != nil {
		return nil, err
	}
	return b.handles(order), nil
}

func (b *Block[A, T, D]) bySeq(x, y uint32) bool {
	return b.slots[x].seq < b.slots[y].seq
}

// topoOrder runs Kahn's algorithm with a heap of ready nodes. Parallel edges
// are counted individually in the in-degrees.
func (b *Block[A, T, D]) topoOrder(before func(a, b uint32) bool) ([]uint32, error) {
	if b.nodeCount == 0 {
		return nil, ErrEmptyGraph
	}

	indeg := make([]int, len(b.slots))
	ready := &readyHeap{before: before}
	for i := range b.slots {
		s := &b.slots[i]
		if !s.live {
			continue
		}
		indeg[i] = len(s.in)
		if indeg[i] == 0 {
			ready.nodes = append(ready.nodes, uint32(i))
		}
	}
	heap.Init(ready)

	order := make([]uint32, 0, b.nodeCount)
	for ready.Len() > 0 {
		n := heap.Pop(ready).(uint32)
		order = append(order, n)
		for _, ei := range b.slots[n].out {
			next := b.edges[ei].to
			indeg[next]--
			if indeg[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(order) != b.nodeCount {
		return nil, ErrGraphContainsCycle
	}
	return order, nil
}

func (b *Block[A, T, D]) handles(idx []uint32) []NodeHandle {
	out := make([]NodeHandle, len(idx))
	for i, n := range idx {
		out[i] = b.handle(n)
	}
	return out
}

// Waves groups nodes by depth, the edge count of the longest path reaching
// them from a root. Nodes in one wave have no path between each other; each
// wave lists its nodes in topological order.
func (b *Block[A, T, D]) Waves() ([][]NodeHandle, error) {
	order, err := b.topoOrder(b.bySeq)
	if err != nil {
		return nil, err
	}

	depth := make([]int, len(b.slots))
	var waves [][]NodeHandle
	for _, n := range order {
		d := 0
		for _, ei := range b.slots[n].in {
			if p := depth[b.edges[ei].from] + 1; p > d {
				d = p
			}
		}
		depth[n] = d
		for len(waves) <= d {
			waves = append(waves, nil)
		}
		waves[d] = append(waves[d], b.handle(n))
	}
	return waves, nil
}
