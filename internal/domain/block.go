package domain

import (
	"fmt"
	"iter"
	"sort"

	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// slot is one arena cell. Removing a task tombstones its slot and bumps gen,
// so handles to the old occupant stop resolving.
type slot[T any] struct {
	task T
	id   string
	seq  uint64 // insertion order; breaks ordering ties
	gen  uint32
	live bool
	out  []int // outgoing edge indices, in insertion order
	in   []int // incoming edge indices, in insertion order
}

type edge[D any] struct {
	from, to uint32
	label    D
	seq      uint64
	live     bool
}

// Edge is a dependency as reported by queries: From must finish before To.
type Edge[D any] struct {
	From  NodeHandle
	To    NodeHandle
	Label D
}

// BlockOption configures a Block.
type BlockOption func(*blockOptions)

type blockOptions struct {
	ids IDGenerator
}

// WithIDGenerator replaces the default SequentialIDs("task") generator.
func WithIDGenerator(g IDGenerator) BlockOption {
	return func(o *blockOptions) {
		if g != nil {
			o.ids = g
		}
	}
}

// Block is a scheduling block: a DAG of tasks of type T on axis unit A whose
// edges carry labels of type D.
//
// The graph is acyclic at every observable point: AddDependency proves an
// edge safe before committing it. Block does no locking of its own; reads may
// run concurrently with each other, mutations need exclusive access.
type Block[A qty.Unit, T Task[A], D any] struct {
	serial    uint64
	slots     []slot[T]
	freeSlots []uint32
	edges     []edge[D]
	freeEdges []int
	byID      map[string]uint32
	ids       IDGenerator
	nextSeq   uint64
	nodeCount int
	edgeCount int
}

// NewBlock returns an empty block.
func NewBlock[A qty.Unit, T Task[A], D any](opts ...BlockOption) *Block[A, T, D] {
	o := blockOptions{ids: SequentialIDs("task")}
	for _, opt := range opts {
		opt(&o)
	}
	return &Block[A, T, D]{
		serial: blockSerial.Add(1),
		byID:   make(map[string]uint32),
		ids:    o.ids,
	}
}

// Len returns the number of live tasks.
func (b *Block[A, T, D]) Len() int { return b.nodeCount }

// EdgeCount returns the number of live dependency edges.
func (b *Block[A, T, D]) EdgeCount() int { return b.edgeCount }

// AddTask stores t under a freshly generated identity and returns it.
func (b *Block[A, T, D]) AddTask(t T) string {
	id := b.freshID()
	b.insert(id, t)
	return id
}

// AddTaskWithID stores t under id, or under a generated identity when id is
// empty. A live id is refused with *DuplicateIDError and nothing changes.
func (b *Block[A, T, D]) AddTaskWithID(t T, id string) (string, error) {
	if id == "" {
		return b.AddTask(t), nil
	}
	if _, taken := b.byID[id]; taken {
		return "", &DuplicateIDError{ID: id}
	}
	b.insert(id, t)
	return id, nil
}

// maxIDAttempts bounds how many candidates freshID asks the generator for.
const maxIDAttempts = 1024

func (b *Block[A, T, D]) freshID() string {
	for range maxIDAttempts {
		id := b.ids.NextID()
		if _, taken := b.byID[id]; !taken && id != "" {
			return id
		}
	}
	panic(fmt.Sprintf("domain: IDGenerator yielded no free identity in %d attempts", maxIDAttempts))
}

func (b *Block[A, T, D]) insert(id string, t T) {
	b.nextSeq++
	var idx uint32
	if n := len(b.freeSlots); n > 0 {
		idx = b.freeSlots[n-1]
		b.freeSlots = b.freeSlots[:n-1]
		s := &b.slots[idx]
		s.task, s.id, s.seq, s.live = t, id, b.nextSeq, true
		s.out, s.in = s.out[:0], s.in[:0]
	} else {
		idx = uint32(len(b.slots))
		b.slots = append(b.slots, slot[T]{task: t, id: id, seq: b.nextSeq, live: true})
	}
	b.byID[id] = idx
	b.nodeCount++
}

func (b *Block[A, T, D]) handle(idx uint32) NodeHandle {
	return NodeHandle{block: b.serial, index: idx, gen: b.slots[idx].gen}
}

// resolve maps a handle to its live slot index.
func (b *Block[A, T, D]) resolve(h NodeHandle) (uint32, error) {
	if h.block != b.serial || int(h.index) >= len(b.slots) {
		return 0, &InvalidNodeIndexError{Handle: h}
	}
	s := &b.slots[h.index]
	if !s.live || s.gen != h.gen {
		return 0, &InvalidNodeIndexError{Handle: h}
	}
	return h.index, nil
}

// NodeOf resolves an identity to its node handle.
func (b *Block[A, T, D]) NodeOf(id string) (NodeHandle, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return NodeHandle{}, false
	}
	return b.handle(idx), true
}

// IDOf returns the identity of a live node.
func (b *Block[A, T, D]) IDOf(h NodeHandle) (string, bool) {
	idx, err := b.resolve(h)
	if err != nil {
		return "", false
	}
	return b.slots[idx].id, true
}

// TaskByID returns the payload stored under id.
func (b *Block[A, T, D]) TaskByID(id string) (T, bool) {
	idx, ok := b.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return b.slots[idx].task, true
}

// Task returns the payload stored at h.
func (b *Block[A, T, D]) Task(h NodeHandle) (T, error) {
	idx, err := b.resolve(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return b.slots[idx].task, nil
}

// RemoveTask deletes the task with identity id together with every edge
// touching it, and returns its payload. The node's handle becomes invalid.
func (b *Block[A, T, D]) RemoveTask(id string) (T, bool) {
	var zero T
	idx, ok := b.byID[id]
	if !ok {
		return zero, false
	}
	s := &b.slots[idx]
	for _, ei := range s.out {
		b.dropEdge(ei, idx)
	}
	for _, ei := range s.in {
		b.dropEdge(ei, idx)
	}

	removed := s.task
	s.task = zero
	s.id = ""
	s.live = false
	s.gen++
	s.out, s.in = s.out[:0], s.in[:0]
	delete(b.byID, id)
	b.freeSlots = append(b.freeSlots, idx)
	b.nodeCount--
	return removed, true
}

// dropEdge kills edge ei and unlinks it from the endpoint that is not being
// removed. Self-edges cannot exist, so exactly one side needs unlinking.
func (b *Block[A, T, D]) dropEdge(ei int, removing uint32) {
	e := &b.edges[ei]
	if !e.live {
		return
	}
	if e.from == removing {
		b.slots[e.to].in = without(b.slots[e.to].in, ei)
	} else {
		b.slots[e.from].out = without(b.slots[e.from].out, ei)
	}
	var zero D
	e.label = zero
	e.live = false
	b.freeEdges = append(b.freeEdges, ei)
	b.edgeCount--
}

func without(list []int, v int) []int {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// Tasks yields every live (identity, payload) pair once per call.
func (b *Block[A, T, D]) Tasks() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for i := range b.slots {
			s := &b.slots[i]
			if !s.live {
				continue
			}
			if !yield(s.id, s.task) {
				return
			}
		}
	}
}

// AddDependency records that from must complete before to may start.
//
// The edge is refused with ErrCycleDetected, leaving the graph untouched, if
// to already reaches from (a self-edge included). Parallel edges between the
// same pair are allowed.
func (b *Block[A, T, D]) AddDependency(from, to NodeHandle, label D) error {
	fi, err := b.resolve(from)
	if err != nil {
		return err
	}
	ti, err := b.resolve(to)
	if err != nil {
		return err
	}
	if b.reaches(ti, fi) {
		return &CycleError{From: from, To: to}
	}
	b.link(fi, ti, label)
	return nil
}

// AddDependencyUnchecked commits an edge without the reachability proof; only
// self-edges are still refused. It exists for bulk loaders that validate
// separately. A cycle introduced here is reported by the ordering queries as
// ErrGraphContainsCycle.
func (b *Block[A, T, D]) AddDependencyUnchecked(from, to NodeHandle, label D) error {
	fi, err := b.resolve(from)
	if err != nil {
		return err
	}
	ti, err := b.resolve(to)
	if err != nil {
		return err
	}
	if fi == ti {
		return &CycleError{From: from, To: to}
	}
	b.link(fi, ti, label)
	return nil
}

func (b *Block[A, T, D]) link(from, to uint32, label D) {
	b.nextSeq++
	e := edge[D]{from: from, to: to, label: label, seq: b.nextSeq, live: true}
	var ei int
	if n := len(b.freeEdges); n > 0 {
		ei = b.freeEdges[n-1]
		b.freeEdges = b.freeEdges[:n-1]
		b.edges[ei] = e
	} else {
		ei = len(b.edges)
		b.edges = append(b.edges, e)
	}
	b.slots[from].out = append(b.slots[from].out, ei)
	b.slots[to].in = append(b.slots[to].in, ei)
	b.edgeCount++
}

// reaches reports whether a path src ->* dst exists. src == dst counts.
func (b *Block[A, T, D]) reaches(src, dst uint32) bool {
	if src == dst {
		return true
	}
	seen := make([]bool, len(b.slots))
	stack := []uint32{src}
	seen[src] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ei := range b.slots[n].out {
			next := b.edges[ei].to
			if next == dst {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Dependencies returns every edge in the order it was added.
func (b *Block[A, T, D]) Dependencies() []Edge[D] {
	live := make([]int, 0, b.edgeCount)
	for i := range b.edges {
		if b.edges[i].live {
			live = append(live, i)
		}
	}
	sort.Slice(live, func(i, j int) bool { return b.edges[live[i]].seq < b.edges[live[j]].seq })

	out := make([]Edge[D], len(live))
	for i, ei := range live {
		e := b.edges[ei]
		out[i] = Edge[D]{From: b.handle(e.from), To: b.handle(e.to), Label: e.label}
	}
	return out
}

// EdgesBetween returns the labels of every from -> to edge.
func (b *Block[A, T, D]) EdgesBetween(from, to NodeHandle) ([]D, error) {
	fi, err := b.resolve(from)
	if err != nil {
		return nil, err
	}
	ti, err := b.resolve(to)
	if err != nil {
		return nil, err
	}
	var labels []D
	for _, ei := range b.slots[fi].out {
		if b.edges[ei].to == ti {
			labels = append(labels, b.edges[ei].label)
		}
	}
	return labels, nil
}

// Successors returns the distinct direct dependents of h.
func (b *Block[A, T, D]) Successors(h NodeHandle) ([]NodeHandle, error) {
	idx, err := b.resolve(h)
	if err != nil {
		return nil, err
	}
	return b.neighbours(b.slots[idx].out, func(e *edge[D]) uint32 { return e.to }), nil
}

// Predecessors returns the distinct direct prerequisites of h.
func (b *Block[A, T, D]) Predecessors(h NodeHandle) ([]NodeHandle, error) {
	idx, err := b.resolve(h)
	if err != nil {
		return nil, err
	}
	return b.neighbours(b.slots[idx].in, func(e *edge[D]) uint32 { return e.from }), nil
}

func (b *Block[A, T, D]) neighbours(edges []int, end func(*edge[D]) uint32) []NodeHandle {
	seen := make(map[uint32]bool, len(edges))
	out := make([]NodeHandle, 0, len(edges))
	for _, ei := range edges {
		n := end(&b.edges[ei])
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, b.handle(n))
	}
	return out
}

// Roots returns the nodes without incoming edges, in insertion order.
func (b *Block[A, T, D]) Roots() []NodeHandle {
	return b.collect(func(s *slot[T]) bool { return len(s.in) == 0 })
}

// Leaves returns the nodes without outgoing edges, in insertion order.
func (b *Block[A, T, D]) Leaves() []NodeHandle {
	return b.collect(func(s *slot[T]) bool { return len(s.out) == 0 })
}

func (b *Block[A, T, D]) collect(keep func(*slot[T]) bool) []NodeHandle {
	idx := make([]uint32, 0)
	for i := range b.slots {
		if s := &b.slots[i]; s.live && keep(s) {
			idx = append(idx, uint32(i))
		}
	}
	sort.Slice(idx, func(i, j int) bool { return b.slots[idx[i]].seq < b.slots[idx[j]].seq })

	out := make([]NodeHandle, len(idx))
	for i, n := range idx {
		out[i] = b.handle(n)
	}
	return out
}
