package domain

import (
	"math"

	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// criticalEpsilon is the relative slack below which a node counts as critical.
const criticalEpsilon = 1e-9

// CriticalPath is the longest chain of dependent tasks.
type CriticalPath[A qty.Unit] struct {
	// Total is the earliest finish of the chain's last task.
	Total qty.Quantity[A]
	// Path lists the chain from its root to its leaf.
	Path []NodeHandle
}

// NodeTiming is the critical path method schedule of one node, measured from
// the start of the block at zero.
type NodeTiming[A qty.Unit] struct {
	Node           NodeHandle
	ID             string
	EarliestStart  qty.Quantity[A]
	EarliestFinish qty.Quantity[A]
	LatestStart    qty.Quantity[A]
	LatestFinish   qty.Quantity[A]
	Slack          qty.Quantity[A]
	Critical       bool
}

// Analysis is the full critical path method result for a block.
type Analysis[A qty.Unit] struct {
	Total        qty.Quantity[A]
	CriticalPath []NodeHandle
	Order        []NodeHandle
	// Timings is indexed like Order.
	Timings []NodeTiming[A]
}

// Timing returns the schedule of h, if h is part of the analysis.
func (a Analysis[A]) Timing(h NodeHandle) (NodeTiming[A], bool) {
	for _, t := range a.Timings {
		if t.Node == h {
			return t, true
		}
	}
	return NodeTiming[A]{}, false
}

// forwardPass is the dynamic programming state shared by CriticalPath and
// Analyze. All slices are indexed by slot.
type forwardPass struct {
	order  []uint32
	pos    []int
	size   []float64
	gap    []float64
	start  []float64
	finish []float64
	via    []int // predecessor on the longest chain, -1 for none
	end    int   // last node of the critical path
}

// forward computes, over one topological order,
//
//	finish(n) = size(n) + max over predecessors p of (finish(p) + gap(p))
//
// with the max of no predecessors taken as zero. Ties between predecessors,
// and between candidate end nodes, go to the earlier node in the order.
func (b *Block[A, T, D]) forward() (*forwardPass, error) {
	order, err := b.topoOrder(b.bySeq)
	if err != nil {
		return nil, err
	}

	n := len(b.slots)
	fp := &forwardPass{
		order:  order,
		pos:    make([]int, n),
		size:   make([]float64, n),
		gap:    make([]float64, n),
		start:  make([]float64, n),
		finish: make([]float64, n),
		via:    make([]int, n),
		end:    -1,
	}
	for i, node := range order {
		fp.pos[node] = i
		t := b.slots[node].task
		fp.size[node] = t.SizeOnAxis().Value()
		fp.gap[node] = t.GapAfter().Value()
	}

	for _, node := range order {
		best := -1
		start := 0.0
		for _, ei := range b.slots[node].in {
			p := int(b.edges[ei].from)
			cand := fp.finish[p] + fp.gap[p]
			if best == -1 || cand > start || (cand == start && fp.pos[p] < fp.pos[best]) {
				best, start = p, cand
			}
		}
		fp.via[node] = best
		fp.start[node] = start
		fp.finish[node] = start + fp.size[node]

		if len(b.slots[node].out) == 0 && (fp.end == -1 || fp.finish[node] > fp.finish[fp.end]) {
			fp.end = int(node)
		}
	}
	return fp, nil
}

func (fp *forwardPass) path() []uint32 {
	var rev []uint32
	for cur := fp.end; cur != -1; cur = fp.via[cur] {
		rev = append(rev, uint32(cur))
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// CriticalPath returns the longest duration chain, with sizes and gaps taken
// on axis A. It fails like TopoOrder on an empty or cyclic block.
func (b *Block[A, T, D]) CriticalPath() (CriticalPath[A], error) {
	fp, err := b.forward()
	if err != nil {
		return CriticalPath[A]{}, err
	}
	return CriticalPath[A]{
		Total: qty.New[A](fp.finish[fp.end]),
		Path:  b.handles(fp.path()),
	}, nil
}

// Analyze runs the critical path method: a forward pass for earliest times,
// a backward pass from the total for latest times, and slack as their
// difference. Gaps count on both passes.
func (b *Block[A, T, D]) Analyze() (Analysis[A], error) {
	fp, err := b.forward()
	if err != nil {
		return Analysis[A]{}, err
	}
	total := fp.finish[fp.end]

	latestFinish := make([]float64, len(b.slots))
	for i := len(fp.order) - 1; i >= 0; i-- {
		node := fp.order[i]
		lf := total
		for j, ei := range b.slots[node].out {
			s := b.edges[ei].to
			if ls := latestFinish[s] - fp.size[s] - fp.gap[node]; j == 0 || ls < lf {
				lf = ls
			}
		}
		latestFinish[node] = lf
	}

	tolerance := criticalEpsilon * math.Max(1, math.Abs(total))
	timings := make([]NodeTiming[A], len(fp.order))
	for i, node := range fp.order {
		lf := latestFinish[node]
		ls := lf - fp.size[node]
		slack := ls - fp.start[node]
		timings[i] = NodeTiming[A]{
			Node:           b.handle(node),
			ID:             b.slots[node].id,
			EarliestStart:  qty.New[A](fp.start[node]),
			EarliestFinish: qty.New[A](fp.finish[node]),
			LatestStart:    qty.New[A](ls),
			LatestFinish:   qty.New[A](lf),
			Slack:          qty.New[A](slack),
			Critical:       math.Abs(slack) <= tolerance,
		}
	}

	return Analysis[A]{
		Total:        qty.New[A](total),
		CriticalPath: b.handles(fp.path()),
		Order:        b.handles(fp.order),
		Timings:      timings,
	}, nil
}
