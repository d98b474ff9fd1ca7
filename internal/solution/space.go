// Package solution holds the windows each task may occupy on the scheduling
// axis and the window metrics derived from them: earliest start, deadline
// and flexibility. Metrics are measured against a fixed horizon; nothing
// here places tasks.
package solution

import (
	"cmp"
	"slices"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// Space maps task identities to their candidate windows, sorted by start.
// It is not safe for concurrent mutation.
type Space[A qty.Unit] struct {
	intervals map[string][]qty.Interval[A]
}

// NewSpace returns an empty space.
func NewSpace[A qty.Unit]() *Space[A] {
	return &Space[A]{intervals: make(map[string][]qty.Interval[A])}
}

// FromBlock computes the windows of every task in b inside horizon.
func FromBlock[A qty.Unit, T domain.Task[A], D any](b *domain.Block[A, T, D], horizon qty.Interval[A]) *Space[A] {
	s := NewSpace[A]()
	for id, t := range b.Tasks() {
		s.intervals[id] = Windows[A](t, horizon)
	}
	return s
}

// Windows returns where t may run inside horizon. An unconstrained task gets
// the whole horizon. Otherwise the windows of every constraint leaf are
// merged: the union an OR of leaves describes. Other operators are not
// interpreted.
func Windows[A qty.Unit, T domain.Task[A]](t T, horizon qty.Interval[A]) []qty.Interval[A] {
	tree := t.Constraints()
	if tree == nil {
		return []qty.Interval[A]{horizon}
	}
	var all []qty.Interval[A]
	for _, leaf := range tree.Leaves() {
		all = append(all, leaf.Windows(horizon)...)
	}
	return Merge(all)
}

// Set replaces the windows of task id. The slice is copied and sorted.
func (s *Space[A]) Set(id string, intervals []qty.Interval[A]) {
	sorted := slices.Clone(intervals)
	sortByStart(sorted)
	s.intervals[id] = sorted
}

// Intervals returns the windows of task id; ok is false for unknown tasks.
func (s *Space[A]) Intervals(id string) (intervals []qty.Interval[A], ok bool) {
	intervals, ok = s.intervals[id]
	return intervals, ok
}

// Delete forgets task id.
func (s *Space[A]) Delete(id string) { delete(s.intervals, id) }

// Len is the number of tasks with recorded windows.
func (s *Space[A]) Len() int { return len(s.intervals) }

// Merge returns the union of intervals as sorted, pairwise disjoint windows.
// Overlapping and abutting windows are joined.
func Merge[A qty.Unit](intervals []qty.Interval[A]) []qty.Interval[A] {
	if len(intervals) == 0 {
		return nil
	}
	sorted := slices.Clone(intervals)
	sortByStart(sorted)

	out := []qty.Interval[A]{sorted[0]}
	for _, iv := range sorted[1:] {
		last := out[len(out)-1]
		if iv.Start().Value() > last.End().Value() {
			out = append(out, iv)
			continue
		}
		if last.End().Less(iv.End()) {
			joined, _ := qty.NewInterval(last.Start(), iv.End())
			out[len(out)-1] = joined
		}
	}
	return out
}

func sortByStart[A qty.Unit](intervals []qty.Interval[A]) {
	slices.SortStableFunc(intervals, func(x, y qty.Interval[A]) int {
		return cmp.Compare(x.Start().Value(), y.Start().Value())
	})
}
