package solution

import (
	"math"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// EarliestStart returns the start of the first window, clipped to horizon,
// that can hold t. ok is false when id has no windows in s or t fits none.
func EarliestStart[A qty.Unit, T domain.Task[A]](t T, id string, s *Space[A], horizon qty.Interval[A]) (qty.Quantity[A], bool) {
	intervals, ok := s.Intervals(id)
	if !ok {
		return qty.Zero[A](), false
	}
	size := t.SizeOnAxis()
	for _, iv := range intervals {
		if iv.End().Value() <= horizon.Start().Value() {
			continue
		}
		if iv.Start().Value() >= horizon.End().Value() {
			break
		}
		if part, ok := iv.Intersection(horizon); ok && !part.Duration().Less(size) {
			return part.Start(), true
		}
	}
	return qty.Zero[A](), false
}

// Deadline returns the latest start at which t still fits inside a window
// clipped to horizon, scanning windows from the end. ok is false when id has
// no windows in s or t fits none.
func Deadline[A qty.Unit, T domain.Task[A]](t T, id string, s *Space[A], horizon qty.Interval[A]) (qty.Quantity[A], bool) {
	intervals, ok := s.Intervals(id)
	if !ok {
		return qty.Zero[A](), false
	}
	size := t.SizeOnAxis()
	for i := len(intervals) - 1; i >= 0; i-- {
		iv := intervals[i]
		if iv.Start().Value() >= horizon.End().Value() {
			continue
		}
		if iv.End().Value() <= horizon.Start().Value() {
			break
		}
		if part, ok := iv.Intersection(horizon); ok && !part.Duration().Less(size) {
			return part.End().Sub(size), true
		}
	}
	return qty.Zero[A](), false
}

// Flexibility sums, over every window clipped to horizon that can hold t,
// how many times t fits in it. Below 1 the task cannot be placed at all.
// Windows are assumed disjoint. A zero-size task that fits anywhere is
// infinitely flexible.
func Flexibility[A qty.Unit, T domain.Task[A]](t T, id string, s *Space[A], horizon qty.Interval[A]) float64 {
	intervals, ok := s.Intervals(id)
	if !ok {
		return 0
	}
	size := t.SizeOnAxis().Value()
	var flex float64
	for _, iv := range intervals {
		if iv.End().Value() <= horizon.Start().Value() {
			continue
		}
		if iv.Start().Value() >= horizon.End().Value() {
			break
		}
		part, ok := iv.Intersection(horizon)
		if !ok {
			continue
		}
		available := part.Duration().Value()
		if size > available {
			continue
		}
		if size == 0 {
			return math.Inf(1)
		}
		flex += available / size
	}
	return flex
}

// Metrics bundles the window metrics of one task.
type Metrics[A qty.Unit] struct {
	EarliestStart qty.Quantity[A]
	Deadline      qty.Quantity[A]
	// Feasible is false when the task fits no window; the start and deadline
	// are then zero.
	Feasible    bool
	Flexibility float64
}

// Evaluate computes every metric of t, known in s as id.
func Evaluate[A qty.Unit, T domain.Task[A]](t T, id string, s *Space[A], horizon qty.Interval[A]) Metrics[A] {
	m := Metrics[A]{Flexibility: Flexibility(t, id, s, horizon)}
	est, okStart := EarliestStart(t, id, s, horizon)
	deadline, okEnd := Deadline(t, id, s, horizon)
	if okStart && okEnd {
		m.EarliestStart, m.Deadline, m.Feasible = est, deadline, true
	}
	return m
}
