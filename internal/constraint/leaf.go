package constraint

import (
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// Constraint is a leaf condition over scheduling axis A. Windows reports the
// parts of span where the condition holds, as sorted non-overlapping
// intervals. Solvers call it; the scheduling block only stores it.
type Constraint[A qty.Unit] interface {
	Windows(span qty.Interval[A]) []qty.Interval[A]
	String() string
}

// Tree is the expression type tasks expose.
type Tree[A qty.Unit] = Expr[Constraint[A]]

// IntervalConstraint allows a task only inside a fixed window.
type IntervalConstraint[A qty.Unit] struct {
	window qty.Interval[A]
}

// NewIntervalConstraint allows exactly window.
func NewIntervalConstraint[A qty.Unit](window qty.Interval[A]) IntervalConstraint[A] {
	return IntervalConstraint[A]{window: window}
}

// Window returns the allowed range.
func (c IntervalConstraint[A]) Window() qty.Interval[A] { return c.window }

// Windows returns the part of span inside the window, if any.
func (c IntervalConstraint[A]) Windows(span qty.Interval[A]) []qty.Interval[A] {
	if iv, ok := c.window.Intersection(span); ok {
		return []qty.Interval[A]{iv}
	}
	return nil
}

func (c IntervalConstraint[A]) String() string {
	return "window" + c.window.String()
}

// Canonical reports whether intervals are sorted by start and pairwise
// non-overlapping, the shape Windows must return.
func Canonical[A qty.Unit](intervals []qty.Interval[A]) bool {
	for i := 1; i < len(intervals); i++ {
		prev, cur := intervals[i-1], intervals[i]
		if cur.Overlaps(prev) || cur.Start().Less(prev.End()) {
			return false
		}
	}
	return true
}
