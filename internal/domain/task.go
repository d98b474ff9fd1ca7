package domain

import (
	"fmt"

	"github.com/ZanzyTHEbar/dagscale/internal/constraint"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// Task is the contract a payload satisfies to be scheduled on axis unit A.
//
// Payloads are shared with concurrent readers once added to a Block and must
// not be mutated behind its back.
type Task[A qty.Unit] interface {
	// Name is a display label; uniqueness is the identity's job.
	Name() string
	// Size is the duration in the unit natural to the task.
	Size() qty.Measure
	// SizeOnAxis is the duration on the scheduling axis.
	SizeOnAxis() qty.Quantity[A]
	// Priority is advisory; the block never reorders on it.
	Priority() int
	// Constraints is the optional constraint tree, nil when unconstrained.
	Constraints() *constraint.Tree[A]
	// GapAfter is idle time required between this task and any dependent.
	GapAfter() qty.Quantity[A]
}

// TaskBase implements Task with the default behaviour: axis size converted
// from Size, neutral priority, no constraints, no gap. Embed it in payload
// types and override what differs.
type TaskBase[A qty.Unit] struct {
	name        string
	size        qty.Measure
	axisSize    qty.Quantity[A]
	priority    int
	gap         qty.Quantity[A]
	constraints *constraint.Tree[A]
}

// NewTaskBase checks that size converts onto A.
func NewTaskBase[A qty.Unit](name string, size qty.Measure) (TaskBase[A], error) {
	axis, err := qty.ToAxis[A](size)
	if err != nil {
		return TaskBase[A]{}, fmt.Errorf("task %q: %w", name, err)
	}
	return TaskBase[A]{name: name, size: size, axisSize: axis}, nil
}

// MustTaskBase is NewTaskBase for sizes already typed in a compatible unit.
func MustTaskBase[A, U qty.Unit](name string, size qty.Quantity[U]) TaskBase[A] {
	t, err := NewTaskBase[A](name, size.Measure())
	if err != nil {
		panic(err)
	}
	return t
}

// WithPriority returns a copy with priority p; higher values are more urgent.
func (t TaskBase[A]) WithPriority(p int) TaskBase[A] {
	t.priority = p
	return t
}

// WithGap returns a copy that requires gap of idle time before dependents.
func (t TaskBase[A]) WithGap(gap qty.Quantity[A]) TaskBase[A] {
	t.gap = gap
	return t
}

// WithConstraints returns a copy carrying c; nil means unconstrained.
func (t TaskBase[A]) WithConstraints(c *constraint.Tree[A]) TaskBase[A] {
	t.constraints = c
	return t
}

func (t TaskBase[A]) Name() string                     { return t.name }
func (t TaskBase[A]) Size() qty.Measure                { return t.size }
func (t TaskBase[A]) SizeOnAxis() qty.Quantity[A]      { return t.axisSize }
func (t TaskBase[A]) Priority() int                    { return t.priority }
func (t TaskBase[A]) Constraints() *constraint.Tree[A] { return t.constraints }
func (t TaskBase[A]) GapAfter() qty.Quantity[A]        { return t.gap }

var _ Task[qty.Second] = TaskBase[qty.Second]{}

// SpatialTask is an optional capability for payloads that have a position in
// a coordinate system C chosen by the domain. The block never asks for it;
// callers that reason about positions add it as an extra constraint.
type SpatialTask[C any] interface {
	Position() C
}
