// Package constraint holds boolean constraint expressions attached to tasks.
//
// Trees are inert: they are built by callers, stored with a task and handed
// back on request. Nothing in this module evaluates them.
package constraint

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by AddChild.
var (
	// ErrChildOnLeaf refuses operands on a leaf.
	ErrChildOnLeaf = errors.New("cannot add child to a leaf node")

	// ErrChildOnNot refuses a second operand on a NOT node.
	ErrChildOnNot = errors.New("cannot add child to a NOT node")
)

// Op is the kind of an expression node.
type Op int

// Node kinds.
const (
	OpLeaf Op = iota // a single constraint
	OpAnd            // every child holds
	OpOr             // some child holds
	OpNot            // the only child does not hold
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	default:
		return "LEAF"
	}
}

// Expr is a node of a constraint tree over leaf values of type L.
type Expr[L any] struct {
	op       Op
	leaf     L
	children []*Expr[L]
}

// Leaf wraps a single constraint.
func Leaf[L any](l L) *Expr[L] {
	return &Expr[L]{op: OpLeaf, leaf: l}
}

// And is satisfied when every child is.
func And[L any](children ...*Expr[L]) *Expr[L] {
	return &Expr[L]{op: OpAnd, children: compact(children)}
}

// Or is satisfied when any child is.
func Or[L any](children ...*Expr[L]) *Expr[L] {
	return &Expr[L]{op: OpOr, children: compact(children)}
}

// Not negates child.
func Not[L any](child *Expr[L]) *Expr[L] {
	return &Expr[L]{op: OpNot, children: compact([]*Expr[L]{child})}
}

func compact[L any](in []*Expr[L]) []*Expr[L] {
	out := make([]*Expr[L], 0, len(in))
	for _, c := range in {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Op reports the node kind.
func (e *Expr[L]) Op() Op { return e.op }

// Value returns the leaf constraint; ok is false for operator nodes.
func (e *Expr[L]) Value() (l L, ok bool) {
	if e.op != OpLeaf {
		return l, false
	}
	return e.leaf, true
}

// Children returns a copy of the node's operands.
func (e *Expr[L]) Children() []*Expr[L] {
	out := make([]*Expr[L], len(e.children))
	copy(out, e.children)
	return out
}

// AddChild appends an operand to an AND or OR node.
func (e *Expr[L]) AddChild(child *Expr[L]) error {
	switch e.op {
	case OpLeaf:
		return ErrChildOnLeaf
	case OpNot:
		return ErrChildOnNot
	}
	if child != nil {
		e.children = append(e.children, child)
	}
	return nil
}

// Walk visits the tree in pre-order. Returning false from fn skips the
// node's subtree.
func (e *Expr[L]) Walk(fn func(*Expr[L]) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// Leaves returns every leaf value, left to right.
func (e *Expr[L]) Leaves() []L {
	var out []L
	e.Walk(func(n *Expr[L]) bool {
		if n.op == OpLeaf {
			out = append(out, n.leaf)
		}
		return true
	})
	return out
}

// Len counts the nodes of the tree.
func (e *Expr[L]) Len() int {
	n := 0
	e.Walk(func(*Expr[L]) bool {
		n++
		return true
	})
	return n
}

// Depth is 1 for a lone leaf.
func (e *Expr[L]) Depth() int {
	if e == nil {
		return 0
	}
	deepest := 0
	for _, c := range e.children {
		if d := c.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func (e *Expr[L]) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.op == OpLeaf {
		return fmt.Sprint(e.leaf)
	}
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		parts[i] = c.String()
	}
	return e.op.String() + "(" + strings.Join(parts, ", ") + ")"
}
