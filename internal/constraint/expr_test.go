package constraint

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

func TestExpr_Structure(t *testing.T) {
	tree := And(
		Leaf("a"),
		Or(Leaf("b"), Leaf("c")),
		Not(Leaf("d")),
	)

	assert.Equal(t, OpAnd, tree.Op())
	assert.Len(t, tree.Children(), 3)
	assert.Equal(t, 7, tree.Len())
	assert.Equal(t, 3, tree.Depth())
	assert.Equal(t, "AND(a, OR(b, c), NOT(d))", tree.String())

	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, tree.Leaves()); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}

	_, ok := tree.Value()
	assert.False(t, ok)

	v, ok := tree.Children()[0].Value()
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestExpr_AddChild(t *testing.T) {
	or := Or[string]()
	require.NoError(t, or.AddChild(Leaf("x")))
	require.NoError(t, or.AddChild(nil))
	assert.Len(t, or.Children(), 1)

	assert.ErrorIs(t, Leaf("x").AddChild(Leaf("y")), ErrChildOnLeaf)
	assert.ErrorIs(t, Not(Leaf("x")).AddChild(Leaf("y")), ErrChildOnNot)
}

func TestExpr_ChildrenIsACopy(t *testing.T) {
	and := And(Leaf(1), Leaf(2))
	kids := and.Children()
	kids[0] = Leaf(99)
	assert.Equal(t, []int{1, 2}, and.Leaves())
}

func TestExpr_WalkSkipsSubtree(t *testing.T) {
	tree := Or(Not(Leaf("hidden")), Leaf("seen"))
	var visited []string
	tree.Walk(func(e *Expr[string]) bool {
		if e.Op() == OpNot {
			return false
		}
		if v, ok := e.Value(); ok {
			visited = append(visited, v)
		}
		return true
	})
	assert.Equal(t, []string{"seen"}, visited)
}

func TestExpr_Nil(t *testing.T) {
	var e *Expr[string]
	assert.Equal(t, 0, e.Depth())
	assert.Equal(t, 0, e.Len())
	assert.Nil(t, e.Leaves())
	assert.Equal(t, "<nil>", e.String())
}

func TestIntervalConstraint(t *testing.T) {
	c := NewIntervalConstraint(qty.MustInterval[qty.Second](10, 30))
	got := c.Windows(qty.MustInterval[qty.Second](0, 20))
	require.Len(t, got, 1)
	assert.Equal(t, qty.MustInterval[qty.Second](10, 20), got[0])

	assert.Empty(t, c.Windows(qty.MustInterval[qty.Second](30, 40)))
	assert.Equal(t, "window[10.000, 30.000]", c.String())

	var tree *Tree[qty.Second] = Or(
		Leaf[Constraint[qty.Second]](c),
		Leaf[Constraint[qty.Second]](NewIntervalConstraint(qty.MustInterval[qty.Second](50, 60))),
	)
	assert.Len(t, tree.Leaves(), 2)
}

func TestCanonical(t *testing.T) {
	iv := qty.MustInterval[qty.Second]
	assert.True(t, Canonical[qty.Second](nil))
	assert.True(t, Canonical([]qty.Interval[qty.Second]{iv(0, 50)}))
	assert.True(t, Canonical([]qty.Interval[qty.Second]{iv(0, 10), iv(20, 30), iv(40, 50)}))
	assert.True(t, Canonical([]qty.Interval[qty.Second]{iv(0, 10), iv(10, 20)}))
	assert.False(t, Canonical([]qty.Interval[qty.Second]{iv(0, 30), iv(20, 50)}))
	assert.False(t, Canonical([]qty.Interval[qty.Second]{iv(20, 30), iv(0, 10)}))
}
