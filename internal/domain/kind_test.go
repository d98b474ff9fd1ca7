package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/dagscale/internal/constraint"
	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

func TestParseDependencyKind(t *testing.T) {
	cases := map[string]domain.DependencyKind{
		"":            domain.Dependence,
		"dependence":  domain.Dependence,
		"Consecutive": domain.Consecutive,
		" EXCLUSIVE ": domain.Exclusive,
	}
	for in, want := range cases {
		got, err := domain.ParseDependencyKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseDependencyKind("overlap")
	assert.ErrorContains(t, err, "overlap")
}

func TestDependencyKindText(t *testing.T) {
	text, err := domain.Exclusive.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "exclusive", string(text))

	var k domain.DependencyKind
	require.NoError(t, k.UnmarshalText([]byte("consecutive")))
	assert.Equal(t, domain.Consecutive, k)

	_, err = domain.DependencyKind(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "DependencyKind(9)", domain.DependencyKind(9).String())
}

// observation overrides Priority and carries a constraint tree; it sits in
// the same block as plain TaskBase payloads through the Task interface.
type observation struct {
	domain.TaskBase[qty.Second]
	urgent   bool
	pointing [2]float64
}

func (o observation) Position() [2]float64 { return o.pointing }

func (o observation) Priority() int {
	if o.urgent {
		return 10
	}
	return o.TaskBase.Priority()
}

func TestInterfacePayloads(t *testing.T) {
	b := domain.NewBlock[qty.Second, domain.Task[qty.Second], string]()

	window := constraint.Leaf[constraint.Constraint[qty.Second]](
		constraint.NewIntervalConstraint(qty.MustInterval[qty.Second](0, 3600)))
	obs := observation{
		TaskBase: domain.MustTaskBase[qty.Second]("obs", qty.New[qty.Minute](2)).WithConstraints(window),
		urgent:   true,
		pointing: [2]float64{83.8, -5.4},
	}
	calib := domain.MustTaskBase[qty.Second]("calib", qty.New[qty.Second](30)).WithPriority(1)

	oid := b.AddTask(obs)
	cid := b.AddTask(calib)
	require.NoError(t, b.AddDependency(mustHandle(t, b, cid), mustHandle(t, b, oid), "after calibration"))

	got, ok := b.TaskByID(oid)
	require.True(t, ok)
	assert.Equal(t, 10, got.Priority())
	assert.Equal(t, 120.0, got.SizeOnAxis().Value())
	assert.Equal(t, "2 min", got.Size().String())
	require.NotNil(t, got.Constraints())
	assert.Equal(t, 1, got.Constraints().Len())

	cp, err := b.CriticalPath()
	require.NoError(t, err)
	assert.InDelta(t, 150.0, cp.Total.Value(), 1e-9)

	positions := map[string][2]float64{}
	for id, task := range b.Tasks() {
		if sp, ok := task.(domain.SpatialTask[[2]float64]); ok {
			positions[id] = sp.Position()
		}
	}
	assert.Equal(t, map[string][2]float64{oid: {83.8, -5.4}}, positions)
}

func mustHandle[T domain.Task[qty.Second], D any](t *testing.T, b *domain.Block[qty.Second, T, D], id string) domain.NodeHandle {
	t.Helper()
	h, ok := b.NodeOf(id)
	require.True(t, ok)
	return h
}

func TestNewTaskBaseRejectsOtherDimensions(t *testing.T) {
	_, err := domain.NewTaskBase[qty.Second]("route", qty.Measure{Value: 3, Unit: qty.Kilometer{}})
	assert.ErrorIs(t, err, qty.ErrIncompatibleDimension)
	assert.ErrorContains(t, err, "route")

	assert.Panics(t, func() {
		domain.MustTaskBase[qty.Second]("turn", qty.New[qty.Degree](90))
	})
}
