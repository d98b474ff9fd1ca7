package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
)

func TestErrorCodes(t *testing.T) {
	b := newBlock()
	a := mustAdd(t, b, "a", task("a", 1))
	c := mustAdd(t, b, "c", task("c", 1))
	require.NoError(t, b.AddDependency(a, c, domain.Dependence))

	_, dupErr := b.AddTaskWithID(task("again", 1), "a")
	cycleErr := b.AddDependency(c, a, domain.Dependence)
	_, ok := b.RemoveTask("c")
	require.True(t, ok)
	_, staleErr := b.Task(c)
	_, emptyErr := newBlock().TopoOrder()

	cases := []struct {
		name     string
		err      error
		sentinel error
		code     errbuilder.ErrCode
	}{
		{"duplicate", dupErr, domain.ErrDuplicateID, errbuilder.CodeAlreadyExists},
		{"cycle", cycleErr, domain.ErrCycleDetected, errbuilder.CodeInvalidArgument},
		{"stale handle", staleErr, domain.ErrInvalidNodeIndex, errbuilder.CodeNotFound},
		{"empty graph", emptyErr, domain.ErrEmptyGraph, errbuilder.CodeFailedPrecondition},
		{"wrapped sentinel", fmt.Errorf("plan: %w", domain.ErrGraphContainsCycle), domain.ErrGraphContainsCycle, errbuilder.CodeFailedPrecondition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.err)
			assert.ErrorIs(t, tc.err, tc.sentinel)
			assert.Equal(t, tc.code, domain.Code(tc.err))
		})
	}

	// Typed errors expose the code to errbuilder directly and keep their
	// own message.
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(dupErr))
	assert.Equal(t, `duplicate task id: "a"`, dupErr.Error())

	assert.Equal(t, errbuilder.CodeUnknown, domain.Code(errors.New("disk on fire")))
	assert.Equal(t, errbuilder.ErrCode(0), domain.Code(nil))
}

type stuckIDs struct{ id string }

func (g stuckIDs) NextID() string { return g.id }

func TestStuckGeneratorPanics(t *testing.T) {
	b := newBlock(domain.WithIDGenerator(stuckIDs{id: "only"}))
	assert.Equal(t, "only", b.AddTask(task("first", 1)))
	assert.PanicsWithValue(t, "domain: IDGenerator yielded no free identity in 1024 attempts", func() {
		b.AddTask(task("second", 1))
	})
	assert.Equal(t, 1, b.Len())

	empty := newBlock(domain.WithIDGenerator(stuckIDs{}))
	assert.Panics(t, func() { empty.AddTask(task("anon", 1)) })
	assert.Zero(t, empty.Len())
}
