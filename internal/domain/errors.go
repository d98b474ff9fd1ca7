package domain

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Failure outcomes of Block operations. Compare with errors.Is; the typed
// errors below unwrap to these.
var (
	// ErrCycleDetected refuses an edge that would close a cycle.
	ErrCycleDetected = errors.New("dependency would create a cycle")

	// ErrInvalidNodeIndex means a handle is stale, zero or from another block.
	ErrInvalidNodeIndex = errors.New("invalid node handle")

	// ErrGraphContainsCycle is returned by ordering queries on a cyclic graph.
	ErrGraphContainsCycle = errors.New("graph contains a cycle")

	// ErrEmptyGraph is returned by ordering queries on a block with no tasks.
	ErrEmptyGraph = errors.New("graph is empty")

	// ErrDuplicateID refuses a caller-supplied identity that is already live.
	ErrDuplicateID = errors.New("duplicate task id")
)

var sentinelCodes = []struct {
	err  error
	code errbuilder.ErrCode
}{
	{ErrCycleDetected, errbuilder.CodeInvalidArgument},
	{ErrInvalidNodeIndex, errbuilder.CodeNotFound},
	{ErrGraphContainsCycle, errbuilder.CodeFailedPrecondition},
	{ErrEmptyGraph, errbuilder.CodeFailedPrecondition},
	{ErrDuplicateID, errbuilder.CodeAlreadyExists},
}

// Code classifies err. Typed errors carry their code in the chain; bare
// sentinels are looked up; anything else is errbuilder.CodeUnknown.
func Code(err error) errbuilder.ErrCode {
	if err == nil {
		return 0
	}
	if c := errbuilder.CodeOf(err); c != errbuilder.CodeUnknown {
		return c
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return errbuilder.CodeUnknown
}

// coded links a typed error to its sentinel through a coded errbuilder
// error, so both errors.Is and errbuilder.CodeOf see through it.
func coded(code errbuilder.ErrCode, sentinel error, msg string) error {
	return errbuilder.New().
		WithCode(code).
		WithLabel(code.String()).
		WithMsg(msg).
		WithCause(sentinel)
}

// InvalidNodeIndexError carries the rejected handle.
type InvalidNodeIndexError struct {
	Handle NodeHandle
}

func (e *InvalidNodeIndexError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidNodeIndex, e.Handle)
}

func (e *InvalidNodeIndexError) Unwrap() error {
	return coded(errbuilder.CodeNotFound, ErrInvalidNodeIndex, e.Error())
}

// DuplicateIDError carries the identity that was already in use.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateID, e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return coded(errbuilder.CodeAlreadyExists, ErrDuplicateID, e.Error())
}

// CycleError names the refused edge.
type CycleError struct {
	From, To NodeHandle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrCycleDetected, e.From, e.To)
}

func (e *CycleError) Unwrap() error {
	return coded(errbuilder.CodeInvalidArgument, ErrCycleDetected, e.Error())
}
