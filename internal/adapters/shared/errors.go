package shared

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrUnknownID is returned when a dependency names an identity that is not
// in the block.
var ErrUnknownID = errors.New("unknown task id")

// UnknownIDError carries the missing identity.
type UnknownIDError struct {
	ID string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownID, e.ID)
}

func (e *UnknownIDError) Unwrap() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithLabel(errbuilder.CodeNotFound.String()).
		WithMsg(e.Error()).
		WithCause(ErrUnknownID)
}
