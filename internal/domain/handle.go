package domain

import (
	"fmt"
	"sync/atomic"
)

// blockSerial numbers blocks so handles from one block are refused by another.
var blockSerial atomic.Uint64

// NodeHandle is a stable reference to a node of one Block. Removing other
// nodes never invalidates it; removing its own node does, and every later use
// fails with ErrInvalidNodeIndex. The zero value is never valid.
type NodeHandle struct {
	block uint64
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h NodeHandle) IsZero() bool { return h == NodeHandle{} }

func (h NodeHandle) String() string {
	if h.IsZero() {
		return "node(nil)"
	}
	return fmt.Sprintf("node(%d.%d)", h.index, h.gen)
}
