package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator produces candidate identities for tasks added without one.
// Empty candidates and candidates that collide with a live identity are
// skipped by the block, so a generator only has to avoid repeating itself.
// A generator that yields nothing usable for 1024 calls in a row makes
// AddTask panic.
type IDGenerator interface {
	NextID() string
}

type sequentialIDs struct {
	prefix string
	next   uint64
}

// SequentialIDs yields prefix-1, prefix-2, ... in order.
func SequentialIDs(prefix string) IDGenerator {
	return &sequentialIDs{prefix: prefix}
}

func (g *sequentialIDs) NextID() string {
	g.next++
	return g.prefix + "-" + strconv.FormatUint(g.next, 10)
}

type uuidIDs struct{}

// UUIDIDs yields random version 4 UUIDs.
func UUIDIDs() IDGenerator { return uuidIDs{} }

func (uuidIDs) NextID() string { return uuid.NewString() }

// IDGeneratorFor maps a configured strategy name to a generator. Unknown
// names fall back to sequential identities.
func IDGeneratorFor(strategy, prefix string) IDGenerator {
	if strategy == "uuid" {
		return UUIDIDs()
	}
	return SequentialIDs(prefix)
}
