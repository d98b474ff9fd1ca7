// Package shared wraps a scheduling block for use from several goroutines.
//
// Queries take a read lock and may run in parallel; mutations take the write
// lock. Successful mutations, and refused dependencies, are announced through
// a ports.EventPublisher once the lock is released.
package shared

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/ports"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// Entry is one (identity, payload) pair of a snapshot.
type Entry[T any] struct {
	ID   string
	Task T
}

// Block is a domain.Block guarded by a sync.RWMutex.
type Block[A qty.Unit, T domain.Task[A], D any] struct {
	mu    sync.RWMutex
	inner *domain.Block[A, T, D]
	pub   ports.EventPublisher
	log   zerolog.Logger
}

// Option configures a Block.
type Option func(*options)

type options struct {
	pub ports.EventPublisher
	log zerolog.Logger
}

// WithPublisher announces mutations on pub.
func WithPublisher(pub ports.EventPublisher) Option {
	return func(o *options) { o.pub = pub }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New takes ownership of inner; callers must stop using it directly.
func New[A qty.Unit, T domain.Task[A], D any](inner *domain.Block[A, T, D], opts ...Option) *Block[A, T, D] {
	o := options{log: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	return &Block[A, T, D]{
		inner: inner,
		pub:   o.pub,
		log:   o.log.With().Str("component", "block").Logger(),
	}
}

func (b *Block[A, T, D]) publish(topic string, data any) {
	if b.pub == nil {
		return
	}
	b.pub.Publish(domain.NewEvent(topic, data))
}

// AddTask stores t under a generated identity.
func (b *Block[A, T, D]) AddTask(t T) string {
	b.mu.Lock()
	id := b.inner.AddTask(t)
	b.mu.Unlock()

	b.log.Trace().Str("id", id).Str("name", t.Name()).Msg("task added")
	b.publish(domain.TopicTaskAdded, domain.TaskEvent{ID: id, Name: t.Name()})
	return id
}

// AddTaskWithID stores t under id, generating one when id is empty.
func (b *Block[A, T, D]) AddTaskWithID(t T, id string) (string, error) {
	b.mu.Lock()
	got, err := b.inner.AddTaskWithID(t, id)
	b.mu.Unlock()

	if err != nil {
		b.log.Debug().
			Err(err).
			Stringer("code", domain.Code(err)).
			Str("id", id).
			Msg("task refused")
		return "", err
	}
	b.log.Trace().Str("id", got).Str("name", t.Name()).Msg("task added")
	b.publish(domain.TopicTaskAdded, domain.TaskEvent{ID: got, Name: t.Name()})
	return got, nil
}

// RemoveTask deletes the task with identity id and its edges.
func (b *Block[A, T, D]) RemoveTask(id string) (T, bool) {
	b.mu.Lock()
	t, ok := b.inner.RemoveTask(id)
	b.mu.Unlock()

	if ok {
		b.log.Trace().Str("id", id).Msg("task removed")
		b.publish(domain.TopicTaskRemoved, domain.TaskEvent{ID: id, Name: t.Name()})
	}
	return t, ok
}

// AddDependency records that the task fromID must finish before toID starts.
// Identities are resolved under the same lock as the insertion, so the pair
// cannot be removed in between.
func (b *Block[A, T, D]) AddDependency(fromID, toID string, label D) error {
	b.mu.Lock()
	err := b.addDependency(fromID, toID, label)
	b.mu.Unlock()

	if err != nil {
		b.log.Debug().
			Err(err).
			Stringer("code", domain.Code(err)).
			Str("from", fromID).
			Str("to", toID).
			Msg("dependency refused")
		b.publish(domain.TopicDependencyRejected, domain.DependencyEvent{From: fromID, To: toID, Err: err})
		return err
	}
	b.log.Trace().Str("from", fromID).Str("to", toID).Msg("dependency added")
	b.publish(domain.TopicDependencyAdded, domain.DependencyEvent{From: fromID, To: toID})
	return nil
}

func (b *Block[A, T, D]) addDependency(fromID, toID string, label D) error {
	from, ok := b.inner.NodeOf(fromID)
	if !ok {
		return &UnknownIDError{ID: fromID}
	}
	to, ok := b.inner.NodeOf(toID)
	if !ok {
		return &UnknownIDError{ID: toID}
	}
	return b.inner.AddDependency(from, to, label)
}

// TaskByID returns the payload stored under id.
func (b *Block[A, T, D]) TaskByID(id string) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inner.TaskByID(id)
}

// Len returns the number of live tasks.
func (b *Block[A, T, D]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inner.Len()
}

// Tasks returns a snapshot of every task.
func (b *Block[A, T, D]) Tasks() []Entry[T] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry[T], 0, b.inner.Len())
	for id, t := range b.inner.Tasks() {
		out = append(out, Entry[T]{ID: id, Task: t})
	}
	return out
}

// TopoOrder returns identities in topological order.
func (b *Block[A, T, D]) TopoOrder() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	order, err := b.inner.TopoOrder()
	if err != nil {
		return nil, err
	}
	return b.idsLocked(order), nil
}

// CriticalPath returns the critical path total and its identities.
func (b *Block[A, T, D]) CriticalPath() (qty.Quantity[A], []string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cp, err := b.inner.CriticalPath()
	if err != nil {
		return qty.Quantity[A]{}, nil, err
	}
	return cp.Total, b.idsLocked(cp.Path), nil
}

// Analyze runs the critical path method under the read lock.
func (b *Block[A, T, D]) Analyze() (domain.Analysis[A], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inner.Analyze()
}

// Roots returns the identities of tasks without prerequisites.
func (b *Block[A, T, D]) Roots() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.idsLocked(b.inner.Roots())
}

// Leaves returns the identities of tasks without dependents.
func (b *Block[A, T, D]) Leaves() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.idsLocked(b.inner.Leaves())
}

// View runs fn with read access to the core block. fn must not retain it.
func (b *Block[A, T, D]) View(fn func(*domain.Block[A, T, D]) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fn(b.inner)
}

// Update runs fn with write access to the core block. No events are
// published for changes made inside fn.
func (b *Block[A, T, D]) Update(fn func(*domain.Block[A, T, D]) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.inner)
}

func (b *Block[A, T, D]) idsLocked(hs []domain.NodeHandle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i], _ = b.inner.IDOf(h)
	}
	return out
}
