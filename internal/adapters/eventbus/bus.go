package eventbus

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
)

// AllTopics subscribes to every published topic.
const AllTopics = "*"

// ErrStopped is returned by Subscribe once the bus has been stopped.
var ErrStopped = errors.New("eventbus is stopped")

// Subscriber is a channel that receives events for a specific topic.
// Use a buffered channel to avoid blocking the publisher.
type Subscriber chan domain.Event

// EventBus defines the interface for publishing and subscribing to events.
type EventBus interface {
	Publish(event domain.Event)
	Subscribe(topic string, bufferSize int) (Subscriber, error)
	Unsubscribe(topic string, sub Subscriber) error
	Stop()
}

// SimpleEventBus is a basic in-memory event bus implementation using channels.
type SimpleEventBus struct {
	subscribers   map[string]map[Subscriber]struct{}
	mu            sync.RWMutex
	stopChan      chan struct{}
	isStopped     bool
	defaultBuffer int
	dropped       atomic.Uint64
	log           zerolog.Logger
}

var _ EventBus = (*SimpleEventBus)(nil)

// NewSimpleEventBus creates a bus that logs through the global logger.
// defaultBuffer is used by Subscribe when no size is given.
func NewSimpleEventBus(defaultBuffer int) *SimpleEventBus {
	return NewSimpleEventBusWithLogger(defaultBuffer, log.Logger)
}

// NewSimpleEventBusWithLogger creates a bus with a custom logger.
func NewSimpleEventBusWithLogger(defaultBuffer int, l zerolog.Logger) *SimpleEventBus {
	if defaultBuffer <= 0 {
		defaultBuffer = 10
	}
	return &SimpleEventBus{
		subscribers:   make(map[string]map[Subscriber]struct{}),
		stopChan:      make(chan struct{}),
		defaultBuffer: defaultBuffer,
		log:           l.With().Str("component", "eventbus").Logger(),
	}
}

// Publish sends an event to the subscribers of its topic and to AllTopics
// subscribers. Sends never block: a full subscriber loses the event.
func (b *SimpleEventBus) Publish(event domain.Event) {
	logger := b.log.With().
		Str("topic", event.Topic).
		Str("event", event.ID).
		Logger()

	b.mu.RLock()
	if b.isStopped {
		b.mu.RUnlock()
		logger.Debug().Msg("bus stopped, ignoring publish")
		return
	}
	targets := make([]Subscriber, 0, len(b.subscribers[event.Topic])+len(b.subscribers[AllTopics]))
	for sub := range b.subscribers[event.Topic] {
		targets = append(targets, sub)
	}
	if event.Topic != AllTopics {
		for sub := range b.subscribers[AllTopics] {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		logger.Trace().Msg("no subscribers")
		return
	}

	logger.Trace().Int("subscribers", len(targets)).Msg("publishing")
	for _, sub := range targets {
		select {
		case sub <- event:
		case <-b.stopChan:
			logger.Debug().Msg("bus stopping during publish")
			return
		default:
			b.dropped.Add(1)
			logger.Warn().Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribe creates a new subscriber channel for a given topic, or for every
// topic with AllTopics. A bufferSize <= 0 selects the bus default.
func (b *SimpleEventBus) Subscribe(topic string, bufferSize int) (Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isStopped {
		return nil, ErrStopped
	}
	if bufferSize <= 0 {
		bufferSize = b.defaultBuffer
	}

	sub := make(Subscriber, bufferSize)
	if _, found := b.subscribers[topic]; !found {
		b.subscribers[topic] = make(map[Subscriber]struct{})
	}
	b.subscribers[topic][sub] = struct{}{}

	b.log.Debug().
		Str("topic", topic).
		Int("buffer", bufferSize).
		Msg("subscriber added")
	return sub, nil
}

// Unsubscribe removes a subscriber channel from a topic. Closing the channel
// stays the subscriber's job.
func (b *SimpleEventBus) Unsubscribe(topic string, sub Subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	subsMap, found := b.subscribers[topic]
	if !found {
		return fmt.Errorf("topic %s not found", topic)
	}
	if _, ok := subsMap[sub]; !ok {
		return fmt.Errorf("subscriber not found for topic %s", topic)
	}
	delete(subsMap, sub)
	if len(subsMap) == 0 {
		delete(b.subscribers, topic)
	}
	return nil
}

// Dropped reports how many deliveries were lost to full subscriber buffers.
func (b *SimpleEventBus) Dropped() uint64 { return b.dropped.Load() }

// Stop signals the event bus to stop publishing and forgets all subscribers.
func (b *SimpleEventBus) Stop() {
	b.mu.Lock()
	if b.isStopped {
		b.mu.Unlock()
		return
	}
	close(b.stopChan)
	b.isStopped = true
	b.subscribers = make(map[string]map[Subscriber]struct{})
	b.mu.Unlock()

	b.log.Debug().Uint64("dropped", b.Dropped()).Msg("eventbus stopped")
}
