package eventbus_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/dagscale/internal/adapters/eventbus"
	"github.com/ZanzyTHEbar/dagscale/internal/domain"
)

func newBus(buffer int) *eventbus.SimpleEventBus {
	return eventbus.NewSimpleEventBusWithLogger(buffer, zerolog.Nop())
}

func TestPublishReachesTopicAndWildcardSubscribers(t *testing.T) {
	bus := newBus(4)
	defer bus.Stop()

	added, err := bus.Subscribe(domain.TopicTaskAdded, 0)
	require.NoError(t, err)
	all, err := bus.Subscribe(eventbus.AllTopics, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, cap(added))

	ev := domain.NewEvent(domain.TopicTaskAdded, domain.TaskEvent{ID: "a", Name: "A"})
	bus.Publish(ev)
	bus.Publish(domain.NewEvent(domain.TopicTaskRemoved, domain.TaskEvent{ID: "a"}))

	require.Len(t, added, 1)
	got := <-added
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, domain.TaskEvent{ID: "a", Name: "A"}, got.Data)

	require.Len(t, all, 2)
	assert.Equal(t, domain.TopicTaskAdded, (<-all).Topic)
	assert.Equal(t, domain.TopicTaskRemoved, (<-all).Topic)
}

func TestFullSubscriberDropsEvents(t *testing.T) {
	bus := newBus(1)
	defer bus.Stop()

	sub, err := bus.Subscribe(domain.TopicDependencyAdded, 1)
	require.NoError(t, err)

	for range 3 {
		bus.Publish(domain.NewEvent(domain.TopicDependencyAdded, nil))
	}
	assert.Len(t, sub, 1)
	assert.Equal(t, uint64(2), bus.Dropped())
}

func TestUnsubscribe(t *testing.T) {
	bus := newBus(2)
	defer bus.Stop()

	sub, err := bus.Subscribe("t", 0)
	require.NoError(t, err)
	require.NoError(t, bus.Unsubscribe("t", sub))

	bus.Publish(domain.NewEvent("t", nil))
	assert.Empty(t, sub)

	assert.ErrorContains(t, bus.Unsubscribe("t", sub), "topic t not found")
	other, err := bus.Subscribe("t", 0)
	require.NoError(t, err)
	assert.ErrorContains(t, bus.Unsubscribe("t", sub), "subscriber not found")
	require.NoError(t, bus.Unsubscribe("t", other))
}

func TestStoppedBus(t *testing.T) {
	bus := newBus(2)
	sub, err := bus.Subscribe("t", 0)
	require.NoError(t, err)

	bus.Stop()
	bus.Stop()

	bus.Publish(domain.NewEvent("t", nil))
	assert.Empty(t, sub)

	_, err = bus.Subscribe("t", 0)
	assert.ErrorIs(t, err, eventbus.ErrStopped)
}
