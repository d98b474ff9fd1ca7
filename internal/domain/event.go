package domain

import (
	"time"

	"github.com/google/uuid"
)

// Topics published for block mutations.
const (
	TopicTaskAdded          = "block.task.added"
	TopicTaskRemoved        = "block.task.removed"
	TopicDependencyAdded    = "block.dependency.added"
	TopicDependencyRejected = "block.dependency.rejected"
)

// Event represents a message passed through the event bus.
type Event struct {
	ID        string
	Topic     string
	Data      any
	Timestamp time.Time
}

// NewEvent creates a new event.
func NewEvent(topic string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// TaskEvent is the payload of TopicTaskAdded and TopicTaskRemoved.
type TaskEvent struct {
	ID   string
	Name string
}

// DependencyEvent is the payload of the dependency topics. Err is set only
// on TopicDependencyRejected.
type DependencyEvent struct {
	From string
	To   string
	Err  error
}
