package ports

import "github.com/ZanzyTHEbar/dagscale/internal/domain"

//go:generate go tool mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// EventPublisher defines the port through which block mutations are announced
// (an event bus, a log sink, a test double).
type EventPublisher interface {
	// Publish must not block for long; it is called after the block's write
	// lock has been released but still on the mutating goroutine.
	Publish(event domain.Event)
}
