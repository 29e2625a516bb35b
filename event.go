package timerfuture

import (
	"fmt"
)

// EventKind is the tag of an Event.
type EventKind uint8

const (
	// EventTimeout requests a wake of Event.ID after Event.Duration units.
	EventTimeout EventKind = iota
	// EventClose stops the dispatcher.
	EventClose
)

// Event is a message to the reactor's dispatcher goroutine. Events are
// consumed in send order, by a single consumer.
type Event struct {
	Kind     EventKind
	Duration uint64
	ID       int
}

// String returns a human-readable representation of the event.
func (e Event) String() string {
	switch e.Kind {
	case EventTimeout:
		return fmt.Sprintf("Timeout(%d, %d)", e.Duration, e.ID)
	case EventClose:
		return "Close"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(e.Kind))
	}
}
