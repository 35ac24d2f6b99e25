package service

import "github.com/google/uuid"

// EventType defines the type of event
type EventType string

const (
	EventDeclarationRegistered EventType = "declaration_registered"
	EventDeclarationFlagged    EventType = "declaration_flagged"
	EventEquivalenceComposed   EventType = "equivalence_composed"
	EventTheoryReloaded        EventType = "theory_reloaded"
)

// Event represents an event that occurred in the system
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish assigns the event an ID and sends it to all subscribers
func (eb *EventBus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
