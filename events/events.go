package events

import (
	"context"
	"sync"
	"time"

	"dicey/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRollPerformed   EventType = "roll_performed"
	EventTypeSavedRollStored EventType = "saved_roll_stored"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RollEvent represents a completed roll that was recorded as the user's previous roll
type RollEvent struct {
	ID         uuid.UUID       `json:"id"`
	UserID     string          `json:"user_id"`
	Kind       models.RollKind `json:"kind"`
	Input      string          `json:"input"`
	Expression string          `json:"expression"`
	Rolls      []int           `json:"rolls"`
	Total      int             `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e RollEvent) Type() EventType {
	return EventTypeRollPerformed
}

// SavedRollEvent represents a named roll stored for a user
type SavedRollEvent struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	Label      string    `json:"label"`
	Rollstring string    `json:"rollstring"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e SavedRollEvent) Type() EventType {
	return EventTypeSavedRollStored
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber never delays a reply
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events published inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush emits pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	// Events outlive the unit of work, so they do not inherit its context
	eventCtx := context.Background()
	if b.real != nil {
		for _, ev := range b.pending {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
