package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dicey/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards committed events to NATS
type NATSEventPublisher struct {
	client  MessagePublisher
	timeout time.Duration
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(client MessagePublisher) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:  client,
		timeout: 5 * time.Second,
	}
}

// SubscribeToBus forwards every roll and saved-roll event from bus to NATS
func (p *NATSEventPublisher) SubscribeToBus(bus *events.Bus) {
	handler := func(ctx context.Context, event events.Event) {
		if err := p.Publish(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event to NATS")
		}
	}
	bus.Subscribe(events.EventTypeRollPerformed, handler)
	bus.Subscribe(events.EventTypeSavedRollStored, handler)
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	subject := MapEventToSubject(event)
	if err := p.client.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

// NewEnvelope wraps event, reusing the event's own ID when it has one
func NewEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	id := uuid.New()
	timestamp := time.Now().UTC()
	switch ev := event.(type) {
	case events.RollEvent:
		if ev.ID != uuid.Nil {
			id = ev.ID
		}
		if !ev.OccurredAt.IsZero() {
			timestamp = ev.OccurredAt
		}
	case events.SavedRollEvent:
		if ev.ID != uuid.Nil {
			id = ev.ID
		}
		if !ev.OccurredAt.IsZero() {
			timestamp = ev.OccurredAt
		}
	}

	return &EventEnvelope{
		EventID:       id.String(),
		EventType:     string(event.Type()),
		Timestamp:     timestamp,
		SourceService: "dicey",
		Payload:       payload,
	}, nil
}
