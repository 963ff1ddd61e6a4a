package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"dicey/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan RollEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeRollPerformed, func(ctx context.Context, event Event) {
		defer wg.Done()
		if rollEvent, ok := event.(RollEvent); ok {
			eventReceived <- rollEvent
		} else {
			t.Errorf("Expected RollEvent, got %T", event)
		}
	})

	testEvent := RollEvent{
		ID:         uuid.New(),
		UserID:     "123456",
		Kind:       models.RollKindRoll,
		Input:      "2d6+5",
		Expression: "2d6+5",
		Rolls:      []int{6, 6},
		Total:      17,
		OccurredAt: time.Now(),
	}

	transactionalBus.Publish(testEvent)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	wg.Wait()

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.ID, received.ID)
		assert.Equal(t, testEvent.UserID, received.UserID)
		assert.Equal(t, testEvent.Total, received.Total)
		assert.Equal(t, testEvent.Rolls, received.Rolls)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan RollEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeRollPerformed, func(ctx context.Context, event Event) {
		defer wg.Done()
		if rollEvent, ok := event.(RollEvent); ok {
			eventsReceived <- rollEvent
		}
	})

	for _, userID := range []string{"1", "2", "3"} {
		transactionalBus.Publish(RollEvent{UserID: userID, Kind: models.RollKindRoll})
	}

	assert.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(eventsReceived)

	userIDs := make(map[string]bool)
	for received := range eventsReceived {
		userIDs[received.UserID] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true, "3": true}, userIDs)
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeSavedRollStored, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(SavedRollEvent{UserID: "123456", Label: "attack", Rollstring: "1d20+3"})
	transactionalBus.Discard()
	assert.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestBusRecoversFromPanickingHandler ensures one failing subscriber does not stop others
func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()
	delivered := make(chan struct{}, 1)

	bus.Subscribe(EventTypeRollPerformed, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRollPerformed, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), RollEvent{UserID: "1"})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler was not called")
	}
}
