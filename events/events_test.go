package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"wagering/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypePayout,
		ChangeAmount:    500,
	}

	transactionalBus.Publish(testEvent)
	assert.Len(t, transactionalBus.Pending(), 1)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, transactionalBus.Pending())

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent, receivedEvent)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan BalanceChangeEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventsReceived <- balanceEvent
		}
	})

	for i := int64(1); i <= 3; i++ {
		transactionalBus.Publish(BalanceChangeEvent{
			UserID:          i,
			OldBalance:      1000 * i,
			NewBalance:      1100 * i,
			TransactionType: models.TransactionTypePayout,
			ChangeAmount:    100 * i,
		})
	}

	assert.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(eventsReceived)

	// Order may vary since handlers run on their own goroutines
	userIDs := make(map[int64]bool)
	for received := range eventsReceived {
		userIDs[received.UserID] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, userIDs)
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeWagerSettled, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(WagerSettledEvent{
		WagerID: uuid.New(),
		UserID:  123456,
		Variant: models.VariantSlots,
		Amount:  1000,
		Win:     5000,
		Status:  models.WagerStatusWon,
	})
	transactionalBus.Discard()

	assert.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_SubscribeAllReceivesEveryType(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := make(map[EventType]int)
	var wg sync.WaitGroup
	wg.Add(3)

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()]++
		mu.Unlock()
	})

	ctx := context.Background()
	bus.Emit(ctx, LevelUpEvent{UserID: 1, OldLevel: 1, NewLevel: 2, Status: models.StatusNovice})
	bus.Emit(ctx, SessionOpenedEvent{UserID: 1, Variant: models.VariantCrash})
	bus.Emit(ctx, AccountCreatedEvent{UserID: 1, InitialBalance: 1000000})
	wg.Wait()

	assert.Equal(t, 1, seen[EventTypeLevelUp])
	assert.Equal(t, 1, seen[EventTypeSessionOpened])
	assert.Equal(t, 1, seen[EventTypeAccountCreated])
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(EventTypeLevelUp, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeLevelUp, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), LevelUpEvent{UserID: 7})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler did not run")
	}
}
