package events

import (
	"context"
	"sync"

	"wagering/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeWagerPlaced    EventType = "wager_placed"
	EventTypeWagerSettled   EventType = "wager_settled"
	EventTypeLevelUp        EventType = "level_up"
	EventTypeSessionOpened  EventType = "session_opened"
	EventTypeSessionClosed  EventType = "session_closed"
)

// AllEventTypes lists every event the engine emits
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeAccountCreated,
	EventTypeWagerPlaced,
	EventTypeWagerSettled,
	EventTypeLevelUp,
	EventTypeSessionOpened,
	EventTypeSessionClosed,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                  `json:"user_id"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                  `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a first contact with a user
type AccountCreatedEvent struct {
	UserID         int64 `json:"user_id"`
	InitialBalance int64 `json:"initial_balance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// WagerPlacedEvent represents a stake that was debited
type WagerPlacedEvent struct {
	WagerID uuid.UUID      `json:"wager_id"`
	UserID  int64          `json:"user_id"`
	Variant models.Variant `json:"variant"`
	Amount  int64          `json:"amount"`
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// WagerSettledEvent represents a wager reaching a terminal status
type WagerSettledEvent struct {
	WagerID uuid.UUID          `json:"wager_id"`
	UserID  int64              `json:"user_id"`
	Variant models.Variant     `json:"variant"`
	Amount  int64              `json:"amount"`
	Win     int64              `json:"win"`
	Premium bool               `json:"premium"`
	Status  models.WagerStatus `json:"status"`
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// LevelUpEvent represents a progression tier change
type LevelUpEvent struct {
	UserID   int64         `json:"user_id"`
	OldLevel int64         `json:"old_level"`
	NewLevel int64         `json:"new_level"`
	Status   models.Status `json:"status"`
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// SessionOpenedEvent represents a multi-step game waiting for player actions
type SessionOpenedEvent struct {
	WagerID uuid.UUID      `json:"wager_id"`
	UserID  int64          `json:"user_id"`
	Variant models.Variant `json:"variant"`
}

func (e SessionOpenedEvent) Type() EventType {
	return EventTypeSessionOpened
}

// SessionClosedEvent represents a multi-step game leaving the registry
type SessionClosedEvent struct {
	WagerID   uuid.UUID      `json:"wager_id"`
	UserID    int64          `json:"user_id"`
	Variant   models.Variant `json:"variant"`
	Abandoned bool           `json:"abandoned"`
}

func (e SessionClosedEvent) Type() EventType {
	return EventTypeSessionClosed
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
	}).Debug("Subscribed handler to event type on main event bus")
}

// SubscribeAll adds a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
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
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow subscriber never holds up a wager
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

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	mu      sync.Mutex
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	log.WithFields(log.Fields{
		"pendingEventCount": len(pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Detached from the transaction context, which may already be cancelled
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range pending {
		b.real.Emit(eventCtx, ev)
	}
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}

// Pending returns a copy of the queued events
func (b *TransactionalBus) Pending() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.pending...)
}
