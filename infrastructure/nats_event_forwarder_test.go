package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"wagering/events"
	"wagering/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMessage struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []recordedMessage
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, recordedMessage{subject: subject, data: data})
	return nil
}

func (p *fakePublisher) snapshot() []recordedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedMessage(nil), p.messages...)
}

func TestNATSEventForwarder_PublishesEnvelope(t *testing.T) {
	publisher := &fakePublisher{}
	forwarder := NewNATSEventForwarder(publisher, "wagering")

	wagerID := uuid.New()
	forwarder.Handle(context.Background(), events.WagerSettledEvent{
		WagerID: wagerID,
		UserID:  42,
		Variant: models.VariantSlots,
		Amount:  100,
		Win:     1000,
		Status:  models.WagerStatusWon,
	})

	messages := publisher.snapshot()
	require.Len(t, messages, 1)
	assert.Equal(t, "wagering.wager_settled", messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(messages[0].data, &envelope))
	assert.Equal(t, "wager_settled", envelope.EventType)
	assert.Equal(t, "wagering", envelope.SourceService)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.WagerSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, wagerID, payload.WagerID)
	assert.Equal(t, int64(1000), payload.Win)
}

func TestNATSEventForwarder_FailureIsReportedNotRaised(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("nats down")}
	forwarder := NewNATSEventForwarder(publisher, "wagering")

	var reported error
	forwarder.OnPublish(func(eventType events.EventType, err error) {
		assert.Equal(t, events.EventTypeLevelUp, eventType)
		reported = err
	})

	assert.NotPanics(t, func() {
		forwarder.Handle(context.Background(), events.LevelUpEvent{UserID: 1, OldLevel: 1, NewLevel: 2})
	})
	assert.ErrorContains(t, reported, "nats down")
}

func TestNATSEventForwarder_RegisterCoversEveryEventType(t *testing.T) {
	publisher := &fakePublisher{}
	forwarder := NewNATSEventForwarder(publisher, "wagering")
	bus := events.NewBus()
	forwarder.Register(bus)

	bus.Emit(context.Background(), events.AccountCreatedEvent{UserID: 7, InitialBalance: 1000})
	bus.Emit(context.Background(), events.SessionOpenedEvent{UserID: 7, Variant: models.VariantCrash})

	require.Eventually(t, func() bool { return len(publisher.snapshot()) == 2 }, time.Second, 10*time.Millisecond)

	subjects := map[string]bool{}
	for _, m := range publisher.snapshot() {
		subjects[m.subject] = true
	}
	assert.True(t, subjects["wagering.account_created"])
	assert.True(t, subjects["wagering.session_opened"])
}

func TestSubjectFor(t *testing.T) {
	for _, eventType := range events.AllEventTypes {
		assert.Equal(t, "wagering."+string(eventType), SubjectFor(eventType))
	}
}
