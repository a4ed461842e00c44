package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wagering/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessagePublisher sends raw payloads on a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every forwarded event
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// SubjectFor maps an event type onto its NATS subject
func SubjectFor(eventType events.EventType) string {
	return SubjectPrefix + "." + string(eventType)
}

// NATSEventForwarder copies committed bus events onto NATS
type NATSEventForwarder struct {
	publisher MessagePublisher
	source    string
	timeout   time.Duration
	onPublish func(eventType events.EventType, err error)
}

// NewNATSEventForwarder creates a forwarder publishing through the given client
func NewNATSEventForwarder(publisher MessagePublisher, source string) *NATSEventForwarder {
	return &NATSEventForwarder{
		publisher: publisher,
		source:    source,
		timeout:   5 * time.Second,
	}
}

// OnPublish registers a callback invoked after every publish attempt
func (f *NATSEventForwarder) OnPublish(fn func(eventType events.EventType, err error)) {
	f.onPublish = fn
}

// Register subscribes the forwarder to every event type on the bus
func (f *NATSEventForwarder) Register(bus *events.Bus) {
	bus.SubscribeAll(f.Handle)
	log.WithField("source", f.source).Info("NATS event forwarder registered")
}

// Handle publishes a single event. Failures are logged and never reach the caller.
func (f *NATSEventForwarder) Handle(ctx context.Context, event events.Event) {
	err := f.forward(ctx, event)
	if f.onPublish != nil {
		f.onPublish(event.Type(), err)
	}
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

func (f *NATSEventForwarder) forward(ctx context.Context, event events.Event) error {
	data, err := f.Envelope(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	subject := SubjectFor(event.Type())
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"subject":   subject,
	}).Debug("Forwarded event to NATS")
	return nil
}

// Envelope serializes an event into its wire form
func (f *NATSEventForwarder) Envelope(event events.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: f.source,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}
