package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event[T] binds a topic name to its payload type so publishers and
// subscribers agree on the wire format at compile time.
type Event[T any] struct {
	topicName   string
	description string
}

// NewEvent creates a typed event for the given topic.
func NewEvent[T any](name string, description string) Event[T] {
	return Event[T]{
		topicName:   name,
		description: description,
	}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Description returns the human-readable description of the event.
func (e Event[T]) Description() string {
	return e.description
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], instanceID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}

	return p.Publish(ctx, Message{
		Topic:      event.Name(),
		InstanceID: instanceID,
		Payload:    data,
	})
}

// Subscribe registers a handler that receives decoded payloads of the event's type.
// Messages that fail to decode are reported as handler errors.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, instanceID string, payload T) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Name(), err)
		}
		return handler(ctx, msg.InstanceID, payload)
	})
}
