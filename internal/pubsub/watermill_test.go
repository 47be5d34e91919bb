package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	Text string `json:"text"`
}

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	received := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "test.topic", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:      "test.topic",
		InstanceID: "widget-1",
		Payload:    []byte(`{"hello":"world"}`),
		Metadata:   map[string]string{"request_id": "req-123"},
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "test.topic", msg.Topic)
		assert.Equal(t, "widget-1", msg.InstanceID)
		assert.JSONEq(t, `{"hello":"world"}`, string(msg.Payload))
		assert.Equal(t, "req-123", msg.Metadata["request_id"])
		assert.NotContains(t, msg.Metadata, metaKeyTopic)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestWatermillBridge_HandlerErrorDoesNotRedeliver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	calls := make(chan struct{}, 10)
	err := bridge.Subscribe(ctx, "failing.topic", func(ctx context.Context, msg Message) error {
		calls <- struct{}{}
		return errors.New("boom")
	})
	require.NoError(t, err)

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "failing.topic", Payload: []byte(`{}`)}))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}

	select {
	case <-calls:
		t.Fatal("message was redelivered after a handler error")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestTypedEvent_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	event := NewEvent[greeting]("test.greeting", "A greeting was sent")
	assert.Equal(t, "test.greeting", event.Name())
	assert.Equal(t, "A greeting was sent", event.Description())

	got := make(chan greeting, 1)
	ids := make(chan string, 1)
	err := Subscribe(ctx, bridge, event, func(ctx context.Context, instanceID string, g greeting) error {
		ids <- instanceID
		got <- g
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, Publish(ctx, bridge, event, "widget-7", greeting{Text: "hi"}))

	select {
	case g := <-got:
		assert.Equal(t, "hi", g.Text)
		assert.Equal(t, "widget-7", <-ids)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for typed event")
	}
}
