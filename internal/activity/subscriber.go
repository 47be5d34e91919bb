// Package activity turns widget events into metrics and audit log lines.
package activity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/nfrund/guestmap/internal/observability"
	"github.com/nfrund/guestmap/internal/pubsub"
)

// Subscriber listens for widget events on the bus.
type Subscriber struct {
	subscriber pubsub.Subscriber
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewSubscriber creates an activity subscriber.
func NewSubscriber(sub pubsub.Subscriber, metrics *observability.Metrics, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		subscriber: sub,
		metrics:    metrics,
		logger:     logger.With("component", "activity"),
	}
}

// Start subscribes to the widget topics. Handlers run until ctx is canceled
// or the bus is closed.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting activity subscriber")

	err := pubsub.Subscribe(ctx, s.subscriber, guestmap.TopicMessageSubmitted, s.handleSubmitted)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	err = pubsub.Subscribe(ctx, s.subscriber, guestmap.TopicLocationResolved, s.handleLocated)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Subscriber) handleSubmitted(ctx context.Context, instanceID string, ev guestmap.MessageSubmittedEvent) error {
	s.metrics.Submissions.Inc()
	s.logger.Info("Message submitted",
		"instance_id", instanceID,
		"message_id", ev.MessageID,
		"latitude", ev.Position.Latitude,
		"longitude", ev.Position.Longitude,
		"location_resolved", ev.Resolved)
	return nil
}

func (s *Subscriber) handleLocated(ctx context.Context, instanceID string, ev guestmap.LocationResolvedEvent) error {
	source := string(ev.Source)
	if !ev.Resolved || source == "" {
		source = "none"
	}
	s.metrics.LocationResolutions.WithLabelValues(source).Inc()
	s.logger.Debug("Viewer location attempt finished", "instance_id", instanceID, "source", source)
	return nil
}
