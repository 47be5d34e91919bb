package guestmap

import (
	"time"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/pubsub"
)

// MessageSubmittedEvent is published when the message API acknowledges a submission.
type MessageSubmittedEvent struct {
	MessageID string             `json:"messageId,omitempty"`
	Position  domain.Coordinates `json:"position"`
	Resolved  bool               `json:"resolved"`
	AckedAt   time.Time          `json:"ackedAt"`
}

// LocationResolvedEvent is published after each resolution attempt.
type LocationResolvedEvent struct {
	Source   domain.LocationSource `json:"source"`
	Resolved bool                  `json:"resolved"`
}

var (
	TopicMessageSubmitted = pubsub.NewEvent[MessageSubmittedEvent](
		"guestmap.message.submitted",
		"A visitor's message was acknowledged by the message API",
	)
	TopicLocationResolved = pubsub.NewEvent[LocationResolvedEvent](
		"guestmap.location.resolved",
		"A widget finished its one viewer-location attempt",
	)
)
