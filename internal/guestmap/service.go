package guestmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/pubsub"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"
)

// MessageStore is the remote message API.
type MessageStore interface {
	List(ctx context.Context) ([]domain.Message, error)
	Create(ctx context.Context, msg domain.NewMessage) (domain.Message, error)
}

// StoreSelector picks the message API endpoint for the host the widget is
// served from.
type StoreSelector interface {
	ForHost(host string) MessageStore
}

// SingleStore is a StoreSelector that ignores the host.
type SingleStore struct {
	Store MessageStore
}

func (s SingleStore) ForHost(string) MessageStore { return s.Store }

// Dependencies holds all the services the widget service requires.
type Dependencies struct {
	Stores    StoreSelector
	Resolver  *Resolver
	Validator *Validator
	Publisher pubsub.Publisher
	Clock     clockwork.Clock
	Tracer    trace.Tracer
	Logger    *slog.Logger

	// SentDelay defaults to DefaultSentDelay.
	SentDelay time.Duration
	// LegacyKeys selects ConcatenatedKey grouping instead of CoordinateKey.
	LegacyKeys bool
}

// Service implements the map widget's behaviour on top of its collaborators.
type Service struct {
	stores     StoreSelector
	resolver   *Resolver
	validator  *Validator
	publisher  pubsub.Publisher
	clock      clockwork.Clock
	tracer     trace.Tracer
	logger     *slog.Logger
	sentDelay  time.Duration
	legacyKeys bool

	inflight singleflight.Group
}

// NewService creates a widget service.
func NewService(deps Dependencies) *Service {
	s := &Service{
		stores:     deps.Stores,
		resolver:   deps.Resolver,
		validator:  deps.Validator,
		publisher:  deps.Publisher,
		clock:      deps.Clock,
		tracer:     deps.Tracer,
		logger:     deps.Logger,
		sentDelay:  deps.SentDelay,
		legacyKeys: deps.LegacyKeys,
	}
	if s.validator == nil {
		s.validator = NewValidator()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("guestmap")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.sentDelay <= 0 {
		s.sentDelay = DefaultSentDelay
	}
	s.logger = s.logger.With("service", "guestmap")
	if s.resolver == nil {
		s.resolver = NewResolver(nil, s.logger)
	}
	return s
}

// SentDelay returns the configured display delay.
func (s *Service) SentDelay() time.Duration {
	return s.sentDelay
}

// NewWidget starts a new widget instance.
func (s *Service) NewWidget() WidgetState {
	st := NewWidgetState()
	s.logger.Debug("Widget instance created", "instance_id", st.InstanceID)
	return st
}

// Groups loads all messages from the API for host and groups them by location.
// A failed load is returned as an error; callers decide how to surface it.
func (s *Service) Groups(ctx context.Context, host string) ([]domain.LocationGroup, error) {
	ctx, span := s.tracer.Start(ctx, "guestmap.groups", trace.WithAttributes(attribute.String("guestmap.host", host)))
	defer span.End()

	messages, err := s.stores.ForHost(host).List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load messages: %w", err)
	}

	groups := Group(messages, s.legacyKeys)
	span.SetAttributes(
		attribute.Int("guestmap.messages", len(messages)),
		attribute.Int("guestmap.groups", len(groups)),
	)
	s.logger.Debug("Messages grouped", "messages", len(messages), "groups", len(groups))
	return groups, nil
}

// Locate runs the instance's single location attempt. Failures are logged and
// leave the viewer unresolved; they never fail the widget.
func (s *Service) Locate(ctx context.Context, st WidgetState, primary Geolocator, clientIP string) WidgetState {
	if st.Viewer.Attempted {
		return st
	}

	ctx, span := s.tracer.Start(ctx, "guestmap.locate")
	defer span.End()

	viewer, err := s.resolver.Resolve(ctx, st.Viewer, primary, clientIP)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("Viewer location unavailable", "instance_id", st.InstanceID, "error", err)
	} else {
		s.logger.Info("Viewer location resolved",
			"instance_id", st.InstanceID,
			"source", viewer.Source,
			"zoom", viewer.Zoom)
	}
	span.SetAttributes(attribute.String("guestmap.location_source", string(viewer.Source)))

	publishEvent(ctx, s, TopicLocationResolved, st.InstanceID, LocationResolvedEvent{
		Source:   viewer.Source,
		Resolved: viewer.Resolved,
	})
	return st.WithViewer(viewer)
}

// Submit validates the draft and posts it to the message API for host.
//
// The returned state is always the one to display: StateIdle with a
// *ValidationError, StateFailed with the API error, or an acknowledged
// StateSending that Refresh later promotes to StateSent. Submitting while a
// submission is in flight or already sent returns the state unchanged with
// domain.ErrSubmissionInFlight or domain.ErrAlreadySent.
func (s *Service) Submit(ctx context.Context, host string, st WidgetState, draft domain.DraftMessage) (WidgetState, error) {
	sub, err := st.Submission.Begin()
	if err != nil {
		return st, err
	}
	s.logTransition(st, sub)
	st = st.WithDraft(draft).WithSubmission(sub)

	if err := s.validator.Validate(draft); err != nil {
		rejected := st.Submission.Reject()
		s.logTransition(st, rejected)
		return st.WithSubmission(rejected), err
	}

	ctx, span := s.tracer.Start(ctx, "guestmap.submit", trace.WithAttributes(
		attribute.String("guestmap.instance_id", st.InstanceID),
		attribute.Bool("guestmap.location_resolved", st.Viewer.Resolved),
	))
	defer span.End()

	position := st.Viewer.Coordinates()
	payload := domain.NewMessage{
		Name:      draft.Name,
		Message:   draft.Message,
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
	}

	// Overlapping submissions from one widget instance share a single call,
	// so it must outlive the request that happened to start it.
	callCtx := context.WithoutCancel(ctx)
	result, err, shared := s.inflight.Do(st.InstanceID, func() (any, error) {
		return s.stores.ForHost(host).Create(callCtx, payload)
	})
	if shared {
		s.logger.Info("Joined in-flight submission", "instance_id", st.InstanceID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		failed := st.Submission.Fail(err)
		s.logTransition(st, failed)
		return st.WithSubmission(failed), fmt.Errorf("submit message: %w", err)
	}

	created, _ := result.(domain.Message)
	acked := st.Submission.Acknowledge(s.clock.Now())
	s.logger.Info("Message acknowledged",
		"instance_id", st.InstanceID,
		"message_id", created.ID,
		"sent_at", acked.SentAt(s.sentDelay))

	publishEvent(ctx, s, TopicMessageSubmitted, st.InstanceID, MessageSubmittedEvent{
		MessageID: created.ID,
		Position:  position,
		Resolved:  st.Viewer.Resolved,
		AckedAt:   acked.AckedAt,
	})
	return st.WithSubmission(acked), nil
}

// Refresh applies the passage of time: an acknowledged submission becomes
// StateSent once the display delay has elapsed.
func (s *Service) Refresh(st WidgetState) WidgetState {
	next := st.Submission.Advance(s.clock.Now(), s.sentDelay)
	if next.State != st.Submission.State {
		s.logTransition(st, next)
	}
	return st.WithSubmission(next)
}

// Retry returns a failed submission to the editable form, keeping the draft.
func (s *Service) Retry(st WidgetState) WidgetState {
	next := st.Submission.Retry()
	if next.State != st.Submission.State {
		s.logTransition(st, next)
	}
	return st.WithSubmission(next)
}

// Remaining is how long an acknowledged submission still has to wait before
// it is shown as sent. It is zero for any other state.
func (s *Service) Remaining(st WidgetState) time.Duration {
	if !st.Submission.Acknowledged() {
		return 0
	}
	d := st.Submission.SentAt(s.sentDelay).Sub(s.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

// WaitSent blocks until an acknowledged submission reaches StateSent.
func (s *Service) WaitSent(ctx context.Context, st WidgetState) (WidgetState, error) {
	if !st.Submission.Acknowledged() {
		return st, fmt.Errorf("wait for sent: submission is %s", st.Submission.State)
	}
	if d := s.Remaining(st); d > 0 {
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-s.clock.After(d):
		}
	}
	return s.Refresh(st), nil
}

func (s *Service) logTransition(st WidgetState, next Submission) {
	s.logger.Info("Submission state changed",
		"instance_id", st.InstanceID,
		"from", st.Submission.State.String(),
		"to", next.State.String())
}

func publishEvent[T any](ctx context.Context, s *Service, event pubsub.Event[T], instanceID string, payload T) {
	if s.publisher == nil {
		return
	}
	if err := pubsub.Publish(ctx, s.publisher, event, instanceID, payload); err != nil {
		s.logger.Error("Failed to publish event", "topic", event.Name(), "error", err)
	}
}

// IsUserError reports whether err should be shown to the visitor rather than
// treated as a server fault.
func IsUserError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrSubmissionInFlight) ||
		errors.Is(err, domain.ErrAlreadySent)
}
