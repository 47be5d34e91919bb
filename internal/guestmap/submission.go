package guestmap

import (
	"time"

	"github.com/nfrund/guestmap/internal/domain"
)

// DefaultSentDelay is the pause between the API acknowledging a message and
// the widget showing its thank-you panel. It is a display delay layered on
// top of the response; it does not bound the network call.
const DefaultSentDelay = 4 * time.Second

// Submission is the submission progress of one widget instance. All methods
// are pure: they return an updated copy and leave the receiver untouched.
type Submission struct {
	State   domain.SubmissionState `json:"state"`
	AckedAt time.Time              `json:"ackedAt,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Begin enters StateSending. It runs before the draft is validated, so the
// sending indicator is visible even for drafts that are about to be rejected.
func (s Submission) Begin() (Submission, error) {
	switch s.State {
	case domain.StateSending:
		return s, domain.ErrSubmissionInFlight
	case domain.StateSent:
		return s, domain.ErrAlreadySent
	}
	return Submission{State: domain.StateSending}, nil
}

// Reject returns to StateIdle after a validation failure.
func (s Submission) Reject() Submission {
	return Submission{State: domain.StateIdle}
}

// Acknowledge records the time the message API answered. The state stays
// StateSending until Advance observes that the display delay has elapsed.
func (s Submission) Acknowledge(at time.Time) Submission {
	return Submission{State: domain.StateSending, AckedAt: at}
}

// Fail records an unsuccessful API call.
func (s Submission) Fail(err error) Submission {
	return Submission{State: domain.StateFailed, Error: err.Error()}
}

// Retry turns a failed submission back into an editable form.
func (s Submission) Retry() Submission {
	if s.State != domain.StateFailed {
		return s
	}
	return Submission{State: domain.StateIdle}
}

// Acknowledged reports whether the API has answered the current attempt.
func (s Submission) Acknowledged() bool {
	return s.State == domain.StateSending && !s.AckedAt.IsZero()
}

// SentAt is the earliest time the submission may be shown as sent.
func (s Submission) SentAt(delay time.Duration) time.Time {
	return s.AckedAt.Add(delay)
}

// Advance promotes an acknowledged submission to StateSent once delay has
// passed since the acknowledgement.
func (s Submission) Advance(now time.Time, delay time.Duration) Submission {
	if !s.Acknowledged() || now.Before(s.SentAt(delay)) {
		return s
	}
	return Submission{State: domain.StateSent, AckedAt: s.AckedAt}
}
