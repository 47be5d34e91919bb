package domain

import "fmt"

// SubmissionState governs which panel the widget shows.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSending
	StateSent
	// StateFailed means the remote API could not be reached or answered with
	// an error. The widget offers a retry that returns to StateIdle.
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("SubmissionState(%d)", int(s))
	}
}
