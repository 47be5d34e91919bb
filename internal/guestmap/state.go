package guestmap

import (
	"github.com/google/uuid"
	"github.com/nfrund/guestmap/internal/domain"
)

// WidgetState is the complete view state of one widget instance. A page
// load creates a new instance; everything the widget remembers lives here.
type WidgetState struct {
	InstanceID string                `json:"instanceId"`
	Viewer     domain.ViewerLocation `json:"viewer"`
	Draft      domain.DraftMessage   `json:"draft"`
	Submission Submission            `json:"submission"`
}

// NewWidgetState returns a fresh instance: unresolved location, empty
// draft, idle submission.
func NewWidgetState() WidgetState {
	return WidgetState{
		InstanceID: uuid.NewString(),
		Viewer:     domain.DefaultViewerLocation(),
		Submission: Submission{State: domain.StateIdle},
	}
}

// WithDraft replaces the draft.
func (s WidgetState) WithDraft(d domain.DraftMessage) WidgetState {
	s.Draft = d
	return s
}

// WithViewer replaces the viewer location.
func (s WidgetState) WithViewer(v domain.ViewerLocation) WidgetState {
	s.Viewer = v
	return s
}

// WithSubmission replaces the submission progress.
func (s WidgetState) WithSubmission(sub Submission) WidgetState {
	s.Submission = sub
	return s
}
