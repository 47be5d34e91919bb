package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for the widget's failure modes.
var (
	ErrValidation          = errors.New("draft message failed validation")
	ErrSubmissionInFlight  = errors.New("a submission is already in progress")
	ErrAlreadySent         = errors.New("a message was already sent from this widget")
	ErrLocationUnavailable = errors.New("viewer location could not be determined")
	ErrStaleWidget         = errors.New("widget instance is no longer current")
	ErrUpstream            = errors.New("upstream service returned an error")
)
