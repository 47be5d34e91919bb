package guestmap

import (
	"errors"
	"testing"
	"time"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_Lifecycle(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	idle := Submission{State: domain.StateIdle}
	sending, err := idle.Begin()
	require.NoError(t, err)
	assert.Equal(t, domain.StateSending, sending.State)
	assert.False(t, sending.Acknowledged())

	// Not acknowledged yet, so time alone never promotes it.
	assert.Equal(t, domain.StateSending, sending.Advance(start.Add(time.Hour), DefaultSentDelay).State)

	acked := sending.Acknowledge(start)
	assert.True(t, acked.Acknowledged())
	assert.Equal(t, start.Add(4*time.Second), acked.SentAt(DefaultSentDelay))

	assert.Equal(t, domain.StateSending, acked.Advance(start.Add(3999*time.Millisecond), DefaultSentDelay).State)
	sent := acked.Advance(start.Add(4*time.Second), DefaultSentDelay)
	assert.Equal(t, domain.StateSent, sent.State)

	_, err = sent.Begin()
	assert.True(t, errors.Is(err, domain.ErrAlreadySent))
}

func TestSubmission_BeginWhileSending(t *testing.T) {
	sending := Submission{State: domain.StateSending}
	same, err := sending.Begin()
	assert.True(t, errors.Is(err, domain.ErrSubmissionInFlight))
	assert.Equal(t, sending, same)
}

func TestSubmission_RejectReturnsToIdle(t *testing.T) {
	sending, _ := Submission{}.Begin()
	assert.Equal(t, domain.StateIdle, sending.Reject().State)
}

func TestSubmission_FailAndRetry(t *testing.T) {
	sending, _ := Submission{}.Begin()
	failed := sending.Fail(errors.New("connection refused"))
	assert.Equal(t, domain.StateFailed, failed.State)
	assert.Equal(t, "connection refused", failed.Error)

	again, err := failed.Begin()
	require.NoError(t, err, "a failed submission can be attempted again")
	assert.Equal(t, domain.StateSending, again.State)

	assert.Equal(t, domain.StateIdle, failed.Retry().State)
	assert.Equal(t, domain.StateSending, sending.Retry().State, "retry only applies to failures")
}
