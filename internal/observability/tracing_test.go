package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTracing_Disabled(t *testing.T) {
	tracer, cleanup, err := SetupTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid(), "disabled tracing produces no-op spans")
	assert.NoError(t, cleanup(context.Background()))
}

func TestSetupTracing_Enabled(t *testing.T) {
	tracer, cleanup, err := SetupTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "guestmap-test",
		ZipkinURL:   "http://localhost:9411/api/v2/spans",
		Version:     "test",
	})
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "real")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	// Shutdown may fail to flush to the absent collector; only the call itself matters here.
	_ = cleanup(context.Background())
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Submissions.Inc()
	m.UpstreamRequests.WithLabelValues("messages", "list", Outcome(nil)).Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("messages", "list", "success")))

	assert.Panics(t, func() { NewMetrics(reg) }, "registering twice on one registry panics")
}
