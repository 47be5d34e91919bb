package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "guestmap"

// Metrics holds the Prometheus counters and histograms for the widget and its collaborators.
type Metrics struct {
	// Outbound calls to the message API and the IP-geolocation service.
	UpstreamRequests *prometheus.CounterVec   // labels: service={messages,ipapi}, operation, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: service, operation

	// IP lookup cache.
	IPCache *prometheus.CounterVec // labels: result={hit,miss}

	// Widget events, fed by the activity subscriber.
	Submissions         prometheus.Counter
	LocationResolutions *prometheus.CounterVec // labels: source={geolocation,ip,none}
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.IPCache,
		m.Submissions,
		m.LocationResolutions,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound requests to collaborating services by service, operation and outcome.",
		}, []string{"service", "operation", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of outbound requests to collaborating services.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service", "operation"}),
		IPCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ip_lookup_cache_total",
			Help:      "IP-geolocation cache lookups by result.",
		}, []string{"result"}),
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_submitted_total",
			Help:      "Messages acknowledged by the message API.",
		}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_resolutions_total",
			Help:      "Viewer location attempts by the source that succeeded.",
		}, []string{"source"}),
	}
}

// Outcome converts an error into the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
