package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BackendRequests        *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	SearchesSuperseded     prometheus.Counter
	SearchesDiscarded      prometheus.Counter
	VerificationsDiscarded prometheus.Counter
	ActiveSessions         prometheus.Gauge
}

var (
	once   sync.Once
	shared *Metrics
)

// New returns the process-wide collectors. promauto registers on the default
// registry, so repeated construction must hand back the same instance.
func New() *Metrics {
	once.Do(func() {
		shared = &Metrics{
			BackendRequests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "schemebot_backend_requests_total",
				Help: "Total number of requests sent to the scheme backend",
			}, []string{"endpoint", "outcome"}),
			BackendRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "schemebot_backend_request_duration_seconds",
				Help:    "Duration of scheme backend requests",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			}, []string{"endpoint"}),
			SearchesSuperseded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "schemebot_searches_superseded_total",
				Help: "Search responses dropped because a newer search was issued",
			}),
			SearchesDiscarded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "schemebot_searches_discarded_total",
				Help: "Search responses dropped because the session was closed",
			}),
			VerificationsDiscarded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "schemebot_verifications_discarded_total",
				Help: "Verification responses dropped because the workflow was closed",
			}),
			ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "schemebot_active_sessions",
				Help: "Number of live visitor sessions",
			}),
		}
	})
	return shared
}

func (m *Metrics) ObserveBackendRequest(endpoint, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSearchSuperseded() {
	if m == nil {
		return
	}
	m.SearchesSuperseded.Inc()
}

func (m *Metrics) IncrementSearchDiscarded() {
	if m == nil {
		return
	}
	m.SearchesDiscarded.Inc()
}

func (m *Metrics) IncrementVerificationDiscarded() {
	if m == nil {
		return
	}
	m.VerificationsDiscarded.Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
