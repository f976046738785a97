package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics backs the dashboard analytics panel: category distribution and
// processing time.
type Metrics struct {
	processed   *prometheus.CounterVec
	crmFailures prometheus.Counter
	duration    prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_comments_processed_total",
			Help: "Comments processed, by resolved category.",
		}, []string{"category"}),
		crmFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_crm_dispatch_failures_total",
			Help: "CRM dispatches that failed and were surfaced as warnings.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_processing_duration_seconds",
			Help:    "End-to-end pipeline processing time.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.processed, m.crmFailures, m.duration)
	return m
}

func (m *Metrics) observe(seconds float64, category string, crmFailed bool) {
	m.processed.WithLabelValues(category).Inc()
	m.duration.Observe(seconds)
	if crmFailed {
		m.crmFailures.Inc()
	}
}
