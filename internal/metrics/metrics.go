package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/service"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	AnnotationsSubmitted *prometheus.CounterVec
	SubmissionsRejected  *prometheus.CounterVec
	RandomFetches        *prometheus.CounterVec
	Assignments          *prometheus.GaugeVec
	Annotators           prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnnotationsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotations_submitted_total",
			Help: "Total number of accepted annotation submissions.",
		}, []string{"schema"}),

		SubmissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotation_submissions_rejected_total",
			Help: "Submissions refused before or at the store (invalid, rate_limited, stale).",
		}, []string{"reason"}),

		RandomFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "random_pending_fetches_total",
			Help: "Random pending lookups by outcome.",
		}, []string{"result"}),

		Assignments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "annotation_assignments",
			Help: "Assignments in the queue by status, refreshed periodically.",
		}, []string{"status"}),

		Annotators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "annotation_annotators",
			Help: "Users holding at least one assignment.",
		}),
	}

	reg.MustRegister(
		m.AnnotationsSubmitted,
		m.SubmissionsRejected,
		m.RandomFetches,
		m.Assignments,
		m.Annotators,
	)

	return m
}

// ServiceHooks returns the callbacks expected by service.Hooks.
// Centralises the prometheus calls so the service stays import-free.
func (m *Metrics) ServiceHooks() service.Hooks {
	return service.Hooks{
		OnSubmitted: func(schema string) {
			m.AnnotationsSubmitted.WithLabelValues(schema).Inc()
		},
		OnRejected: func(reason string) {
			m.SubmissionsRejected.WithLabelValues(reason).Inc()
		},
		OnRandomFetch: func(found bool) {
			result := "empty"
			if found {
				result = "found"
			}
			m.RandomFetches.WithLabelValues(result).Inc()
		},
	}
}

// SetAssignmentCounts publishes an aggregate snapshot to the gauges.
func (m *Metrics) SetAssignmentCounts(stats map[string]domain.StatusCounts) {
	var total domain.StatusCounts
	for _, c := range stats {
		total.Complete += c.Complete
		total.Pending += c.Pending
	}
	m.Assignments.WithLabelValues(string(domain.StatusComplete)).Set(float64(total.Complete))
	m.Assignments.WithLabelValues(string(domain.StatusPending)).Set(float64(total.Pending))
	m.Annotators.Set(float64(len(stats)))
}
