package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BoardRefreshes     prometheus.Counter
	RefreshFailures    prometheus.Counter
	StaleDropped       prometheus.Counter
	Assignments        prometheus.Counter
	AssignmentFailures prometheus.Counter
	BackendDuration    *prometheus.HistogramVec
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BoardRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_refreshes_total",
			Help:      "The total number of dispatch board refresh cycles",
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_refresh_failures_total",
			Help:      "The total number of failed board refresh attempts",
		}),
		StaleDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_dropped_total",
			Help:      "The total number of late fetch responses discarded by the sequence guard",
		}),
		Assignments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "The total number of technician assignment commands issued",
		}),
		AssignmentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignment_failures_total",
			Help:      "The total number of assignment commands rejected or failed",
		}),
		BackendDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Time taken by FieldOS backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
