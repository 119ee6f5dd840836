package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_mutations_total",
			Help: "Total number of create/update/delete operations, by entity and outcome",
		},
		[]string{"entity", "action", "outcome"},
	)

	GradeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrollment_grade",
			Help:    "Distribution of recorded enrollment grades",
			Buckets: prometheus.LinearBuckets(0, 5, 7),
		},
		[]string{"edition"},
	)
)
