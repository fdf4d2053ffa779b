package embeddings

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts embedding requests by operation and result.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haccpd",
			Subsystem: "embeddings",
			Name:      "requests_total",
			Help:      "Total number of embedding requests.",
		},
		[]string{"operation", "result"},
	)

	// RequestDuration tracks embedding request latency by operation.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "haccpd",
			Subsystem: "embeddings",
			Name:      "request_duration_seconds",
			Help:      "Embedding request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
