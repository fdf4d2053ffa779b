package retriever

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts similarity searches by result.
	// Labels: result (success, error)
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haccpd",
			Subsystem: "retriever",
			Name:      "searches_total",
			Help:      "Total number of similarity searches",
		},
		[]string{"result"},
	)

	// SearchDuration tracks similarity search latency.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "haccpd",
			Subsystem: "retriever",
			Name:      "search_duration_seconds",
			Help:      "Duration of similarity searches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// EmbedDuration tracks batch embedding latency during indexing.
	EmbedDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "haccpd",
			Subsystem: "retriever",
			Name:      "embed_duration_seconds",
			Help:      "Duration of batch embedding calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// IndexedRecords tracks the number of records in the most recently
	// ingested index per source document.
	// Labels: source (appcc, pac, bpf)
	IndexedRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "haccpd",
			Subsystem: "retriever",
			Name:      "indexed_records",
			Help:      "Number of records in the most recently ingested index",
		},
		[]string{"source"},
	)
)
