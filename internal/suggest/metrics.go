package suggest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SuggestionsTotal counts plan suggestions by result.
	// Labels: result (success, not_found)
	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haccpd",
			Subsystem: "suggest",
			Name:      "suggestions_total",
			Help:      "Total number of monitoring plan suggestions",
		},
		[]string{"result"},
	)

	// EmptyAnswersTotal counts sub-questions that found no non-empty
	// answer among their top hits.
	// Labels: field (limite_critico, monitoramento_oque, ...)
	EmptyAnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haccpd",
			Subsystem: "suggest",
			Name:      "empty_answers_total",
			Help:      "Total number of sub-questions answered with an empty string",
		},
		[]string{"field"},
	)
)
