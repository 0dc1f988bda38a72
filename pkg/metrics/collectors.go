package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gopherdigest"

var (
	// ExtractionAttempts counts tier attempts by outcome (accepted or the failure reason).
	ExtractionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_attempts_total",
			Help:      "Extraction tier attempts partitioned by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// SummarizerCalls counts model calls by result code.
	SummarizerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_calls_total",
			Help:      "Language model calls partitioned by result",
		},
		[]string{"result"},
	)

	// PromptTokens observes the prompt size sent to the model.
	PromptTokens = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prompt_tokens",
			Help:      "Prompt tokens per summarization request",
			Buckets:   []float64{250, 500, 1000, 1500, 2000, 3000, 4000, 6000},
		},
	)

	// DigestDuration measures the full pipeline latency.
	DigestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "digest_duration_seconds",
			Help:      "Duration of digest requests in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"result"},
	)

	// CacheLookups counts summary cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Summary cache lookups partitioned by result",
		},
		[]string{"result"},
	)
)
