package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// promauto registers them with the default registry, which /metrics serves.

var (
	// HttpRequestsTotal counts handled requests by method, route pattern and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorrag_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures server response time.
	// A /chunk request is dominated by the embedding call.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorrag_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// EmbeddingRequestsTotal counts provider calls by outcome ("success" or "error").
	EmbeddingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorrag_embedding_requests_total",
			Help: "Total number of embedding provider requests",
		},
		[]string{"outcome"},
	)

	EmbeddingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorrag_embedding_request_duration_seconds",
			Help:    "Duration of embedding provider requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// ChunksPerDocument tracks how many chunks each processed document produced.
	ChunksPerDocument = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorrag_chunks_per_document",
			Help:    "Number of chunks produced per document",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

// Embedding outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
