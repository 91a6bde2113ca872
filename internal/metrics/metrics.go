// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification metrics
var (
	// ClassificationsTotal counts completed classifications by returned category.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kokoro_classifications_total",
			Help: "Completed classifications by category.",
		},
		[]string{"category"},
	)

	// ClassificationFallbacksTotal counts model replies outside the category set.
	ClassificationFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kokoro_classification_fallbacks_total",
			Help: "Model replies that were not a known category and fell back to the default.",
		},
	)

	// ClassifyDuration observes end-to-end classification latency.
	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kokoro_classify_duration_seconds",
			Help:    "End-to-end classification latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// EmbeddingErrorsTotal counts failed embedding calls by stage (build or query).
	EmbeddingErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kokoro_embedding_errors_total",
			Help: "Failed embedding service calls.",
		},
		[]string{"stage"},
	)

	// GenerationErrorsTotal counts failed generation calls.
	GenerationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kokoro_generation_errors_total",
			Help: "Failed generation service calls.",
		},
	)
)

// Builder metrics
var (
	// BuilderItemsTotal counts corpus items by outcome: embedded, skipped or failed.
	BuilderItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kokoro_builder_items_total",
			Help: "Corpus items processed by the vector store builder.",
		},
		[]string{"result"},
	)

	// BuilderCheckpointsTotal counts intermediate store saves.
	BuilderCheckpointsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kokoro_builder_checkpoints_total",
			Help: "Checkpoints written by the vector store builder.",
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kokoro_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kokoro_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Builder item results.
const (
	ResultEmbedded = "embedded"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
)

// Embedding error stages.
const (
	StageBuild = "build"
	StageQuery = "query"
)
