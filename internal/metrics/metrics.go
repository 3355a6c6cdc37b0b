// Package metrics provides Prometheus metrics for the feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelevanceEvaluations counts relevance decisions by the rule that decided them.
	RelevanceEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barterfeed",
			Name:      "relevance_evaluations_total",
			Help:      "Total number of relevance evaluations by reason",
		},
		[]string{"reason"},
	)

	// FeedBuildDuration measures feed construction time.
	FeedBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "barterfeed",
			Name:      "feed_build_duration_seconds",
			Help:      "Duration of feed builds in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// FeedSize observes how many offers a built feed contains.
	FeedSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "barterfeed",
			Name:      "feed_size",
			Help:      "Distribution of personalized feed sizes",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// TaxonomyCache counts taxonomy cache lookups by result (hit, miss, error).
	TaxonomyCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barterfeed",
			Name:      "taxonomy_cache_total",
			Help:      "Taxonomy cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordEvaluation records one relevance decision.
func RecordEvaluation(reason string) {
	RelevanceEvaluations.WithLabelValues(reason).Inc()
}

// RecordFeedBuild records a completed feed build.
func RecordFeedBuild(size int, duration float64) {
	FeedBuildDuration.Observe(duration)
	FeedSize.Observe(float64(size))
}

// RecordTaxonomyCache records a taxonomy cache lookup.
func RecordTaxonomyCache(result string) {
	TaxonomyCache.WithLabelValues(result).Inc()
}
