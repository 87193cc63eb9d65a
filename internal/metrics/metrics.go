// Package metrics exposes Prometheus instrumentation for the monitoring
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters and timers.
type Metrics struct {
	PostsProcessed    *prometheus.CounterVec
	PostsRelevant     *prometheus.CounterVec
	CommentsProcessed *prometheus.CounterVec
	FetchErrors       *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

// New registers the pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PostsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "monitoring_posts_processed_total",
			Help: "Posts ingested, by source.",
		}, []string{"source"}),
		PostsRelevant: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "monitoring_posts_relevant_total",
			Help: "Posts classified as relevant, by source.",
		}, []string{"source"}),
		CommentsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "monitoring_comments_processed_total",
			Help: "Comments ingested, by source.",
		}, []string{"source"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "monitoring_fetch_errors_total",
			Help: "Failed fetch operations, by source.",
		}, []string{"source"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitoring_run_duration_seconds",
			Help:    "Duration of full monitoring runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitoring_score_cache_hits_total",
			Help: "Classification verdicts served from cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitoring_score_cache_misses_total",
			Help: "Classification verdicts computed on cache miss.",
		}),
	}
}

// ObserveRun records one completed run.
func (m *Metrics) ObserveRun(elapsed time.Duration) {
	m.RunDuration.Observe(elapsed.Seconds())
}
