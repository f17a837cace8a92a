// Package metrics registers the application's Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Split metrics
	SplitsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitpot_splits_computed_total",
		Help: "Total number of splits computed, by policy",
	}, []string{"policy"})
	SplitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_split_errors_total",
		Help: "Total number of rejected split computations",
	})

	// Balance computation metrics
	BalanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_balance_computations_total",
		Help: "Total number of balance recomputations",
	})
	BalanceComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "splitpot_balance_compute_duration_seconds",
		Help:    "Duration of balance aggregation plus settlement minimization",
		Buckets: prometheus.DefBuckets,
	})
	BalanceComputationsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_balance_computations_discarded_total",
		Help: "Computations superseded by a newer mutation and not cached",
	})
	IntegrityWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_balance_integrity_warnings_total",
		Help: "Aggregations whose balances did not sum to zero",
	})
	RecordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_records_skipped_total",
		Help: "Malformed expense or settlement records skipped during aggregation",
	})

	// Result cache metrics
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_cache_hits_total",
		Help: "Result cache hits",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpot_cache_misses_total",
		Help: "Result cache misses, including expired entries",
	})
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitpot_cache_invalidations_total",
		Help: "Scopes invalidated, by trigger event kind",
	}, []string{"event"})

	// Change event metrics
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitpot_events_published_total",
		Help: "Change events published, by kind",
	}, []string{"kind"})
)
