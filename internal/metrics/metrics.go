package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot pipeline metrics
	SnapshotsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dash_snapshots_computed_total",
			Help: "Total number of snapshots computed, by trigger",
		},
		[]string{"trigger"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dash_fetch_duration_seconds",
			Help:    "Duration of event store fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dash_fetch_errors_total",
			Help: "Total number of event store fetch errors",
		},
	)

	EventsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dash_events_fetched_total",
			Help: "Total number of log events fetched from the store",
		},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dash_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dash_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
	)

	// Alert metrics
	FailingTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dash_failing_tasks",
			Help: "Number of tasks with failure-level events in the last computed window",
		},
	)
)
