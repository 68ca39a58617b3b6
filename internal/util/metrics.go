package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdjudicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adjudications_total",
		Help: "Total number of completed adjudications by decision",
	}, []string{"decision"})

	AdjudicationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adjudications_failed_total",
		Help: "Total number of adjudication requests rejected",
	}, []string{"reason"})

	ItemVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "item_verdicts_total",
		Help: "Total number of per-item verdicts by outcome",
	}, []string{"outcome"})

	AdjudicationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adjudication_latency_seconds",
		Help:    "End-to-end latency of one adjudication request",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotLoadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_load_latency_seconds",
		Help:    "Latency of loading a policy graph snapshot",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_hits_total",
		Help: "Total number of snapshot loads served from Redis",
	})

	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_misses_total",
		Help: "Total number of snapshot loads that fell through to Postgres",
	})

	ClassifierRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classifier_requests_total",
		Help: "Total number of category classifier calls",
	})

	ClassifierFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classifier_fallbacks_total",
		Help: "Total number of classifier failures treated as unresolved",
	})

	ClassifierCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classifier_cache_hits_total",
		Help: "Total number of classifier labels served from Redis",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
