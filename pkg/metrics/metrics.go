// Package metrics exposes Prometheus collectors for the search and
// recommendation paths. Collectors register with the default registry and
// are served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts blended recommendation calls.
	// path is "blended" or "trending_only".
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_recommendation_requests_total",
			Help: "Total number of recommendation requests by path",
		},
		[]string{"path"},
	)

	StrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_recommendation_strategy_failures_total",
			Help: "Recommendation strategies that failed and contributed no results",
		},
		[]string{"strategy"},
	)

	StrategyResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_recommendation_strategy_results",
			Help:    "Number of results returned by each recommendation strategy",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"strategy"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_search_duration_seconds",
			Help:    "Duration of search requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sort"},
	)

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketplace_snapshot_build_duration_seconds",
			Help:    "Time spent rebuilding the feature snapshot and interaction matrix",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	SnapshotAgents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_snapshot_agents",
			Help: "Number of agents in the current feature snapshot",
		},
	)

	SnapshotUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_snapshot_users",
			Help: "Number of user rows in the current interaction matrix",
		},
	)
)

// ObserveSearch records a completed search
func ObserveSearch(sort string, start time.Time) {
	SearchDuration.WithLabelValues(sort).Observe(time.Since(start).Seconds())
}

// ObserveSnapshot records a completed snapshot rebuild
func ObserveSnapshot(agents, users int, start time.Time) {
	SnapshotBuildDuration.Observe(time.Since(start).Seconds())
	SnapshotAgents.Set(float64(agents))
	SnapshotUsers.Set(float64(users))
}
