package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankingBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callclub",
		Name:      "ranking_builds_total",
		Help:      "Rankings built, by scope kind.",
	}, []string{"scope"})

	RankingBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "callclub",
		Name:      "ranking_build_duration_seconds",
		Help:      "Time spent loading inputs and building a ranking.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"scope"})

	StaleSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "callclub",
		Name:      "ranking_stale_snapshots_total",
		Help:      "Rankings served without position changes because the previous snapshot was unusable.",
	})

	Recomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callclub",
		Name:      "ranking_recomputes_total",
		Help:      "Snapshot recomputations, by result.",
	}, []string{"result"})

	RPCs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callclub",
		Name:      "grpc_requests_total",
		Help:      "Unary gRPC calls, by method and result.",
	}, []string{"method", "result"})
)
