package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendations HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reco_recommend_latency_seconds",
		Help:    "Latency of the recommendations handler",
		Buckets: prometheus.DefBuckets,
	})

	// Recommendations served, by resolved strategy and cache outcome
	RecommendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_recommend_requests_total",
			Help: "Total recommendation requests by strategy and cache outcome",
		},
		[]string{"strategy", "cached"},
	)

	// Fallbacks taken when a personalized strategy came back empty
	StrategyFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_strategy_fallbacks_total",
			Help: "Total strategy fallbacks by requested strategy",
		},
		[]string{"from", "to"},
	)

	// Experiment bucket assignments observed on the serving path
	ExperimentAssignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_experiment_assignments_total",
			Help: "Total experiment assignments by experiment and variant",
		},
		[]string{"experiment_id", "variant"},
	)
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		StrategyFallbacks,
		ExperimentAssignments,
	)
}
