package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Fetch client metrics
	FetchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sibyl_fetch_requests_total",
			Help: "Total provider fetch attempts",
		},
		[]string{"provider", "status"}, // status: success|retry|error
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sibyl_fetch_duration_seconds",
			Help:    "Provider fetch duration in seconds, including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	// Cache metrics, labeled by role: response|result
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sibyl_cache_ops_total",
			Help: "Cache lookups by role and outcome",
		},
		[]string{"role", "outcome"}, // outcome: hit|miss
	)

	// Analysis pipeline metrics
	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sibyl_analysis_total",
			Help: "Completed analysis requests by status",
		},
		[]string{"status"}, // status: success|degraded|error
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sibyl_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	AgentScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sibyl_agent_score",
			Help: "Most recent score emitted by each rule agent",
		},
		[]string{"agent"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sibyl_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)
)

// Register registers all collectors with the default registry
func Register() {
	prometheus.MustRegister(
		FetchRequests,
		FetchDuration,
		CacheOps,
		AnalysisTotal,
		AnalysisDuration,
		AgentScore,
		WorkerExecutions,
	)
}

// Handler returns the HTTP handler exposing the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
