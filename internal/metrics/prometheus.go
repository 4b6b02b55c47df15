package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	PipelineOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_pipeline_outcomes_total",
			Help: "Pipeline item outcomes by source",
		},
		[]string{"source", "outcome"}, // outcome: inserted|skipped|duplicate|error
	)

	// Adapter metrics
	AdapterFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_adapter_fetch_errors_total",
			Help: "Total adapter fetch failures",
		},
		[]string{"source"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickerpulse_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	// Aggregation metrics
	AggregationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_aggregation_runs_total",
			Help: "Total hourly aggregation runs",
		},
		[]string{"status"}, // status: success|error
	)
)

func init() {
	prometheus.MustRegister(
		PipelineOutcomes,
		AdapterFetchErrors,
		WorkerExecutions,
		WorkerDuration,
		AggregationRuns,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
