// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_brain_external_calls_total",
			Help: "Calls to external services by outcome",
		},
		[]string{"service", "outcome"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "company_brain_external_call_duration_seconds",
			Help:    "Duration of external service calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"service"},
	)

	FlowRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_brain_flow_runs_total",
			Help: "Analysis flow runs by outcome",
		},
		[]string{"flow", "outcome"},
	)
)

// ObserveCall records one external call that started at start.
func ObserveCall(service string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalCalls.WithLabelValues(service, outcome).Inc()
	ExternalCallDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// ObserveFlow records the outcome of one flow run.
func ObserveFlow(flow, outcome string) {
	FlowRuns.WithLabelValues(flow, outcome).Inc()
}
