package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opScore             = "score"
	opOpportunityReport = "opportunity_report"
	opSectorReport      = "sector_report"
	opPainPoints        = "pain_points"
	opTrendAnalysis     = "trend_analysis"
)

var (
	reasoningCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govidea_reasoning_calls_total",
		Help: "Reasoning service calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	reasoningDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "govidea_reasoning_call_duration_seconds",
		Help:    "Latency of reasoning service calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"operation"})
)

func observeOutcome(op string, kind outcomeKind) {
	reasoningCalls.WithLabelValues(op, kind.String()).Inc()
}

func observeDuration(op string, d time.Duration) {
	reasoningDuration.WithLabelValues(op).Observe(d.Seconds())
}
