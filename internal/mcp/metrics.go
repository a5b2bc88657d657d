package mcp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "statuswatch"

var (
	// toolCallsTotal counts tool invocations by tool name and outcome.
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total number of tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	// toolCallDuration tracks tool invocation latency.
	toolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "call_duration_seconds",
			Help:      "Tool invocation duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"},
	)
)

// Invocation outcomes recorded on toolCallsTotal.
const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeInvalid = "invalid"
)
