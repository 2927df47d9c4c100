package mcp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks tool calls.
//
// Labels:
//   - tool: the tool name
//   - status: success|error
type Metrics struct {
	// ToolCalls counts finished tool calls.
	ToolCalls *prometheus.CounterVec

	// ToolDuration measures tool call latency in seconds.
	ToolDuration *prometheus.HistogramVec
}

// NewMetrics registers the tool metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "system_mcp_tool_calls_total",
				Help: "Total number of tool calls by tool and status",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "system_mcp_tool_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"tool"},
		),
	}
}

// Observe records one call of tool.
func (m *Metrics) Observe(tool string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}
