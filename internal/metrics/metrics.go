// Package metrics exposes Prometheus collectors for governance observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GovernanceRunsTotal counts completed governance cycles.
	GovernanceRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "governance_runs_total",
		Help: "Number of governance cycles executed.",
	})

	// FlaggedChannelsTotal counts channels per classification outcome.
	FlaggedChannelsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_flagged_channels_total",
		Help: "Channels flagged per governance cycle, by status.",
	}, []string{"status"})

	// SourceFailuresTotal counts swallowed trend-source failures.
	SourceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trend_source_failures_total",
		Help: "Trend source failures folded into zero contributions, by source.",
	}, []string{"source"})

	// ToolHealthStatus is 1 when the tool's last probe was ok, 0 otherwise.
	ToolHealthStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tool_health_status",
		Help: "Last tool probe status (1 ok, 0 error).",
	}, []string{"tool"})

	// ToolLatencyMS records the last probe latency per tool.
	ToolLatencyMS = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tool_latency_ms",
		Help: "Last tool probe latency in milliseconds.",
	}, []string{"tool"})
)
