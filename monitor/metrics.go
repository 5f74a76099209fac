// Package monitor exposes the gateway's Prometheus metrics: dispatch
// attempt/outcome counters and per-model quota gauges.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchAttempts counts every per-candidate attempt, labeled by
	// vendor and outcome ("success", "upstream_http_error", "empty_response",
	// "transport_error").
	DispatchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmgateway_dispatch_attempts_total",
		Help: "Total dispatch attempts per vendor and outcome.",
	}, []string{"vendor", "outcome"})

	// DispatchRequests counts terminal dispatch outcomes at the boundary,
	// labeled by result ("success", "all_upstreams_failed", "no_available_model").
	DispatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmgateway_dispatch_requests_total",
		Help: "Total inbound chat completion requests by terminal result.",
	}, []string{"result"})

	// QuotaUsedRatio reports the latest used_ratio per model, refreshed on
	// every quota increment.
	QuotaUsedRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "llmgateway_model_quota_used_ratio",
		Help: "Latest used_ratio (0-100+) per model id.",
	}, []string{"model_id"})

	// ConnectStatus reports the latest probe result per model, 1 reachable,
	// 0 not.
	ConnectStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "llmgateway_model_connect_status",
		Help: "Latest connectivity probe result per model id (1 reachable, 0 not).",
	}, []string{"model_id"})
)
