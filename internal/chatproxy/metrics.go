package chatproxy

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for assistantRequestsTotal.
const (
	outcomeSuccess        = "success"
	outcomeUpstreamError  = "upstream_error"
	outcomeTransportError = "transport_error"
	outcomeTimeout        = "timeout"
	outcomeMalformed      = "malformed_response"
	outcomeConfigError    = "config_error"
	outcomeInvalidRequest = "invalid_request"
)

var (
	assistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "govify",
			Name:      "assistant_requests_total",
			Help:      "Chat proxy requests by outcome.",
		},
		[]string{"outcome"},
	)
	assistantRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "govify",
			Name:      "assistant_request_duration_seconds",
			Help:      "Latency of calls to the assistant service.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
	)
)

func init() {
	prometheus.MustRegister(assistantRequestsTotal)
	prometheus.MustRegister(assistantRequestDuration)
}
