package upstream

import "github.com/prometheus/client_golang/prometheus"

var (
	upstreamReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_requests_total", Help: "Calls to the water-analysis service"},
		[]string{"op", "outcome"},
	)
	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of calls to the water-analysis service",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"},
	)
)

func init() { prometheus.MustRegister(upstreamReqTotal, upstreamLatency) }
