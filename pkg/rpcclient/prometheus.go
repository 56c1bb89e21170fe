package rpcclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of RPC requests made by the client",
			Name:      "rpc_client_requests_total",
			Namespace: "domath",
		},
		[]string{"method", "status"},
	)
	rpcTimes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "RPC request round trip time",
			Name:      "rpc_client_request_time",
			Namespace: "domath",
		},
		[]string{"method"},
	)
)

func addReqMetric(method string, t time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	rpcRequests.WithLabelValues(method, status).Inc()
	rpcTimes.WithLabelValues(method).Observe(t.Seconds())
}

func init() {
	prometheus.MustRegister(
		rpcRequests,
		rpcTimes,
	)
}
