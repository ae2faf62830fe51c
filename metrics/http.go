package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var httpRequestsTotal = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "http_requests_count",
	Help: "Total number of HTTP requests handled",
}, []string{"method", "path", "status"}))

var httpRequestLatency = makeCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    metricPrefix + "http_request_duration_seconds",
	Help:    "Histogram of HTTP request durations in seconds",
	Buckets: defaultBuckets,
}, []string{"method", "path"}))

// RecordHTTPRequest records a handled HTTP request
func RecordHTTPRequest(method, path string, status int, durationSec float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestLatency.WithLabelValues(method, path).Observe(durationSec)
}
