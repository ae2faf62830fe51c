package metrics

import "github.com/prometheus/client_golang/prometheus"

var toolCalls = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "tool_calls_count",
	Help: "Total number of tool calls made",
}, []string{"tool", "status"}))

var toolLatency = makeCollector(prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: metricPrefix + "tool_latest_latency_seconds",
	Help: "Latest latency of tool calls in seconds",
}, []string{"tool"}))

var toolLatencyHistogram = makeCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    metricPrefix + "tool_latency_seconds",
	Help:    "Histogram of tool call latencies in seconds",
	Buckets: defaultBuckets,
}, []string{"tool"}))

var geoLookups = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "geo_lookups_count",
	Help: "Total number of IP geolocation provider lookups made",
}, []string{"provider", "status"}))

// RecordToolCall records a tool call being made
func RecordToolCall(tool string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	toolCalls.WithLabelValues(tool, status).Inc()
}

// RecordToolLatency records the latency of a tool call
func RecordToolLatency(tool string, latencySec float64) {
	if latencySec > 0 {
		toolLatency.WithLabelValues(tool).Set(latencySec)
		toolLatencyHistogram.WithLabelValues(tool).Observe(latencySec)
	}
}

// RecordGeoLookup records an IP geolocation lookup against one provider
func RecordGeoLookup(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	geoLookups.WithLabelValues(provider, status).Inc()
}

// InitializeTool initializes the tool metrics to zero
func InitializeTool(tool string) {
	toolCalls.WithLabelValues(tool, "success")
	toolCalls.WithLabelValues(tool, "failure")
	toolLatency.WithLabelValues(tool)
	toolLatencyHistogram.WithLabelValues(tool)
}
