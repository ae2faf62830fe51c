package metrics

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "infotools_"

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// makeCollector registers a collector at package init and returns it, so
// metric variables can be declared as one-liners.
func makeCollector[T prometheus.Collector](collector T) T {
	prometheus.MustRegister(collector)
	return collector
}
