package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "capm",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of analysis API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "capm",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by analysis API endpoint and code",
		},
		[]string{"endpoint", "code"},
	)

	Throttled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "capm",
			Subsystem: "api",
			Name:      "throttled_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, Throttled)
	})
}
