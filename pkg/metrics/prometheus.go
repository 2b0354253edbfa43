package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "capm"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses       *prometheus.CounterVec
	indicatorSkips *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	sentiment      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg. Passing nil leaves it unregistered.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "analyses_total", Help: "Component analyses by outcome"},
			[]string{"component", "outcome"},
		),
		indicatorSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "indicator_skips_total", Help: "Indicators skipped for lack of usable data"},
			[]string{"indicator", "reason"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "errors_total", Help: "Total number of errors encountered"},
			[]string{"type"},
		),
		sentiment: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "sentiment_score", Help: "Latest final sentiment score per asset"},
			[]string{"asset", "kind"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "operation_duration_seconds", Help: "Duration of operations in seconds", Buckets: prometheus.DefBuckets},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.analyses, r.indicatorSkips, r.errorsTotal, r.sentiment, r.latency)
	}
	return r
}

func (r *Recorder) RecordAnalysis(component, outcome string) {
	r.analyses.WithLabelValues(component, outcome).Inc()
}

func (r *Recorder) RecordIndicatorSkip(indicator, reason string) {
	r.indicatorSkips.WithLabelValues(indicator, reason).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordSentimentScore(asset, kind string, score float64) {
	r.sentiment.WithLabelValues(asset, kind).Set(score)
}

func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}
