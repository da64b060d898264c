package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runs          *prometheus.HistogramVec
	guardOutcomes *prometheus.CounterVec
	signals       *prometheus.CounterVec
	vendorFetch   *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runs: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalpull_run_duration_seconds",
				Help:    "Duration of pipeline runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"outcome"},
		),
		guardOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpull_guard_outcomes_total",
				Help: "Price guard verdicts by asset class, status and reason",
			},
			[]string{"asset", "status", "reason"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpull_signals_total",
				Help: "Emitted signal levels",
			},
			[]string{"level"},
		),
		vendorFetch: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalpull_vendor_fetch_duration_seconds",
				Help:    "Vendor fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"vendor", "result"},
		),
	}
}

// RecordRun records one pipeline run with its outcome.
func (r *Recorder) RecordRun(outcome string, seconds float64) {
	r.runs.WithLabelValues(outcome).Observe(seconds)
}

// RecordGuardOutcome records a price guard verdict.
func (r *Recorder) RecordGuardOutcome(asset, status, reason string) {
	r.guardOutcomes.WithLabelValues(asset, status, reason).Inc()
}

// RecordSignal records one emitted signal level.
func (r *Recorder) RecordSignal(level string) {
	r.signals.WithLabelValues(level).Inc()
}

// RecordVendorFetch records a vendor fetch with its latency.
func (r *Recorder) RecordVendorFetch(vendor string, ok bool, seconds float64) {
	result := "ok"
	if !ok {
		result = "empty"
	}
	r.vendorFetch.WithLabelValues(vendor, result).Observe(seconds)
}
