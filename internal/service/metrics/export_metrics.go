package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ExportLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signalpull",
			Subsystem: "export",
			Name:      "latency_seconds",
			Help:      "Latency of export endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ExportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalpull",
			Subsystem: "export",
			Name:      "errors_total",
			Help:      "Errors by export endpoint",
		},
		[]string{"endpoint"},
	)

	ExportCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalpull",
			Subsystem: "export",
			Name:      "cache_hits_total",
			Help:      "Cache hits by export endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ExportLatency, ExportErrors, ExportCacheHits)
	})
}
