// Package telemetry exposes Prometheus metrics for a mining run. The teacher
// only consumed Prometheus as a query client; this package uses the same
// github.com/prometheus/client_golang module on its producer side,
// registering and serving the mining core's own metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters/gauges exported for a minecity run.
type Metrics struct {
	registry *prometheus.Registry

	SamplesMined     prometheus.Counter
	SamplesTotal     prometheus.Gauge
	MiningRate       prometheus.Gauge
	ActiveWorkers    prometheus.Gauge
	BestScore        prometheus.Gauge
	CheckpointWrites prometheus.Counter
	MineDuration     prometheus.Histogram
}

// New creates and registers a fresh metrics set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		SamplesMined: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "minecity",
			Name:      "samples_mined_total",
			Help:      "Total number of seed samples mined.",
		}),
		SamplesTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "minecity",
			Name:      "samples_total",
			Help:      "Total number of seed samples requested for the current run.",
		}),
		MiningRate: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "minecity",
			Name:      "mining_rate_samples_per_sec",
			Help:      "Observed mining throughput in samples per second.",
		}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "minecity",
			Name:      "active_workers",
			Help:      "Number of worker goroutines currently mining.",
		}),
		BestScore: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "minecity",
			Name:      "best_score",
			Help:      "Best objective score observed so far in the current run.",
		}),
		CheckpointWrites: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "minecity",
			Name:      "checkpoint_writes_total",
			Help:      "Total number of checkpoint records appended to disk.",
		}),
		MineDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "minecity",
			Name:      "mine_one_duration_seconds",
			Help:      "Wall-clock duration of a single MineOneSeed call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	return m
}

// Handler returns an http.Handler serving this metrics set at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics at addr. It blocks until the
// server stops or errors; callers typically run it in its own goroutine.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
