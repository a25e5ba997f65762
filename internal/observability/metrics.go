package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion and report loops.
type Metrics struct {
	PassesCompleted    prometheus.Counter
	PassDuration       prometheus.Histogram
	LocationsChanged   prometheus.Counter
	LocationsUnchanged prometheus.Counter
	RecordsWritten     *prometheus.CounterVec // label: table={hourly,daily,warnings}

	FetchAttempts prometheus.Counter
	FetchRetries  prometheus.Counter

	IngestRunning prometheus.Gauge
	ReportsSent   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PassesCompleted,
		m.PassDuration,
		m.LocationsChanged,
		m.LocationsUnchanged,
		m.RecordsWritten,
		m.FetchAttempts,
		m.FetchRetries,
		m.IngestRunning,
		m.ReportsSent,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PassesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "passes_completed_total",
			Help:      "Total completed ingestion passes across all locations.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weatherwatch",
			Name:      "pass_duration_seconds",
			Help:      "Wall-clock duration of one full ingestion pass.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LocationsChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "locations_changed_total",
			Help:      "Location fetches whose watermark changed and triggered extraction.",
		}),
		LocationsUnchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "locations_unchanged_total",
			Help:      "Location fetches skipped because the watermark was unchanged.",
		}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "records_written_total",
			Help:      "Records written to the store by table.",
		}, []string{"table"}),
		FetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "fetch_attempts_total",
			Help:      "HTTP fetch attempts, including retries.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "fetch_retries_total",
			Help:      "Fetch attempts beyond the first for a location.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weatherwatch",
			Name:      "ingest_running",
			Help:      "1 while the ingestion loop is active, 0 once stopped.",
		}),
		ReportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "reports_sent_total",
			Help:      "Weather report emails delivered.",
		}),
	}
}
