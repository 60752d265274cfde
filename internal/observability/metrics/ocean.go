// Package metrics provides sea surface temperature provider metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OceanMetrics contains Prometheus metrics for SST provider operations
type OceanMetrics struct {
	registry *prometheus.Registry

	fetchesTotal      *prometheus.CounterVec
	fetchErrorsTotal  *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	snapshotsTotal    *prometheus.CounterVec
	sstGauge          prometheus.Gauge
	lastLiveTimestamp prometheus.Gauge
}

// NewOceanMetrics creates and registers new SST provider metrics
func NewOceanMetrics(registry *prometheus.Registry) (*OceanMetrics, error) {
	m := &OceanMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *OceanMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_ocean_fetches_total",
			Help: "Total number of SST fetch attempts",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	m.fetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_ocean_fetch_errors_total",
			Help: "Total number of SST fetch errors",
		},
		[]string{"provider", "error_type"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bahria_ocean_fetch_duration_seconds",
			Help: "Time taken by a single SST fetch attempt",
			// 100ms to ~50s, the per-attempt timeout sits well inside this range
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"provider"},
	)

	m.snapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_ocean_snapshots_total",
			Help: "Total number of SST snapshots served, by origin",
		},
		[]string{"origin"}, // origin: live, retried, cached, fallback
	)

	m.sstGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bahria_ocean_sst_celsius",
		Help: "Most recent sea surface temperature served in Celsius",
	})

	m.lastLiveTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bahria_ocean_last_live_timestamp_seconds",
		Help: "Unix time of the last live SST reading",
	})
}

// RecordFetch records the outcome and duration of one provider attempt
func (m *OceanMetrics) RecordFetch(provider string, err error, seconds float64) {
	status := LabelSuccess
	if err != nil {
		status = LabelError
	}
	m.fetchesTotal.WithLabelValues(provider, status).Inc()
	m.fetchDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordFetchError records a categorized provider error
func (m *OceanMetrics) RecordFetchError(provider, errorType string) {
	m.fetchErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// RecordSnapshot records a served snapshot and its temperature
func (m *OceanMetrics) RecordSnapshot(origin string, sst float64) {
	m.snapshotsTotal.WithLabelValues(origin).Inc()
	m.sstGauge.Set(sst)
	if origin == LabelLive || origin == LabelRetried {
		m.lastLiveTimestamp.SetToCurrentTime()
	}
}

// Describe implements the Collector interface
func (m *OceanMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchErrorsTotal.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.snapshotsTotal.Describe(ch)
	m.sstGauge.Describe(ch)
	m.lastLiveTimestamp.Describe(ch)
}

// Collect implements the Collector interface
func (m *OceanMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchErrorsTotal.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.snapshotsTotal.Collect(ch)
	m.sstGauge.Collect(ch)
	m.lastLiveTimestamp.Collect(ch)
}
