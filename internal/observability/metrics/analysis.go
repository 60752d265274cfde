// Package metrics provides analysis pipeline metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics contains Prometheus metrics for sample analyses
type AnalysisMetrics struct {
	registry *prometheus.Registry

	analysesTotal        *prometheus.CounterVec
	rejectedTotal        *prometheus.CounterVec
	riskScore            *prometheus.HistogramVec
	signalsTotal         *prometheus.CounterVec
	analysisDuration     prometheus.Histogram
	recommendationsTotal *prometheus.CounterVec
}

// NewAnalysisMetrics creates and registers new analysis metrics
func NewAnalysisMetrics(registry *prometheus.Registry) (*AnalysisMetrics, error) {
	m := &AnalysisMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AnalysisMetrics) initMetrics() {
	m.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_analyses_total",
			Help: "Total number of completed sample analyses",
		},
		[]string{"species", "urgency"},
	)

	m.rejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_analyses_rejected_total",
			Help: "Total number of samples rejected before analysis",
		},
		[]string{"reason"}, // reason: validation, not_found
	)

	m.riskScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bahria_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: prometheus.LinearBuckets(RiskBucketStart, RiskBucketWidth, RiskBucketCount),
		},
		[]string{"species"},
	)

	m.signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_signals_total",
			Help: "Total number of explanatory signals emitted",
		},
		[]string{"domain", "severity"},
	)

	m.analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bahria_analysis_duration_seconds",
		Help:    "End to end analysis time including ocean data and recommendation",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
	})

	m.recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bahria_recommendations_total",
			Help: "Total number of recommendation texts produced, by source",
		},
		[]string{"source"},
	)
}

// RecordAnalysis records a completed analysis
func (m *AnalysisMetrics) RecordAnalysis(species, urgency string, score int, seconds float64) {
	m.analysesTotal.WithLabelValues(species, urgency).Inc()
	m.riskScore.WithLabelValues(species).Observe(float64(score))
	m.analysisDuration.Observe(seconds)
}

// RecordRejected records a sample rejected before analysis
func (m *AnalysisMetrics) RecordRejected(reason string) {
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

// RecordSignal records one emitted signal
func (m *AnalysisMetrics) RecordSignal(domain, severity string) {
	m.signalsTotal.WithLabelValues(domain, severity).Inc()
}

// RecordRecommendation records which generator produced the recommendation text
func (m *AnalysisMetrics) RecordRecommendation(source string) {
	m.recommendationsTotal.WithLabelValues(source).Inc()
}

// Describe implements the Collector interface
func (m *AnalysisMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.analysesTotal.Describe(ch)
	m.rejectedTotal.Describe(ch)
	m.riskScore.Describe(ch)
	m.signalsTotal.Describe(ch)
	m.analysisDuration.Describe(ch)
	m.recommendationsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *AnalysisMetrics) Collect(ch chan<- prometheus.Metric) {
	m.analysesTotal.Collect(ch)
	m.rejectedTotal.Collect(ch)
	m.riskScore.Collect(ch)
	m.signalsTotal.Collect(ch)
	m.analysisDuration.Collect(ch)
	m.recommendationsTotal.Collect(ch)
}
