package analysis

import (
	"time"

	"github.com/bahria/bahria-go/internal/advisor"
	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/species"
)

// Report is the full outcome of one sample analysis.
type Report struct {
	ID             string                  `json:"id"`
	CreatedAt      time.Time               `json:"created_at"`
	Sample         engine.Sample           `json:"sample"`
	Species        species.Profile         `json:"species"`
	Ocean          ocean.Snapshot          `json:"ocean"`
	Features       engine.FeatureVector    `json:"features"`
	Prediction     engine.PredictionResult `json:"prediction"`
	Impact         *engine.ImpactEstimate  `json:"impact,omitempty"` // set only when a rest is recommended
	Recommendation advisor.Recommendation  `json:"recommendation"`
	SignalCounts   map[engine.Severity]int `json:"signal_counts"`
	DurationMs     float64                 `json:"duration_ms"`
}

// SortedSignals returns the signals critical first, keeping generation order within a tier.
func (r *Report) SortedSignals() []engine.Signal {
	return engine.SortSignals(r.Prediction.Signals)
}

// RestRecommended reports whether the analysis recommends a biological rest.
func (r *Report) RestRecommended() bool {
	return r.Prediction.Classification
}
