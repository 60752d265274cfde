// Package engine implements the biological rest decision pipeline: feature
// extraction, rule-based risk scoring, diagnostic signals and impact estimates.
//
// Every function in this package is pure. Identical inputs always produce
// identical outputs and calls may run concurrently.
package engine

import (
	"cmp"
	"slices"
	"time"
)

// Sample is a validated field sample for one species and zone.
type Sample struct {
	SpeciesCode string    `json:"species_code"`
	AvgSizeCm   float64   `json:"avg_size_cm"`
	AvgWeightG  float64   `json:"avg_weight_g"`
	Count       int       `json:"count"`
	Zone        string    `json:"zone"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
}

// OceanInput carries the oceanographic values used by feature extraction.
// A nil Upwelling means the index was not measured.
type OceanInput struct {
	SST       float64
	Upwelling *float64
}

// DefaultUpwellingIndex is used when no upwelling measurement is supplied.
const DefaultUpwellingIndex = 0.5

// Feature names a field of the FeatureVector.
type Feature string

const (
	FeatureAvgSize           Feature = "avg_size_cm"
	FeatureAvgWeight         Feature = "avg_weight_g"
	FeatureSizeMaturityRatio Feature = "size_maturity_ratio"
	FeatureMonth             Feature = "month"
	FeatureMonthsToRepro     Feature = "months_to_repro"
	FeatureSSTCurrent        Feature = "sst_current"
	FeatureSSTSpawnDelta     Feature = "sst_spawn_delta"
	FeatureUpwellingIndex    Feature = "upwelling_index"
	FeatureCPUERecent        Feature = "cpue_recent"
	FeatureCPUETrend         Feature = "cpue_trend_2y_pct"
)

// FeatureVector is the fixed set of ten model inputs derived from one sample.
type FeatureVector struct {
	AvgSizeCm         float64 `json:"avg_size_cm"`
	AvgWeightG        float64 `json:"avg_weight_g"`
	SizeMaturityRatio float64 `json:"size_maturity_ratio"`
	Month             int     `json:"month"`
	MonthsToRepro     int     `json:"months_to_repro"`
	SSTCurrent        float64 `json:"sst_current"`
	SSTSpawnDelta     float64 `json:"sst_spawn_delta"`
	UpwellingIndex    float64 `json:"upwelling_index"`
	CPUERecent        float64 `json:"cpue_recent"`
	CPUETrend2yPct    float64 `json:"cpue_trend_2y_pct"`
}

// Value returns the named feature as a float64. Unknown names yield 0.
func (fv *FeatureVector) Value(f Feature) float64 {
	switch f {
	case FeatureAvgSize:
		return fv.AvgSizeCm
	case FeatureAvgWeight:
		return fv.AvgWeightG
	case FeatureSizeMaturityRatio:
		return fv.SizeMaturityRatio
	case FeatureMonth:
		return float64(fv.Month)
	case FeatureMonthsToRepro:
		return float64(fv.MonthsToRepro)
	case FeatureSSTCurrent:
		return fv.SSTCurrent
	case FeatureSSTSpawnDelta:
		return fv.SSTSpawnDelta
	case FeatureUpwellingIndex:
		return fv.UpwellingIndex
	case FeatureCPUERecent:
		return fv.CPUERecent
	case FeatureCPUETrend:
		return fv.CPUETrend2yPct
	default:
		return 0
	}
}

// Severity is the tier of a diagnostic signal.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityOK       Severity = "ok"
)

// Rank orders severities for display, critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Icon returns the traffic-light marker shown with a signal.
func (s Severity) Icon() string {
	switch s {
	case SeverityCritical:
		return "🔴"
	case SeverityWarning:
		return "🟠"
	default:
		return "🟢"
	}
}

// Domain groups signals by the kind of evidence they rest on.
type Domain string

const (
	DomainBiological    Domain = "biological"
	DomainOceanographic Domain = "oceanographic"
	DomainHalieutic     Domain = "halieutic"
)

// Signal is one labelled diagnostic for a tracked feature.
type Signal struct {
	Severity  Severity `json:"severity"`
	Domain    Domain   `json:"domain"`
	Icon      string   `json:"icon"`
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Score     int      `json:"score"`
	Feature   Feature  `json:"feature"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
}

// SortSignals returns a copy of signals ordered critical first. Order within a tier is kept.
func SortSignals(signals []Signal) []Signal {
	out := slices.Clone(signals)
	slices.SortStableFunc(out, func(a, b Signal) int {
		return cmp.Compare(a.Severity.Rank(), b.Severity.Rank())
	})
	return out
}

// CountBySeverity tallies signals per severity tier.
func CountBySeverity(signals []Signal) map[Severity]int {
	counts := map[Severity]int{SeverityCritical: 0, SeverityWarning: 0, SeverityOK: 0}
	for i := range signals {
		counts[signals[i].Severity]++
	}
	return counts
}

// Urgency is the recommended timeline for acting on a prediction.
type Urgency string

const (
	UrgencyImmediate    Urgency = "immediat"
	UrgencyWithin15Days Urgency = "sous_15j"
	UrgencySurveillance Urgency = "surveillance"
	UrgencyNormal       Urgency = "normal"
)

// PredictionResult is the decision derived from a feature vector.
type PredictionResult struct {
	Classification bool     `json:"classification"`
	RiskScore      int      `json:"risk_score"`
	Confidence     int      `json:"confidence"`
	Urgency        Urgency  `json:"urgency"`
	Signals        []Signal `json:"signals"`
}

// ImpactEstimate is the socio-economic cost and expected benefit of a rest period.
// It is only meaningful when the prediction recommends a rest.
type ImpactEstimate struct {
	DurationDays    int     `json:"duration_days"`
	TonnesForegone  float64 `json:"tonnes_foregone"`
	ValueMillions   float64 `json:"value_millions_mad"`
	WorkersAffected int     `json:"workers_affected"`
	BiomassGain     string  `json:"biomass_gain"`
}
