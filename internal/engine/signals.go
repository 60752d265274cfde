package engine

import (
	"fmt"
	"math"

	"github.com/bahria/bahria-go/internal/species"
)

// SignalCount is the number of signals GenerateSignals always returns.
const SignalCount = 10

// signalSpec binds a rule to the value it grades and to the text shown for each tier.
type signalSpec struct {
	feature   Feature
	domain    Domain
	title     string
	rule      Rule
	input     float64
	value     float64
	threshold float64
	message   func(Severity) string
}

func (s *signalSpec) build() Signal {
	b := s.rule.Evaluate(s.input)
	return Signal{
		Severity:  b.Severity,
		Domain:    s.domain,
		Icon:      b.Severity.Icon(),
		Title:     s.title,
		Message:   s.message(b.Severity),
		Score:     b.Points,
		Feature:   s.feature,
		Value:     s.value,
		Threshold: s.threshold,
	}
}

func bySeverity(sev Severity, critical, warning, ok string) string {
	switch sev {
	case SeverityCritical:
		return critical
	case SeverityWarning:
		return warning
	default:
		return ok
	}
}

// GenerateSignals grades each tracked feature on its own thresholds and returns
// exactly SignalCount signals in a fixed order.
func GenerateSignals(fv FeatureVector, profile species.Profile) []Signal {
	p := &profile

	// Both recomputed from the raw inputs rather than read from fv.
	monthsToRepro := MonthsToRepro(fv.Month, p.SpawningMonths)
	sstGap := math.Abs(fv.SSTCurrent - p.SpawnSSTThreshold)

	ratioCritical := sizeRatioRule.Brackets[0].Limit
	ratioOptimal := sizeRatioRule.Brackets[len(sizeRatioRule.Brackets)-1].Limit
	trendCritical := cpueTrendRule.Brackets[0].Limit
	trendWarning := cpueTrendRule.Brackets[1].Limit

	specs := []signalSpec{
		{
			feature: FeatureAvgSize, domain: DomainBiological, title: "Average size",
			rule: sizeRule(p), input: fv.AvgSizeCm, value: fv.AvgSizeCm, threshold: p.L50Cm,
			message: func(sev Severity) string {
				return fmt.Sprintf("Average size (%.1f cm) %s", fv.AvgSizeCm, bySeverity(sev,
					fmt.Sprintf("below maturity length L50 (%g cm)", p.L50Cm),
					fmt.Sprintf("below optimal size (%g cm)", p.OptimalSizeCm),
					fmt.Sprintf("compliant (≥ %g cm)", p.OptimalSizeCm)))
			},
		},
		{
			feature: FeatureAvgWeight, domain: DomainBiological, title: "Average weight",
			rule: weightRule(p), input: fv.AvgWeightG, value: fv.AvgWeightG, threshold: p.MaturityWeightG,
			message: func(sev Severity) string {
				return fmt.Sprintf("Average weight (%.0f g) %s", fv.AvgWeightG, bySeverity(sev,
					fmt.Sprintf("below maturity weight (%g g)", p.MaturityWeightG),
					fmt.Sprintf("below optimal weight (%g g)", p.OptimalWeightG),
					fmt.Sprintf("compliant (≥ %g g)", p.OptimalWeightG)))
			},
		},
		{
			feature: FeatureSizeMaturityRatio, domain: DomainBiological, title: "Size/maturity ratio",
			rule: sizeRatioRule, input: fv.SizeMaturityRatio, value: fv.SizeMaturityRatio, threshold: 1.0,
			message: func(sev Severity) string {
				return fmt.Sprintf("Size/maturity ratio (%.2f) %s", fv.SizeMaturityRatio, bySeverity(sev,
					fmt.Sprintf("very low (< %g)", ratioCritical),
					fmt.Sprintf("below optimal threshold (< %g)", ratioOptimal),
					fmt.Sprintf("optimal (≥ %g)", ratioOptimal)))
			},
		},
		{
			feature: FeatureMonth, domain: DomainBiological, title: "Spawning period",
			rule: spawningProximityRule, input: float64(monthsToRepro), value: float64(fv.Month), threshold: float64(monthsToRepro),
			message: func(sev Severity) string {
				return bySeverity(sev,
					"Active spawning period",
					fmt.Sprintf("Close to spawning period (%d month)", monthsToRepro),
					fmt.Sprintf("Outside spawning period (%d months)", monthsToRepro))
			},
		},
		{
			feature: FeatureSSTCurrent, domain: DomainOceanographic, title: "Sea surface temperature (SST)",
			rule: sstDeltaRule, input: sstGap, value: fv.SSTCurrent, threshold: p.SpawnSSTThreshold,
			message: func(sev Severity) string {
				return fmt.Sprintf("Current SST (%.1f°C) %s", fv.SSTCurrent, bySeverity(sev,
					fmt.Sprintf("in spawning range (threshold %g°C)", p.SpawnSSTThreshold),
					fmt.Sprintf("close to spawning threshold (%g°C)", p.SpawnSSTThreshold),
					fmt.Sprintf("far from spawning threshold (%g°C)", p.SpawnSSTThreshold)))
			},
		},
		{
			feature: FeatureSSTSpawnDelta, domain: DomainOceanographic, title: "SST gap to spawning threshold",
			rule: sstDeltaRule, input: fv.SSTSpawnDelta, value: fv.SSTSpawnDelta, threshold: sstDeltaRule.Brackets[0].Limit,
			message: func(sev Severity) string {
				return fmt.Sprintf("SST gap (%.1f°C) %s", fv.SSTSpawnDelta, bySeverity(sev,
					"very small, spawning conditions met",
					"moderate, conditions favour spawning",
					"large, conditions unfavourable"))
			},
		},
		{
			feature: FeatureUpwellingIndex, domain: DomainOceanographic, title: "Upwelling index",
			rule: upwellingSignalRule, input: fv.UpwellingIndex, value: fv.UpwellingIndex, threshold: upwellingSignalRule.Brackets[1].Limit,
			message: func(sev Severity) string {
				return fmt.Sprintf("Upwelling index (%.2f) %s", fv.UpwellingIndex, bySeverity(sev,
					"very weak, reduced productivity",
					"moderate, average productivity",
					"good, high productivity"))
			},
		},
		{
			feature: FeatureCPUERecent, domain: DomainHalieutic, title: "Recent CPUE",
			rule: cpueLevelRule(p), input: fv.CPUERecent, value: fv.CPUERecent, threshold: p.CPUEPrior * 0.5,
			message: func(sev Severity) string {
				return fmt.Sprintf("CPUE 2025 (%g kg/trip) %s", fv.CPUERecent, bySeverity(sev,
					fmt.Sprintf("critical (< 50%% of 2023: %g)", p.CPUEPrior),
					fmt.Sprintf("declining (< 75%% of 2023: %g)", p.CPUEPrior),
					fmt.Sprintf("stable (≥ 75%% of 2023: %g)", p.CPUEPrior)))
			},
		},
		{
			feature: FeatureCPUETrend, domain: DomainHalieutic, title: "CPUE trend (2 years)",
			rule: cpueTrendRule, input: fv.CPUETrend2yPct, value: fv.CPUETrend2yPct, threshold: trendCritical,
			message: func(sev Severity) string {
				return fmt.Sprintf("CPUE trend (%g%%) %s", fv.CPUETrend2yPct, bySeverity(sev,
					fmt.Sprintf("sharp decline (< %g%%)", trendCritical),
					fmt.Sprintf("moderate decline (< %g%%)", trendWarning),
					"stable or rising"))
			},
		},
		{
			feature: FeatureMonthsToRepro, domain: DomainBiological, title: "Distance to spawning",
			rule: monthsToReproRule, input: float64(fv.MonthsToRepro), value: float64(fv.MonthsToRepro), threshold: 0,
			message: func(Severity) string {
				if fv.MonthsToRepro == 0 {
					return "Within active spawning period"
				}
				return fmt.Sprintf("%d month(s) before/after spawning (%s)", fv.MonthsToRepro, p.PeakSpawn)
			},
		},
	}

	signals := make([]Signal, 0, SignalCount)
	for i := range specs {
		signals = append(signals, specs[i].build())
	}
	return signals
}
