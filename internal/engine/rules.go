package engine

import (
	"slices"

	"github.com/bahria/bahria-go/internal/species"
)

// Bracket is one band of a rule. A value falls in the band when it is below
// Limit, or at most Limit when Inclusive is set.
type Bracket struct {
	Limit     float64
	Inclusive bool
	Severity  Severity
	Points    int
}

func (b Bracket) matches(v float64) bool {
	if b.Inclusive {
		return v <= b.Limit
	}
	return v < b.Limit
}

// Rule maps a feature value to the first matching bracket. A value that
// matches no bracket is ok and scores nothing.
type Rule struct {
	Feature  Feature
	Brackets []Bracket
}

var okBracket = Bracket{Severity: SeverityOK}

// Evaluate returns the bracket v falls in.
func (r Rule) Evaluate(v float64) Bracket {
	for _, b := range r.Brackets {
		if b.matches(v) {
			return b
		}
	}
	return okBracket
}

// Rules shared by the risk scorer and the signal generator.
var (
	sizeRatioRule = Rule{
		Feature: FeatureSizeMaturityRatio,
		Brackets: []Bracket{
			{Limit: 0.85, Severity: SeverityCritical, Points: 35},
			{Limit: 1.0, Severity: SeverityWarning, Points: 20},
			{Limit: 1.2, Severity: SeverityWarning, Points: 10},
		},
	}

	monthsToReproRule = Rule{
		Feature: FeatureMonthsToRepro,
		Brackets: []Bracket{
			{Limit: 0, Inclusive: true, Severity: SeverityCritical, Points: 25},
			{Limit: 1, Inclusive: true, Severity: SeverityWarning, Points: 15},
			{Limit: 2, Inclusive: true, Severity: SeverityWarning, Points: 5},
		},
	}

	sstDeltaRule = Rule{
		Feature: FeatureSSTSpawnDelta,
		Brackets: []Bracket{
			{Limit: 1.5, Severity: SeverityCritical, Points: 20},
			{Limit: 3.0, Severity: SeverityWarning, Points: 10},
		},
	}

	cpueTrendRule = Rule{
		Feature: FeatureCPUETrend,
		Brackets: []Bracket{
			{Limit: -25, Severity: SeverityCritical, Points: 15},
			{Limit: -10, Severity: SeverityWarning, Points: 5},
		},
	}

	// Scorer only. The upwelling signal grades the index on its own 0.2/0.4 bands.
	upwellingScoreRule = Rule{
		Feature: FeatureUpwellingIndex,
		Brackets: []Bracket{
			{Limit: 0.3, Severity: SeverityWarning, Points: 5},
		},
	}

	scoringRules = []Rule{sizeRatioRule, monthsToReproRule, sstDeltaRule, cpueTrendRule, upwellingScoreRule}
)

// Signal-only rules. Their comparison basis differs from any scoring rule.
var (
	upwellingSignalRule = Rule{
		Feature: FeatureUpwellingIndex,
		Brackets: []Bracket{
			{Limit: 0.2, Severity: SeverityCritical, Points: 5},
			{Limit: 0.4, Severity: SeverityWarning, Points: 3},
		},
	}

	// Two tiers only; monthsToReproRule adds the 2-month band.
	spawningProximityRule = Rule{
		Feature: FeatureMonth,
		Brackets: []Bracket{
			{Limit: 0, Inclusive: true, Severity: SeverityCritical, Points: 25},
			{Limit: 1, Inclusive: true, Severity: SeverityWarning, Points: 15},
		},
	}
)

func sizeRule(p *species.Profile) Rule {
	return Rule{
		Feature: FeatureAvgSize,
		Brackets: []Bracket{
			{Limit: p.L50Cm, Severity: SeverityCritical, Points: 35},
			{Limit: p.OptimalSizeCm, Severity: SeverityWarning, Points: 20},
		},
	}
}

func weightRule(p *species.Profile) Rule {
	return Rule{
		Feature: FeatureAvgWeight,
		Brackets: []Bracket{
			{Limit: p.MaturityWeightG, Severity: SeverityCritical, Points: 35},
			{Limit: p.OptimalWeightG, Severity: SeverityWarning, Points: 20},
		},
	}
}

// cpueLevelRule compares recent CPUE with fractions of the baseline year,
// unlike the scorer which looks at the 2-year trend.
func cpueLevelRule(p *species.Profile) Rule {
	return Rule{
		Feature: FeatureCPUERecent,
		Brackets: []Bracket{
			{Limit: p.CPUEPrior * 0.5, Severity: SeverityCritical, Points: 15},
			{Limit: p.CPUEPrior * 0.75, Severity: SeverityWarning, Points: 10},
		},
	}
}

// ScoringRules returns a copy of the rules summed by RiskScore.
func ScoringRules() []Rule {
	out := make([]Rule, len(scoringRules))
	for i, r := range scoringRules {
		out[i] = Rule{Feature: r.Feature, Brackets: slices.Clone(r.Brackets)}
	}
	return out
}
