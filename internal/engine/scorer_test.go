package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskScoreNeutral(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, RiskScore(neutralFeatures()))
}

func TestRiskScoreMaximum(t *testing.T) {
	t.Parallel()

	fv := FeatureVector{
		SizeMaturityRatio: 0.5,
		MonthsToRepro:     0,
		SSTSpawnDelta:     0,
		CPUETrend2yPct:    -60,
		UpwellingIndex:    0,
	}
	assert.Equal(t, MaxRiskScore, RiskScore(fv))
}

func TestRiskScoreBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*FeatureVector)
		want   int
	}{
		{"ratio below 0.85", func(fv *FeatureVector) { fv.SizeMaturityRatio = 0.84 }, 35},
		{"ratio at 0.85", func(fv *FeatureVector) { fv.SizeMaturityRatio = 0.85 }, 20},
		{"ratio at 1.0", func(fv *FeatureVector) { fv.SizeMaturityRatio = 1.0 }, 10},
		{"ratio at 1.2", func(fv *FeatureVector) { fv.SizeMaturityRatio = 1.2 }, 0},
		{"spawning now", func(fv *FeatureVector) { fv.MonthsToRepro = 0 }, 25},
		{"one month away", func(fv *FeatureVector) { fv.MonthsToRepro = 1 }, 15},
		{"two months away", func(fv *FeatureVector) { fv.MonthsToRepro = 2 }, 5},
		{"three months away", func(fv *FeatureVector) { fv.MonthsToRepro = 3 }, 0},
		{"sst delta below 1.5", func(fv *FeatureVector) { fv.SSTSpawnDelta = 1.49 }, 20},
		{"sst delta at 1.5", func(fv *FeatureVector) { fv.SSTSpawnDelta = 1.5 }, 10},
		{"sst delta at 3.0", func(fv *FeatureVector) { fv.SSTSpawnDelta = 3.0 }, 0},
		{"trend below -25", func(fv *FeatureVector) { fv.CPUETrend2yPct = -26 }, 15},
		{"trend at -25", func(fv *FeatureVector) { fv.CPUETrend2yPct = -25 }, 5},
		{"trend at -10", func(fv *FeatureVector) { fv.CPUETrend2yPct = -10 }, 0},
		{"upwelling below 0.3", func(fv *FeatureVector) { fv.UpwellingIndex = 0.29 }, 5},
		{"upwelling at 0.3", func(fv *FeatureVector) { fv.UpwellingIndex = 0.3 }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fv := neutralFeatures()
			tt.mutate(&fv)
			assert.Equal(t, tt.want, RiskScore(fv))
		})
	}
}

func TestRiskScoreClamped(t *testing.T) {
	t.Parallel()

	for _, ratio := range []float64{0.1, 0.9, 1.1, 2} {
		for months := 0; months <= 6; months++ {
			for _, delta := range []float64{0, 2, 4} {
				for _, trend := range []float64{-50, -20, 10} {
					for _, upwelling := range []float64{0, 0.5} {
						fv := FeatureVector{
							SizeMaturityRatio: ratio,
							MonthsToRepro:     months,
							SSTSpawnDelta:     delta,
							CPUETrend2yPct:    trend,
							UpwellingIndex:    upwelling,
						}
						score := RiskScore(fv)
						require.GreaterOrEqual(t, score, MinRiskScore)
						require.LessOrEqual(t, score, MaxRiskScore)
					}
				}
			}
		}
	}
}

func TestClassifyBoundary(t *testing.T) {
	t.Parallel()

	assert.False(t, Classify(44))
	assert.True(t, Classify(45))
	for score := 0; score <= 100; score++ {
		assert.Equal(t, score >= 45, Classify(score), "score %d", score)
	}
}

func TestUrgencyBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  Urgency
	}{
		{0, UrgencyNormal},
		{29, UrgencyNormal},
		{30, UrgencySurveillance},
		{44, UrgencySurveillance},
		{45, UrgencyWithin15Days},
		{69, UrgencyWithin15Days},
		{70, UrgencyImmediate},
		{100, UrgencyImmediate},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UrgencyFor(tt.score), "score %d", tt.score)
	}
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 70, ConfidenceFor(45))
	assert.Equal(t, 98, ConfidenceFor(100))
	assert.Equal(t, 98, ConfidenceFor(0))

	previous := ConfidenceFor(45)
	for d := 0; d <= 45; d++ {
		above, below := ConfidenceFor(45+d), ConfidenceFor(45-d)
		assert.Equal(t, above, below, "symmetric at distance %d", d)
		assert.GreaterOrEqual(t, above, previous, "non-decreasing at distance %d", d)
		assert.GreaterOrEqual(t, above, 70)
		assert.LessOrEqual(t, above, 98)
		previous = above
	}
}

// Undersized catch during spawning with SST at the spawning threshold and a collapsing CPUE.
func TestPredictScenario(t *testing.T) {
	t.Parallel()

	sample := Sample{AvgSizeCm: 7.5, AvgWeightG: 60, Count: 40, Date: date(2026, time.February, 10)}
	fv := ComputeFeatures(sample, scenarioProfile(), OceanInput{SST: 18.2})

	result := Predict(fv, scenarioProfile())

	assert.Equal(t, 95, result.RiskScore) // 35 + 25 + 20 + 15
	assert.True(t, result.Classification)
	assert.Equal(t, UrgencyImmediate, result.Urgency)
	assert.Equal(t, 98, result.Confidence)
	assert.Len(t, result.Signals, SignalCount)
}

func TestPredictScenarioRatioBetweenBrackets(t *testing.T) {
	t.Parallel()

	// 8.5 / 9 = 0.944 sits in the 0.85-1.0 band worth 20 points
	sample := Sample{AvgSizeCm: 8.5, AvgWeightG: 60, Count: 40, Date: date(2026, time.February, 10)}
	fv := ComputeFeatures(sample, scenarioProfile(), OceanInput{SST: 18.2})

	result := Predict(fv, scenarioProfile())

	assert.Equal(t, 80, result.RiskScore)
	assert.Equal(t, UrgencyImmediate, result.Urgency)
	assert.Equal(t, 98, result.Confidence)
}

func TestPredictIsDeterministic(t *testing.T) {
	t.Parallel()

	sample := Sample{AvgSizeCm: 9.5, AvgWeightG: 380, Count: 50, Zone: "Lassarga", Date: date(2026, time.March, 3)}
	ocean := OceanInput{SST: 17.1, Upwelling: ptr(0.35)}

	first := Predict(ComputeFeatures(sample, scenarioProfile(), ocean), scenarioProfile())
	second := Predict(ComputeFeatures(sample, scenarioProfile(), ocean), scenarioProfile())

	assert.Equal(t, first, second)
}

func TestScoringRulesReturnsCopy(t *testing.T) {
	t.Parallel()

	rules := ScoringRules()
	require.Len(t, rules, 5)
	rules[0].Brackets[0].Points = 0

	assert.Equal(t, 35, ScoringRules()[0].Brackets[0].Points)
}
