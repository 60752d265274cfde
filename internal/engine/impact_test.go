package engine

import (
	"testing"

	"github.com/bahria/bahria-go/internal/species"
	"github.com/stretchr/testify/assert"
)

func TestComputeImpact(t *testing.T) {
	t.Parallel()

	profile := species.Profile{Code: "poulpe", AvgPriceMAD: 75}
	econ := species.Economics{DailyCatchTonnes: 55, WorkersAffected: 4500}

	tests := []struct {
		name   string
		score  int
		days   int
		tonnes float64
		value  float64
		gain   string
	}{
		{"immediate", 80, 75, 4125, 0.309375, BiomassGainHigh},
		{"at immediate threshold", 70, 75, 4125, 0.309375, BiomassGainHigh},
		{"standard", 50, 45, 2475, 0.185625, BiomassGainModerate},
		{"at rest threshold", 45, 45, 2475, 0.185625, BiomassGainModerate},
		{"below threshold", 44, 0, 0, 0, BiomassGainNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			impact := ComputeImpact(profile, econ, tt.score)
			assert.Equal(t, tt.days, impact.DurationDays)
			assert.InDelta(t, tt.tonnes, impact.TonnesForegone, 1e-9)
			assert.InDelta(t, tt.value, impact.ValueMillions, 1e-9)
			assert.Equal(t, 4500, impact.WorkersAffected)
			assert.Equal(t, tt.gain, impact.BiomassGain)
		})
	}
}

func TestComputeImpactDurationSet(t *testing.T) {
	t.Parallel()

	profile := species.Profile{AvgPriceMAD: 4}
	econ := species.Economics{DailyCatchTonnes: 1500, WorkersAffected: 3200}

	for score := 0; score <= 100; score++ {
		impact := ComputeImpact(profile, econ, score)
		assert.Contains(t, []int{0, 45, 75}, impact.DurationDays, "score %d", score)
		if impact.DurationDays == 0 {
			assert.Zero(t, impact.TonnesForegone, "score %d", score)
			assert.Zero(t, impact.ValueMillions, "score %d", score)
		}
	}
}

func TestComputeImpactUnknownEconomics(t *testing.T) {
	t.Parallel()

	impact := ComputeImpact(species.Profile{AvgPriceMAD: 100}, species.Economics{}, 90)
	assert.Equal(t, 75, impact.DurationDays)
	assert.Zero(t, impact.TonnesForegone)
	assert.Zero(t, impact.ValueMillions)
	assert.Zero(t, impact.WorkersAffected)
}
