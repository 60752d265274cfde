package engine

import (
	"time"

	"github.com/bahria/bahria-go/internal/species"
)

// scenarioProfile is a species with L50 9 cm, spawning in February and March.
func scenarioProfile() species.Profile {
	return species.Profile{
		Code:              "test",
		CommonName:        "Test species",
		L50Cm:             9,
		OptimalSizeCm:     12,
		MaturityWeightG:   100,
		OptimalWeightG:    150,
		SpawningMonths:    []int{2, 3},
		PeakSpawn:         "March",
		SpawnSSTThreshold: 18,
		CPUEPrior:         40,
		CPUEPrevious:      34,
		CPUERecent:        30,
		CPUETrend2yPct:    -30,
		AvgPriceMAD:       60,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

// neutralFeatures scores zero on every rule.
func neutralFeatures() FeatureVector {
	return FeatureVector{
		AvgSizeCm:         15,
		AvgWeightG:        200,
		SizeMaturityRatio: 1.5,
		Month:             7,
		MonthsToRepro:     4,
		SSTCurrent:        23,
		SSTSpawnDelta:     5,
		UpwellingIndex:    0.5,
		CPUERecent:        40,
		CPUETrend2yPct:    0,
	}
}
