package engine

import (
	"math"

	"github.com/bahria/bahria-go/internal/species"
)

// noSpawningDistance is reported for a species without spawning months.
const noSpawningDistance = 6

// ComputeFeatures derives the feature vector for a sample. The sample date must
// already be set; defaulting it is the caller's job.
func ComputeFeatures(sample Sample, profile species.Profile, ocean OceanInput) FeatureVector {
	month := int(sample.Date.Month())

	upwelling := DefaultUpwellingIndex
	if ocean.Upwelling != nil {
		upwelling = *ocean.Upwelling
	}

	return FeatureVector{
		AvgSizeCm:         sample.AvgSizeCm,
		AvgWeightG:        sample.AvgWeightG,
		SizeMaturityRatio: sample.AvgSizeCm / profile.L50Cm,
		Month:             month,
		MonthsToRepro:     MonthsToRepro(month, profile.SpawningMonths),
		SSTCurrent:        ocean.SST,
		SSTSpawnDelta:     math.Abs(ocean.SST - profile.SpawnSSTThreshold),
		UpwellingIndex:    upwelling,
		CPUERecent:        profile.CPUERecent,
		CPUETrend2yPct:    profile.CPUETrend2yPct,
	}
}

// MonthsToRepro returns the shortest circular distance in months, 0 to 6, from
// month to any spawning month.
func MonthsToRepro(month int, spawning []int) int {
	if len(spawning) == 0 {
		return noSpawningDistance
	}

	best := 12
	for _, target := range spawning {
		forward := ((target-month)%12 + 12) % 12
		backward := ((month-target)%12 + 12) % 12
		best = min(best, forward, backward)
	}
	return best
}
