package engine

import "github.com/bahria/bahria-go/internal/species"

// Rest durations in days.
const (
	ImmediateRestDays = 75
	StandardRestDays  = 45
)

// Expected biomass gain bands.
const (
	BiomassGainHigh     = "15-25%"
	BiomassGainModerate = "5-15%"
	BiomassGainNone     = "0%"
)

// ComputeImpact estimates the cost of a rest period for the risk score. Landings
// and value follow the duration, so a score below the rest threshold costs nothing.
// Callers should only present the result when the prediction recommends a rest.
func ComputeImpact(profile species.Profile, econ species.Economics, score int) ImpactEstimate {
	var (
		days int
		gain string
	)
	switch {
	case score >= ImmediateThreshold:
		days, gain = ImmediateRestDays, BiomassGainHigh
	case score >= RestThreshold:
		days, gain = StandardRestDays, BiomassGainModerate
	default:
		days, gain = 0, BiomassGainNone
	}

	tonnes := econ.DailyCatchTonnes * float64(days)

	return ImpactEstimate{
		DurationDays:    days,
		TonnesForegone:  tonnes,
		ValueMillions:   tonnes * profile.AvgPriceMAD / 1_000_000,
		WorkersAffected: econ.WorkersAffected,
		BiomassGain:     gain,
	}
}
