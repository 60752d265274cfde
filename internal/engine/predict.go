package engine

import "github.com/bahria/bahria-go/internal/species"

// Predict scores the feature vector and attaches the diagnostic signals.
func Predict(fv FeatureVector, profile species.Profile) PredictionResult {
	score := RiskScore(fv)
	return PredictionResult{
		Classification: Classify(score),
		RiskScore:      score,
		Confidence:     ConfidenceFor(score),
		Urgency:        UrgencyFor(score),
		Signals:        GenerateSignals(fv, profile),
	}
}
