package engine

// Score thresholds.
const (
	MinRiskScore          = 0
	MaxRiskScore          = 100
	RestThreshold         = 45 // rest recommended at or above
	ImmediateThreshold    = 70
	SurveillanceThreshold = 30

	baseConfidence = 70
	maxConfidence  = 98
)

// RiskScore sums the points of every scoring rule and clamps the total to 0-100.
func RiskScore(fv FeatureVector) int {
	total := 0
	for _, rule := range scoringRules {
		total += rule.Evaluate(fv.Value(rule.Feature)).Points
	}
	return min(MaxRiskScore, max(MinRiskScore, total))
}

// Classify reports whether a rest period is recommended.
func Classify(score int) bool {
	return score >= RestThreshold
}

// UrgencyFor maps a risk score to its urgency tier.
func UrgencyFor(score int) Urgency {
	switch {
	case score >= ImmediateThreshold:
		return UrgencyImmediate
	case score >= RestThreshold:
		return UrgencyWithin15Days
	case score >= SurveillanceThreshold:
		return UrgencySurveillance
	default:
		return UrgencyNormal
	}
}

// ConfidenceFor is lowest at the decision boundary and grows with the distance from it.
func ConfidenceFor(score int) int {
	distance := score - RestThreshold
	if distance < 0 {
		distance = -distance
	}
	return min(maxConfidence, baseConfidence+distance)
}
