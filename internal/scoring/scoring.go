// Package scoring provides the factor scorers, ensemble combiner, recommendation ladder and
// historical calibrator used to score candidates against opportunities.
//
// Every scorer is a total function: for any well-formed input it returns an integer in
// [0, 100] and resolves missing optional data to a neutral default.
package scoring

import "math"

// Factor names used as keys in factor maps and weight tables
const (
	FactorSkill        = "skill"
	FactorExperience   = "experience"
	FactorLocation     = "location"
	FactorCulturalFit  = "culturalFit"
	FactorLanguage     = "language"
	FactorCompensation = "compensation"
	FactorRisk         = "risk"
	FactorBehavioral   = "behavioral"
	FactorTrajectory   = "trajectory"
	FactorMarket       = "market"
	FactorRetention    = "retention"
	FactorNeural       = "neural"
	// FactorInvertedRisk is 100 minus the risk score; it only appears in weight tables
	FactorInvertedRisk = "invertedRisk"
)

// Neutral is the score used whenever the data needed for a factor is missing.
const Neutral = 50

// clamp bounds a score to [0, 100].
func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// clampFloat bounds a fractional score to [0, 100], mapping NaN to the neutral value.
func clampFloat(score float64) float64 {
	if math.IsNaN(score) {
		return Neutral
	}
	return math.Max(0, math.Min(100, score))
}

// toScore rounds a fractional score and bounds it to [0, 100].
func toScore(score float64) int {
	return clamp(int(math.Round(clampFloat(score))))
}
