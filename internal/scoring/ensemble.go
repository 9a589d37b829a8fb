package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Weights maps factor names to their share of the overall score.
type Weights map[string]float64

// DefaultBasicWeights returns the candidate-opportunity weight table.
func DefaultBasicWeights() Weights {
	return Weights{
		FactorSkill:        0.25,
		FactorExperience:   0.20,
		FactorLocation:     0.15,
		FactorCulturalFit:  0.15,
		FactorLanguage:     0.15,
		FactorCompensation: 0.10,
	}
}

// DefaultAdvancedWeights returns the weight table of the advanced ensemble.
func DefaultAdvancedWeights() Weights {
	return Weights{
		FactorNeural:       0.25,
		FactorBehavioral:   0.20,
		FactorTrajectory:   0.20,
		FactorInvertedRisk: 0.15,
		FactorMarket:       0.10,
		FactorRetention:    0.10,
	}
}

// Validate checks that no weight is negative and that at least one is positive.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("weight table is empty")
	}
	total := 0.0
	for _, name := range w.names() {
		weight := w[name]
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("weight %q must be a non-negative number, got %v", name, weight)
		}
		total += weight
	}
	if total <= 0 {
		return fmt.Errorf("weights must sum to a positive value")
	}
	return nil
}

// names returns factor names in a stable order so sums are reproducible.
func (w Weights) names() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Combine computes the weighted overall score. Weights are normalised by their total, a factor
// absent from the map counts as Neutral, and the result is clamped to [0, 100].
func Combine(factors map[string]int, weights Weights) int {
	var sum, total float64
	for _, name := range weights.names() {
		weight := weights[name]
		if weight <= 0 {
			continue
		}
		score, ok := factorValue(factors, name)
		if !ok {
			score = Neutral
		}
		sum += weight * float64(clamp(score))
		total += weight
	}

	if total == 0 {
		return Neutral
	}
	return toScore(sum / total)
}

// factorValue resolves a weight table key, deriving invertedRisk from risk.
func factorValue(factors map[string]int, name string) (int, bool) {
	if score, ok := factors[name]; ok {
		return score, true
	}
	if name == FactorInvertedRisk {
		if risk, ok := factors[FactorRisk]; ok {
			return 100 - clamp(risk), true
		}
	}
	return 0, false
}

// Confidence penalties for missing optional inputs
const (
	confidenceNoCandidateText     = 20
	confidenceNoHistory           = 15
	confidenceNoOpportunityVector = 10
	confidenceFloor               = 60
	confidenceCeiling             = 100
)

// ConfidenceInputs records which optional inputs were available for a scoring request.
type ConfidenceInputs struct {
	// CandidateEmbedding is false when the candidate had no text or its embedding failed
	CandidateEmbedding bool
	HasHistory         bool
	// OpportunityEmbedding is false when the opportunity had no text or its embedding failed
	OpportunityEmbedding bool
}

// Confidence starts at 100, subtracts a fixed penalty per missing input and never drops below 60.
func Confidence(in ConfidenceInputs) int {
	confidence := confidenceCeiling
	if !in.CandidateEmbedding {
		confidence -= confidenceNoCandidateText
	}
	if !in.HasHistory {
		confidence -= confidenceNoHistory
	}
	if !in.OpportunityEmbedding {
		confidence -= confidenceNoOpportunityVector
	}
	return max(confidenceFloor, confidence)
}
