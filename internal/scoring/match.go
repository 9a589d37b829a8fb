package scoring

import "github.com/jonathan/fitscore/internal/types"

// Vectors holds the embeddings available for a pair. A nil field means unavailable.
type Vectors struct {
	Candidate   []float32
	Opportunity []float32
}

// BasicFactors runs the factor scorers of the candidate-opportunity ensemble.
// Risk is included so callers can report it even though the basic table does not weight it.
func BasicFactors(candidate, opportunity *types.EntityProfile, v Vectors) map[string]int {
	return map[string]int{
		FactorSkill:        SkillSimilarity(v.Candidate, v.Opportunity),
		FactorExperience:   ExperienceFit(candidate, opportunity),
		FactorLocation:     LocationCompatibility(candidate, opportunity),
		FactorCulturalFit:  CulturalFit(candidate, opportunity),
		FactorLanguage:     LanguageCompatibility(candidate, opportunity),
		FactorCompensation: CompensationFit(candidate, opportunity),
		FactorRisk:         RiskAssessment(candidate, opportunity),
	}
}

// AdvancedFactors runs the factor scorers of the advanced ensemble.
func AdvancedFactors(candidate, opportunity *types.EntityProfile, v Vectors) map[string]int {
	return map[string]int{
		FactorNeural:     SkillSimilarity(v.Candidate, v.Opportunity),
		FactorBehavioral: BehavioralPattern(candidate, opportunity),
		FactorTrajectory: CareerTrajectory(candidate, opportunity),
		FactorRisk:       RiskAssessment(candidate, opportunity),
		FactorMarket:     MarketValueAlignment(candidate, opportunity),
		FactorRetention:  RetentionLikelihood(candidate, opportunity),
	}
}
