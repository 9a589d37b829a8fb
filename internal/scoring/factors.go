package scoring

import (
	"math"
	"strings"

	"github.com/jonathan/fitscore/internal/types"
)

// Experience fit thresholds, as candidate/required ratios
const (
	experienceNearRatio    = 0.8
	experiencePartialRatio = 0.5
	experienceFloor        = 20
)

// Compensation fit thresholds, as expected/offered ratios
const (
	compensationCloseRatio   = 1.2
	compensationStretchRatio = 1.5
	compensationFloor        = 20
)

// Additive risk penalties
const (
	riskRelocationRefused = 30
	riskExperienceGap     = 20
	riskLanguageShortfall = 25
	riskHistoryMax        = 25
)

// ExperienceFit scores how well the candidate's experience covers the opportunity's requirement.
// Years are compared when both sides state them, otherwise ordinal levels.
func ExperienceFit(candidate, opportunity *types.EntityProfile) int {
	ratio, ok := experienceRatio(candidate, opportunity)
	if !ok {
		return Neutral
	}

	switch {
	case ratio >= 1:
		return 100
	case ratio >= experienceNearRatio:
		return 80
	case ratio >= experiencePartialRatio:
		return 60
	}

	// Linear below the partial band: 0.5 maps to 60, so the slope is 120
	return max(experienceFloor, toScore(120*ratio))
}

// experienceRatio returns candidate/required experience. A missing requirement counts as fully
// covered; a requirement against an unknown candidate value reports ok=false.
func experienceRatio(candidate, opportunity *types.EntityProfile) (float64, bool) {
	switch {
	case opportunity.YearsExperience > 0 && candidate.YearsExperience > 0:
		return candidate.YearsExperience / opportunity.YearsExperience, true
	case opportunity.ExperienceLevel > types.ExperienceUnspecified:
		if candidate.ExperienceLevel == types.ExperienceUnspecified {
			return 0, false
		}
		return float64(candidate.ExperienceLevel) / float64(opportunity.ExperienceLevel), true
	case opportunity.YearsExperience > 0:
		return 0, false
	default:
		return 1, true
	}
}

// LocationCompatibility scores the country match and the candidate's willingness to relocate.
func LocationCompatibility(candidate, opportunity *types.EntityProfile) int {
	cc, oc := normalizeCountry(candidate.Country), normalizeCountry(opportunity.Country)
	if cc == "" || oc == "" {
		if candidate.WillingToRelocate {
			return 85
		}
		return Neutral
	}

	switch {
	case cc == oc:
		return 100
	case !candidate.WillingToRelocate:
		return 30
	default:
		return 85
	}
}

// RelocationRequired reports whether the opportunity is in a different, known country.
func RelocationRequired(candidate, opportunity *types.EntityProfile) bool {
	cc, oc := normalizeCountry(candidate.Country), normalizeCountry(opportunity.Country)
	return cc != "" && oc != "" && cc != oc
}

// RelocationRefused reports whether relocation is required and the candidate will not move.
func RelocationRefused(candidate, opportunity *types.EntityProfile) bool {
	return RelocationRequired(candidate, opportunity) && !candidate.WillingToRelocate
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

// LanguageCompatibility averages the candidate's proficiency score over every language the
// opportunity lists. Without any listed language it returns Neutral.
func LanguageCompatibility(candidate, opportunity *types.EntityProfile) int {
	if len(opportunity.Languages) == 0 {
		return Neutral
	}

	total := 0
	for lang := range opportunity.Languages {
		total += languageLevelScore(candidateLanguage(candidate, lang), opportunity.LanguageImportance)
	}

	return toScore(float64(total) / float64(len(opportunity.Languages)))
}

// languageLevelScore is the proficiency lookup table.
func languageLevelScore(level types.LanguageLevel, importance types.Importance) int {
	switch level {
	case types.LanguageNative:
		return 100
	case types.LanguageFluent:
		return 90
	case types.LanguageAdvanced:
		return 85
	case types.LanguageIntermediate:
		return 70
	case types.LanguageBasic:
		if importance == types.ImportanceHigh {
			return 40
		}
		return 60
	default:
		return Neutral
	}
}

// candidateLanguage looks up a language case-insensitively.
func candidateLanguage(candidate *types.EntityProfile, lang string) types.LanguageLevel {
	if level, ok := candidate.Languages[lang]; ok {
		return level
	}
	for name, level := range candidate.Languages {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(lang)) {
			return level
		}
	}
	return types.LanguageNone
}

// languageShortfall reports whether any required level exceeds the candidate's proficiency.
func languageShortfall(candidate, opportunity *types.EntityProfile) bool {
	for lang, required := range opportunity.Languages {
		if required > candidateLanguage(candidate, lang) {
			return true
		}
	}
	return false
}

// CompensationFit scores the candidate's expected compensation against the offer.
// Missing amounts or different currencies yield Neutral.
func CompensationFit(candidate, opportunity *types.EntityProfile) int {
	expected, offered := candidate.Compensation, opportunity.Compensation
	if !comparableCompensation(expected, offered) {
		return Neutral
	}

	ratio := expected.Amount / offered.Amount
	switch {
	case ratio <= 1:
		return 100
	case ratio <= compensationCloseRatio:
		return 80
	case ratio <= compensationStretchRatio:
		return 60
	}

	// offered/expected is below 2/3 here; scaled so 2/3 maps to 60
	return max(compensationFloor, toScore(90*offered.Amount/expected.Amount))
}

func comparableCompensation(a, b types.Compensation) bool {
	if !a.Known() || !b.Known() {
		return false
	}
	if a.Currency == "" || b.Currency == "" {
		return true
	}
	return strings.EqualFold(a.Currency, b.Currency)
}

// CulturalFit is the share of the opportunity's culture tags the candidate also lists.
func CulturalFit(candidate, opportunity *types.EntityProfile) int {
	required := normalizeSet(opportunity.CultureTags)
	offered := normalizeSet(candidate.CultureTags)
	if len(required) == 0 || len(offered) == 0 {
		return Neutral
	}

	matched := 0
	for tag := range required {
		if offered[tag] {
			matched++
		}
	}

	return toScore(100 * float64(matched) / float64(len(required)))
}

func normalizeSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}

// RiskAssessment is an additive risk model; higher means riskier. Capped at 100.
func RiskAssessment(candidate, opportunity *types.EntityProfile) int {
	risk := 0

	if RelocationRefused(candidate, opportunity) {
		risk += riskRelocationRefused
	}

	if candidate.ExperienceLevel > types.ExperienceUnspecified &&
		opportunity.ExperienceLevel-candidate.ExperienceLevel > 1 {
		risk += riskExperienceGap
	}

	if languageShortfall(candidate, opportunity) {
		risk += riskLanguageShortfall
	}

	risk += historicalRisk(candidate.History)

	return clamp(risk)
}

// historicalRisk is proportional to the share of rejected or withdrawn applications.
func historicalRisk(history []types.ApplicationRecord) int {
	if len(history) == 0 {
		return 0
	}

	negative := 0
	for _, record := range history {
		if record.Outcome == types.OutcomeRejected || record.Outcome == types.OutcomeWithdrawn {
			negative++
		}
	}

	return int(math.Round(riskHistoryMax * float64(negative) / float64(len(history))))
}

// Behavioral blend weights
const (
	behavioralAcceptanceWeight = 40.0
	behavioralWithdrawalWeight = 30.0
	behavioralSpeedWeight      = 0.2
	behavioralIndustryWeight   = 10.0
	behavioralNoHistory        = 60
)

// BehavioralPattern scores the candidate's application history. Without history it returns 60.
func BehavioralPattern(candidate, opportunity *types.EntityProfile) int {
	history := candidate.History
	if len(history) == 0 {
		return behavioralNoHistory
	}

	var accepted, withdrawn, sameIndustry, responses int
	var responseHours float64
	for _, record := range history {
		switch record.Outcome {
		case types.OutcomeAccepted:
			accepted++
		case types.OutcomeWithdrawn:
			withdrawn++
		}
		if record.ResponseHours > 0 {
			responseHours += record.ResponseHours
			responses++
		}
		if opportunity.Industry != "" && strings.EqualFold(record.Industry, opportunity.Industry) {
			sameIndustry++
		}
	}

	n := float64(len(history))
	acceptance := float64(accepted) / n
	withdrawal := float64(withdrawn) / n

	industryRatio := 0.5
	if opportunity.Industry != "" {
		industryRatio = float64(sameIndustry) / n
	}

	speed := float64(behavioralNoHistory)
	if responses > 0 {
		speed = float64(ResponseSpeedScore(responseHours / float64(responses)))
	}

	score := behavioralAcceptanceWeight*acceptance +
		behavioralWithdrawalWeight*(1-withdrawal) +
		behavioralSpeedWeight*speed +
		behavioralIndustryWeight*industryRatio

	return toScore(score)
}

// ResponseSpeedScore buckets an average response time in hours.
func ResponseSpeedScore(hours float64) int {
	switch {
	case hours <= 24:
		return 100
	case hours <= 72:
		return 70
	default:
		return 40
	}
}
