package scoring

import (
	"math"

	"github.com/jonathan/fitscore/internal/types"
)

const (
	trajectoryUnknown = 60
	marketFloor       = 20
	retentionUnknown  = 60
)

// CareerTrajectory scores whether the opportunity is a natural next step for the candidate.
// One level up scores highest, a lateral move slightly lower, larger jumps or steps down less.
func CareerTrajectory(candidate, opportunity *types.EntityProfile) int {
	if candidate.ExperienceLevel == types.ExperienceUnspecified ||
		opportunity.ExperienceLevel == types.ExperienceUnspecified {
		return trajectoryUnknown
	}

	step := int(opportunity.ExperienceLevel - candidate.ExperienceLevel)
	switch {
	case step == 1:
		return 95
	case step == 0:
		return 85
	case step >= 2:
		return 50
	default:
		return max(40, 70-10*(-step-1))
	}
}

// MarketValueAlignment penalises expected compensation in either direction from the offer.
func MarketValueAlignment(candidate, opportunity *types.EntityProfile) int {
	expected, offered := candidate.Compensation, opportunity.Compensation
	if !comparableCompensation(expected, offered) {
		return Neutral
	}

	deviation := math.Abs(expected.Amount-offered.Amount) / offered.Amount
	return max(marketFloor, toScore(100-100*deviation))
}

// RetentionLikelihood estimates how long the candidate is likely to stay, from the tenure of
// past accepted placements. Without placements it returns 60.
func RetentionLikelihood(candidate, opportunity *types.EntityProfile) int {
	var tenure float64
	placements := 0
	for _, record := range candidate.History {
		if record.Outcome == types.OutcomeAccepted && record.TenureMonths > 0 {
			tenure += record.TenureMonths
			placements++
		}
	}
	if placements == 0 {
		return retentionUnknown
	}

	avg := tenure / float64(placements)
	score := 55
	switch {
	case avg >= 24:
		score = 90
	case avg >= 12:
		score = 75
	}

	cc, oc := normalizeCountry(candidate.Country), normalizeCountry(opportunity.Country)
	if cc != "" && cc == oc {
		score += 10
	}
	if RelocationRequired(candidate, opportunity) {
		score -= 10
	}

	return clamp(score)
}
