package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/fitscore/internal/types"
)

// Recommendation ladder bands
const (
	strongMatchThreshold   = 80
	moderateMatchThreshold = 60
)

// Red flag messages
const (
	RedFlagCompensation = "Compensation expectation exceeds the offer by more than 50%"
	RedFlagRelocation   = "Candidate is not willing to relocate to the opportunity's country"
	RedFlagExperience   = "Required experience is more than 1.5x the candidate's experience"
)

// redFlagCompensationRatio and redFlagExperienceRatio trigger their flags when exceeded
const (
	redFlagCompensationRatio = 1.5
	redFlagExperienceRatio   = 1.5
)

// Recommendations maps the overall score to next actions and appends a training line when
// skill gaps were found.
func Recommendations(overall int, skillGaps []string) []string {
	var recs []string
	switch {
	case overall >= strongMatchThreshold:
		recs = append(recs,
			"Schedule an interview immediately",
			"Fast-track the candidate through the hiring process",
		)
	case overall >= moderateMatchThreshold:
		recs = append(recs,
			"Conduct a technical assessment",
			"Verify references before proceeding",
		)
	default:
		recs = append(recs,
			"Suggest skill development before applying",
			"Explore alternative roles that better match the profile",
		)
	}

	if len(skillGaps) > 0 {
		recs = append(recs, fmt.Sprintf("Recommend targeted training in: %s", strings.Join(skillGaps, ", ")))
	}

	return recs
}

// RedFlags runs independent warning checks. The result is never nil.
func RedFlags(candidate, opportunity *types.EntityProfile) []string {
	flags := make([]string, 0)

	expected, offered := candidate.Compensation, opportunity.Compensation
	if comparableCompensation(expected, offered) &&
		expected.Amount > redFlagCompensationRatio*offered.Amount {
		flags = append(flags, RedFlagCompensation)
	}

	if RelocationRefused(candidate, opportunity) {
		flags = append(flags, RedFlagRelocation)
	}

	if ratio, ok := experienceRatio(candidate, opportunity); ok && ratio > 0 && 1/ratio > redFlagExperienceRatio {
		flags = append(flags, RedFlagExperience)
	}

	return flags
}

// SkillGaps lists the opportunity's skills that the candidate does not list, sorted.
func SkillGaps(candidate, opportunity *types.EntityProfile) []string {
	have := normalizeSet(candidate.Skills)

	seen := make(map[string]bool)
	var gaps []string
	for _, skill := range opportunity.Skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || have[key] || seen[key] {
			continue
		}
		seen[key] = true
		gaps = append(gaps, strings.TrimSpace(skill))
	}

	sort.Strings(gaps)
	return gaps
}
