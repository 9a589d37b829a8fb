// Package types provides type definitions for structured data used throughout the fitscore system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExperienceLevel is an ordinal seniority level. The zero value means unspecified.
type ExperienceLevel int

// Experience levels in ascending order
const (
	ExperienceUnspecified  ExperienceLevel = 0
	ExperienceBeginner     ExperienceLevel = 1
	ExperienceIntermediate ExperienceLevel = 2
	ExperienceAdvanced     ExperienceLevel = 3
	ExperienceExpert       ExperienceLevel = 4
)

var experienceNames = map[ExperienceLevel]string{
	ExperienceUnspecified:  "",
	ExperienceBeginner:     "beginner",
	ExperienceIntermediate: "intermediate",
	ExperienceAdvanced:     "advanced",
	ExperienceExpert:       "expert",
}

// String returns the lowercase level name.
func (l ExperienceLevel) String() string {
	if name, ok := experienceNames[l]; ok {
		return name
	}
	return strconv.Itoa(int(l))
}

// MarshalJSON encodes the level as its name.
func (l ExperienceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either a level name or its ordinal.
func (l *ExperienceLevel) UnmarshalJSON(data []byte) error {
	n, err := parseOrdinal(data, experienceNames, int(ExperienceExpert))
	if err != nil {
		return fmt.Errorf("invalid experience level: %w", err)
	}
	*l = ExperienceLevel(n)
	return nil
}

// LanguageLevel is an ordinal language proficiency. The zero value means none or unspecified.
type LanguageLevel int

// Language proficiency levels in ascending order
const (
	LanguageNone         LanguageLevel = 0
	LanguageBasic        LanguageLevel = 1
	LanguageIntermediate LanguageLevel = 2
	LanguageAdvanced     LanguageLevel = 3
	LanguageFluent       LanguageLevel = 4
	LanguageNative       LanguageLevel = 5
)

var languageNames = map[LanguageLevel]string{
	LanguageNone:         "none",
	LanguageBasic:        "basic",
	LanguageIntermediate: "intermediate",
	LanguageAdvanced:     "advanced",
	LanguageFluent:       "fluent",
	LanguageNative:       "native",
}

// "proficient" is accepted as an alias for fluent
var languageAliases = map[string]LanguageLevel{
	"proficient": LanguageFluent,
}

// String returns the lowercase level name.
func (l LanguageLevel) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return strconv.Itoa(int(l))
}

// MarshalJSON encodes the level as its name.
func (l LanguageLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either a level name or its ordinal.
func (l *LanguageLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if alias, ok := languageAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
			*l = alias
			return nil
		}
	}
	n, err := parseOrdinal(data, languageNames, int(LanguageNative))
	if err != nil {
		return fmt.Errorf("invalid language level: %w", err)
	}
	*l = LanguageLevel(n)
	return nil
}

// parseOrdinal decodes a JSON string name or number into an ordinal in [0, maxValue].
func parseOrdinal[T ~int](data []byte, names map[T]string, maxValue int) (int, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return 0, nil
		}
		for level, name := range names {
			if name == s {
				return int(level), nil
			}
		}
		return 0, fmt.Errorf("unknown level %q", s)
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, fmt.Errorf("expected string or integer, got %s", string(data))
	}
	if n < 0 || n > maxValue {
		return 0, fmt.Errorf("level %d out of range 0-%d", n, maxValue)
	}
	return n, nil
}

// Importance expresses how much an opportunity relies on its language requirements.
type Importance string

// Importance values
const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Outcome is the result of a past application or placement.
type Outcome string

// Outcome values
const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeWithdrawn Outcome = "withdrawn"
	OutcomePending   Outcome = "pending"
)
