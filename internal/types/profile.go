package types

import "time"

// EntityKind distinguishes the two populations being matched.
type EntityKind string

// Entity kinds
const (
	KindCandidate   EntityKind = "candidate"
	KindOpportunity EntityKind = "opportunity"
)

// Compensation is an expected (candidate) or offered (opportunity) amount.
type Compensation struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// Known reports whether an amount was provided.
func (c Compensation) Known() bool {
	return c.Amount > 0
}

// ApplicationRecord is one past application or placement outcome of a candidate.
type ApplicationRecord struct {
	Outcome       Outcome    `json:"outcome"`
	Industry      string     `json:"industry,omitempty"`
	ResponseHours float64    `json:"response_hours,omitempty"`
	TenureMonths  float64    `json:"tenure_months,omitempty"`
	AppliedAt     *time.Time `json:"applied_at,omitempty"`
}

// EntityProfile describes a candidate or an opportunity. For candidates the structured
// attributes are what they bring; for opportunities they are what is required or offered.
type EntityProfile struct {
	ID                 string                   `json:"id" validate:"required,notblank"`
	Kind               EntityKind               `json:"kind,omitempty" validate:"omitempty,oneof=candidate opportunity"`
	Name               string                   `json:"name,omitempty"`
	Description        string                   `json:"description,omitempty"`
	ExperienceLevel    ExperienceLevel          `json:"experience_level,omitempty"`
	YearsExperience    float64                  `json:"years_experience,omitempty" validate:"gte=0"`
	Country            string                   `json:"country,omitempty"`
	WillingToRelocate  bool                     `json:"willing_to_relocate,omitempty"`
	Languages          map[string]LanguageLevel `json:"languages,omitempty"`
	LanguageImportance Importance               `json:"language_importance,omitempty" validate:"omitempty,oneof=low medium high"`
	Compensation       Compensation             `json:"compensation"`
	CultureTags        []string                 `json:"culture_tags,omitempty"`
	Skills             []string                 `json:"skills,omitempty"`
	Industry           string                   `json:"industry,omitempty"`
	History            []ApplicationRecord      `json:"history,omitempty"`
}

// Validate validates the EntityProfile using the validator.
func (p *EntityProfile) Validate() error {
	validate := newValidator()
	return validate.Struct(p)
}

// HasHistory reports whether any past application outcomes are known.
func (p *EntityProfile) HasHistory() bool {
	return len(p.History) > 0
}

// MatchPair is one candidate/opportunity pair to score.
type MatchPair struct {
	Candidate   *EntityProfile `json:"candidate" validate:"required"`
	Opportunity *EntityProfile `json:"opportunity" validate:"required"`
}
