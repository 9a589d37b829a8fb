package types

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects the weight table used to combine factor scores.
type Mode string

// Scoring modes
const (
	ModeBasic    Mode = "basic"
	ModeAdvanced Mode = "advanced"
)

// ParseMode maps a user-supplied mode to a Mode, defaulting to basic.
func ParseMode(s string) Mode {
	if Mode(s) == ModeAdvanced {
		return ModeAdvanced
	}
	return ModeBasic
}

// MatchResult is the outcome of scoring one candidate against one opportunity.
type MatchResult struct {
	ID              uuid.UUID      `json:"id"`
	CandidateID     string         `json:"candidate_id"`
	OpportunityID   string         `json:"opportunity_id"`
	Mode            Mode           `json:"mode"`
	OverallScore    int            `json:"overall_score"`
	Confidence      int            `json:"confidence"`
	Factors         map[string]int `json:"factors"`
	Recommendations []string       `json:"recommendations"`
	RedFlags        []string       `json:"red_flags"`
	SkillGaps       []string       `json:"skill_gaps,omitempty"`
	// CalibratedScore is set only when calibration history was supplied
	CalibratedScore *float64  `json:"calibrated_score,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
}

// HistoricalRecord pairs a past overall score with its observed real-world success (0-100).
type HistoricalRecord struct {
	OverallScore  float64 `json:"overall_score" validate:"gte=0,lte=100"`
	ActualSuccess float64 `json:"actual_success" validate:"gte=0,lte=100"`
}

// Validate validates the HistoricalRecord using the validator.
func (h *HistoricalRecord) Validate() error {
	validate := newValidator()
	return validate.Struct(h)
}
