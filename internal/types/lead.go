package types

import (
	"time"

	"github.com/google/uuid"
)

// CompanySize is a coarse headcount bucket.
type CompanySize string

// Company sizes
const (
	SizeSmall  CompanySize = "small"
	SizeMedium CompanySize = "medium"
	SizeLarge  CompanySize = "large"
)

// LeadProfile describes a company considered as a recruitment lead.
type LeadProfile struct {
	ID               string      `json:"id" validate:"required,notblank"`
	Name             string      `json:"name,omitempty"`
	Industry         string      `json:"industry,omitempty"`
	Size             CompanySize `json:"size,omitempty" validate:"omitempty,oneof=small medium large"`
	Country          string      `json:"country,omitempty"`
	AnnualRevenue    float64     `json:"annual_revenue,omitempty" validate:"gte=0"`
	OpenPositions    int         `json:"open_positions,omitempty" validate:"gte=0"`
	AvgResponseHours float64     `json:"avg_response_hours,omitempty" validate:"gte=0"`
	OffersRelocation bool        `json:"offers_relocation,omitempty"`
	ProvidesHousing  bool        `json:"provides_housing,omitempty"`
	HelpsWithVisa    bool        `json:"helps_with_visa,omitempty"`
	TransportSupport bool        `json:"transport_support,omitempty"`
	LanguageTraining bool        `json:"language_training,omitempty"`
}

// Validate validates the LeadProfile using the validator.
func (l *LeadProfile) Validate() error {
	validate := newValidator()
	return validate.Struct(l)
}

// LeadSubScores holds the six lead qualification factors.
type LeadSubScores struct {
	FinancialHealth      int `json:"financial_health"`
	HiringUrgency        int `json:"hiring_urgency"`
	RelocationSupport    int `json:"relocation_support"`
	CommunicationQuality int `json:"communication_quality"`
	IndustryMatch        int `json:"industry_match"`
	SizeCompatibility    int `json:"size_compatibility"`
}

// LeadScore is the qualification result for a lead.
type LeadScore struct {
	ID         uuid.UUID     `json:"id"`
	LeadID     string        `json:"lead_id"`
	OverallFit int           `json:"overall_fit"`
	SubScores  LeadSubScores `json:"sub_scores"`
	Reasons    []string      `json:"reasons"`
	ComputedAt time.Time     `json:"computed_at"`
}
