// Package lead qualifies companies as recruitment leads.
package lead

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/fitscore/internal/scoring"
	"github.com/jonathan/fitscore/internal/types"
)

// Sub-score names used in the lead weight table
const (
	FactorFinancialHealth      = "financialHealth"
	FactorHiringUrgency        = "hiringUrgency"
	FactorRelocationSupport    = "relocationSupport"
	FactorCommunicationQuality = "communicationQuality"
	FactorIndustryMatch        = "industryMatch"
	FactorSizeCompatibility    = "sizeCompatibility"
)

// Relocation support bonuses on top of the base score
const (
	relocationBase      = 50
	relocationOffered   = 25
	relocationHousing   = 15
	relocationVisa      = 10
	relocationTransport = 10
	relocationLanguage  = 5
)

// Reason thresholds
const (
	strongSignal = 80
	weakSignal   = 60
)

// DefaultWeights returns the lead weight table.
func DefaultWeights() scoring.Weights {
	return scoring.Weights{
		FactorFinancialHealth:      0.20,
		FactorHiringUrgency:        0.20,
		FactorRelocationSupport:    0.20,
		FactorCommunicationQuality: 0.15,
		FactorIndustryMatch:        0.15,
		FactorSizeCompatibility:    0.10,
	}
}

// DefaultIndustries returns the industries that recruit internationally most readily.
func DefaultIndustries() []string {
	return []string{
		"healthcare",
		"hospitality",
		"construction",
		"manufacturing",
		"logistics",
		"agriculture",
		"technology",
		"engineering",
	}
}

// Qualifier scores lead records against a weight table and an industry allow-list.
type Qualifier struct {
	weights    scoring.Weights
	industries map[string]bool
}

// NewQualifier creates a Qualifier. Nil weights or industries fall back to the defaults.
func NewQualifier(weights scoring.Weights, industries []string) (*Qualifier, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lead weights: %w", err)
	}
	if industries == nil {
		industries = DefaultIndustries()
	}

	allow := make(map[string]bool, len(industries))
	for _, industry := range industries {
		allow[normalize(industry)] = true
	}

	return &Qualifier{weights: weights, industries: allow}, nil
}

// Score computes the sub-scores, overall fit and reasons for a lead. It does not apply a
// qualification threshold.
func (q *Qualifier) Score(lead *types.LeadProfile) (types.LeadSubScores, int, []string) {
	sub := types.LeadSubScores{
		FinancialHealth:      FinancialHealth(lead.AnnualRevenue),
		HiringUrgency:        HiringUrgency(lead.OpenPositions),
		RelocationSupport:    RelocationSupport(lead),
		CommunicationQuality: CommunicationQuality(lead.AvgResponseHours),
		IndustryMatch:        q.IndustryMatch(lead.Industry),
		SizeCompatibility:    SizeCompatibility(lead.Size),
	}

	overall := scoring.Combine(map[string]int{
		FactorFinancialHealth:      sub.FinancialHealth,
		FactorHiringUrgency:        sub.HiringUrgency,
		FactorRelocationSupport:    sub.RelocationSupport,
		FactorCommunicationQuality: sub.CommunicationQuality,
		FactorIndustryMatch:        sub.IndustryMatch,
		FactorSizeCompatibility:    sub.SizeCompatibility,
	}, q.weights)

	return sub, overall, reasons(lead, sub)
}

// FinancialHealth scales annual revenue so that 10M or more scores 100. Unknown revenue is neutral.
func FinancialHealth(revenue float64) int {
	if revenue <= 0 || math.IsNaN(revenue) {
		return scoring.Neutral
	}
	return int(math.Min(100, math.Round(revenue/1_000_000*10)))
}

// HiringUrgency grows by 10 per open position from a base of 50.
func HiringUrgency(openPositions int) int {
	if openPositions < 0 {
		openPositions = 0
	}
	return min(100, 50+10*openPositions)
}

// RelocationSupport adds a bonus per support measure to a base of 50.
func RelocationSupport(lead *types.LeadProfile) int {
	score := relocationBase
	if lead.OffersRelocation {
		score += relocationOffered
	}
	if lead.ProvidesHousing {
		score += relocationHousing
	}
	if lead.HelpsWithVisa {
		score += relocationVisa
	}
	if lead.TransportSupport {
		score += relocationTransport
	}
	if lead.LanguageTraining {
		score += relocationLanguage
	}
	return min(100, score)
}

// CommunicationQuality buckets the average response time in hours. Unknown scores 60.
func CommunicationQuality(hours float64) int {
	switch {
	case hours <= 0:
		return 60
	case hours <= 24:
		return 90
	case hours <= 72:
		return 70
	default:
		return 50
	}
}

// IndustryMatch is 90 for allow-listed industries and 70 otherwise.
func (q *Qualifier) IndustryMatch(industry string) int {
	if q.industries[normalize(industry)] {
		return 90
	}
	return 70
}

// SizeCompatibility looks up the company size bucket. Unknown sizes are neutral.
func SizeCompatibility(size types.CompanySize) int {
	switch types.CompanySize(normalize(string(size))) {
	case types.SizeSmall:
		return 70
	case types.SizeMedium:
		return 85
	case types.SizeLarge:
		return 95
	default:
		return scoring.Neutral
	}
}

// reasons explains every strong and weak signal. The result is never nil.
func reasons(lead *types.LeadProfile, sub types.LeadSubScores) []string {
	out := make([]string, 0)

	if sub.FinancialHealth >= strongSignal {
		out = append(out, "Strong financial health")
	} else if sub.FinancialHealth < weakSignal && lead.AnnualRevenue > 0 {
		out = append(out, "Limited financial indicators")
	}

	if sub.HiringUrgency >= strongSignal {
		out = append(out, fmt.Sprintf("Actively hiring (%d open positions)", lead.OpenPositions))
	} else if lead.OpenPositions == 0 {
		out = append(out, "No open positions listed")
	}

	if sub.RelocationSupport >= strongSignal {
		out = append(out, "Comprehensive relocation support")
	} else if sub.RelocationSupport == relocationBase {
		out = append(out, "No relocation support offered")
	}

	if sub.CommunicationQuality >= strongSignal {
		out = append(out, "Responsive communication")
	} else if sub.CommunicationQuality < weakSignal {
		out = append(out, "Slow response times")
	}

	if sub.IndustryMatch >= strongSignal {
		out = append(out, fmt.Sprintf("Industry %q is a recruitment focus", lead.Industry))
	}

	if sub.SizeCompatibility >= strongSignal {
		out = append(out, fmt.Sprintf("Company size (%s) suits placement volume", lead.Size))
	}

	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
