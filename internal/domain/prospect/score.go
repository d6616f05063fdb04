package prospect

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriorityLevel buckets a score for the sales team
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "High"
	PriorityMedium PriorityLevel = "Medium"
	PriorityLow    PriorityLevel = "Low"
)

// Readiness is the analyst's view of a business's technology maturity
type Readiness string

const (
	ReadinessLow     Readiness = "Low"
	ReadinessMedium  Readiness = "Medium"
	ReadinessHigh    Readiness = "High"
	ReadinessUnknown Readiness = "Unknown"
)

// ParseReadiness maps free text onto Readiness, Unknown when unrecognized
func ParseReadiness(s string) Readiness {
	switch Readiness(s) {
	case ReadinessLow, ReadinessMedium, ReadinessHigh:
		return Readiness(s)
	}
	return ReadinessUnknown
}

// PriorityFor maps a 0..100 score onto a priority level
func PriorityFor(score int) PriorityLevel {
	switch {
	case score >= 80:
		return PriorityHigh
	case score >= 50:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Analysis is what the scoring collaborator returns for one business
type Analysis struct {
	Score               int
	Summary             string
	PainPoints          []string
	RecommendedServices []string
	EstimatedDealValue  decimal.Decimal
	GrowthSignals       []string
	TechnologyReadiness Readiness
	OutreachStrategy    string
	DecisionMakers      []string
	// Fallback is set when the analysis is the documented default rather
	// than a parsed model response.
	Fallback bool
}

// DefaultAnalysis is returned whenever the model output is unusable
func DefaultAnalysis() Analysis {
	return Analysis{
		Score:               0,
		Summary:             "Analysis failed - manual review required",
		PainPoints:          []string{},
		RecommendedServices: []string{},
		EstimatedDealValue:  decimal.Zero,
		GrowthSignals:       []string{},
		TechnologyReadiness: ReadinessUnknown,
		Fallback:            true,
	}
}

// Score is the persisted prospect score, 1:1 with a business
type Score struct {
	ID             uuid.UUID
	BusinessID     uuid.UUID
	Analysis       Analysis
	PriorityLevel  PriorityLevel
	LastAnalyzedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewScore wraps an analysis for a business, clamping the score to 0..100
func NewScore(businessID uuid.UUID, a Analysis, now time.Time) *Score {
	a.Score = clamp(a.Score, 0, 100)
	if a.EstimatedDealValue.IsNegative() {
		a.EstimatedDealValue = decimal.Zero
	}
	return &Score{
		ID:             uuid.New(),
		BusinessID:     businessID,
		Analysis:       a,
		PriorityLevel:  PriorityFor(a.Score),
		LastAnalyzedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsHighPriority reports whether the score meets threshold
func (s *Score) IsHighPriority(threshold int) bool {
	return s.Analysis.Score >= threshold
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
