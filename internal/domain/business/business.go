package business

import (
	"time"
	"unicode/utf8"

	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Outcome of an upsert
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// Business is the canonical, deduplicated entity. (NameKey, Island) is unique.
type Business struct {
	shared.BaseAggregateRoot
	Name                  string
	NameKey               string
	Island                Island
	Industry              Industry
	Address               string
	Phone                 string
	Website               string
	EmployeeCountEstimate *int
	AnnualRevenueEstimate *decimal.Decimal
	Description           string
	Sources               []string
	SourceURL             string
	GrowthSignals         []string
}

// NewBusiness creates a business from normalized fields
func NewBusiness(f Fields, now time.Time) (*Business, error) {
	if f.NameKey == "" || f.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	if !f.Island.IsValid() {
		return nil, shared.NewDomainError("INVALID_ISLAND", "Unknown island value: "+string(f.Island))
	}
	industry := f.Industry
	if !industry.IsValid() {
		industry = IndustryOther
	}

	b := &Business{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(now),
		Name:                  f.Name,
		NameKey:               f.NameKey,
		Island:                f.Island,
		Industry:              industry,
		Address:               f.Address,
		Phone:                 f.Phone,
		Website:               f.Website,
		EmployeeCountEstimate: copyInt(f.EmployeeCountEstimate),
		AnnualRevenueEstimate: copyDecimal(f.AnnualRevenueEstimate),
		Description:           f.Description,
		SourceURL:             f.SourceURL,
		GrowthSignals:         append([]string(nil), f.GrowthSignals...),
	}
	b.AddSource(f.Source)
	return b, nil
}

// MergeFrom applies the fill-only policy: a non-empty stored field is never
// overwritten, an empty one is filled from f. The description is the one
// exception and is replaced when the incoming text is strictly longer.
// Reports whether anything changed.
func (b *Business) MergeFrom(f Fields, now time.Time) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}

	fill(&b.Address, f.Address)
	fill(&b.Phone, f.Phone)
	fill(&b.Website, f.Website)
	fill(&b.SourceURL, f.SourceURL)

	if b.Industry == IndustryOther && f.Industry.IsValid() && f.Industry != IndustryOther {
		b.Industry = f.Industry
		changed = true
	}
	if b.EmployeeCountEstimate == nil && f.EmployeeCountEstimate != nil {
		b.EmployeeCountEstimate = copyInt(f.EmployeeCountEstimate)
		changed = true
	}
	if b.AnnualRevenueEstimate == nil {
		if est := f.AnnualRevenueEstimate; est != nil {
			b.AnnualRevenueEstimate = copyDecimal(est)
			changed = true
		} else if est := EstimateAnnualRevenue(b.EmployeeCountEstimate); est != nil {
			b.AnnualRevenueEstimate = est
			changed = true
		}
	}
	if utf8.RuneCountInString(f.Description) > utf8.RuneCountInString(b.Description) {
		b.Description = f.Description
		changed = true
	}
	for _, s := range f.GrowthSignals {
		if !contains(b.GrowthSignals, s) {
			b.GrowthSignals = append(b.GrowthSignals, s)
			changed = true
		}
	}
	if b.AddSource(f.Source) {
		changed = true
	}

	b.Touch(now)
	b.IncrementVersion()
	return changed
}

// AddSource records a contributing source once. Reports whether it was new.
func (b *Business) AddSource(source string) bool {
	if source == "" || contains(b.Sources, source) {
		return false
	}
	b.Sources = append(b.Sources, source)
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyDecimal(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
