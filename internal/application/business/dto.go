package business

import (
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/shopspring/decimal"
)

// BusinessListFilter represents query options for the business list
type BusinessListFilter struct {
	Search   string `form:"search" binding:"max=200"`
	Island   string `form:"island"`
	Industry string `form:"industry"`
	MinScore int    `form:"min_score" binding:"omitempty,min=0,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BusinessResponse represents a business in API responses
type BusinessResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	Island                string           `json:"island"`
	Industry              string           `json:"industry"`
	Address               string           `json:"address,omitempty"`
	Phone                 string           `json:"phone,omitempty"`
	Website               string           `json:"website,omitempty"`
	EmployeeCountEstimate *int             `json:"employee_count_estimate,omitempty"`
	AnnualRevenueEstimate *decimal.Decimal `json:"annual_revenue_estimate,omitempty"`
	Description           string           `json:"description,omitempty"`
	Sources               []string         `json:"sources"`
	SourceURL             string           `json:"source_url,omitempty"`
	GrowthSignals         []string         `json:"growth_signals"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
	Version               int              `json:"version"`
}

// BusinessDetailResponse is a business with its prospect score, when scored
type BusinessDetailResponse struct {
	BusinessResponse
	Score *ScoreResponse `json:"score,omitempty"`
}

// ScoreResponse represents a prospect score in API responses
type ScoreResponse struct {
	BusinessID          uuid.UUID       `json:"business_id"`
	Score               int             `json:"score"`
	PriorityLevel       string          `json:"priority_level"`
	Summary             string          `json:"summary"`
	PainPoints          []string        `json:"pain_points"`
	RecommendedServices []string        `json:"recommended_services"`
	EstimatedDealValue  decimal.Decimal `json:"estimated_deal_value"`
	GrowthSignals       []string        `json:"growth_signals"`
	TechnologyReadiness string          `json:"technology_readiness"`
	OutreachStrategy    string          `json:"outreach_strategy,omitempty"`
	DecisionMakers      []string        `json:"decision_makers"`
	Fallback            bool            `json:"fallback"`
	LastAnalyzedAt      time.Time       `json:"last_analyzed_at"`
}

// ToBusinessResponse converts a domain Business to BusinessResponse
func ToBusinessResponse(b *business.Business) BusinessResponse {
	return BusinessResponse{
		ID:                    b.ID,
		Name:                  b.Name,
		Island:                string(b.Island),
		Industry:              string(b.Industry),
		Address:               b.Address,
		Phone:                 b.Phone,
		Website:               b.Website,
		EmployeeCountEstimate: b.EmployeeCountEstimate,
		AnnualRevenueEstimate: b.AnnualRevenueEstimate,
		Description:           b.Description,
		Sources:               nonNil(b.Sources),
		SourceURL:             b.SourceURL,
		GrowthSignals:         nonNil(b.GrowthSignals),
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
		Version:               b.Version,
	}
}

// ToScoreResponse converts a domain Score to ScoreResponse
func ToScoreResponse(s *prospect.Score) *ScoreResponse {
	a := s.Analysis
	return &ScoreResponse{
		BusinessID:          s.BusinessID,
		Score:               a.Score,
		PriorityLevel:       string(s.PriorityLevel),
		Summary:             a.Summary,
		PainPoints:          nonNil(a.PainPoints),
		RecommendedServices: nonNil(a.RecommendedServices),
		EstimatedDealValue:  a.EstimatedDealValue,
		GrowthSignals:       nonNil(a.GrowthSignals),
		TechnologyReadiness: string(a.TechnologyReadiness),
		OutreachStrategy:    a.OutreachStrategy,
		DecisionMakers:      nonNil(a.DecisionMakers),
		Fallback:            a.Fallback,
		LastAnalyzedAt:      s.LastAnalyzedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
