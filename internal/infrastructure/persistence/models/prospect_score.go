package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/shopspring/decimal"
)

// ProspectScoreModel is the persistence model for a prospect score.
// business_id is unique: one score per business.
type ProspectScoreModel struct {
	BaseModel
	BusinessID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Score                   int             `gorm:"not null;index"`
	Summary                 string          `gorm:"type:text"`
	PainPointsJSON          string          `gorm:"column:pain_points;type:text;not null;default:'[]'"`
	RecommendedServicesJSON string          `gorm:"column:recommended_services;type:text;not null;default:'[]'"`
	EstimatedDealValue      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrowthSignalsJSON       string          `gorm:"column:growth_signals;type:text;not null;default:'[]'"`
	TechnologyReadiness     string          `gorm:"type:varchar(20)"`
	OutreachStrategy        string          `gorm:"type:text"`
	DecisionMakersJSON      string          `gorm:"column:decision_makers;type:text;not null;default:'[]'"`
	PriorityLevel           string          `gorm:"type:varchar(20);not null;index"`
	Fallback                bool            `gorm:"not null;default:false"`
	LastAnalyzedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProspectScoreModel) TableName() string {
	return "prospect_scores"
}

// ToDomain converts the model to a domain Score
func (m *ProspectScoreModel) ToDomain() *prospect.Score {
	return &prospect.Score{
		ID:         m.ID,
		BusinessID: m.BusinessID,
		Analysis: prospect.Analysis{
			Score:               m.Score,
			Summary:             m.Summary,
			PainPoints:          decodeStrings(m.PainPointsJSON),
			RecommendedServices: decodeStrings(m.RecommendedServicesJSON),
			EstimatedDealValue:  m.EstimatedDealValue,
			GrowthSignals:       decodeStrings(m.GrowthSignalsJSON),
			TechnologyReadiness: prospect.ParseReadiness(m.TechnologyReadiness),
			OutreachStrategy:    m.OutreachStrategy,
			DecisionMakers:      decodeStrings(m.DecisionMakersJSON),
			Fallback:            m.Fallback,
		},
		PriorityLevel:  prospect.PriorityLevel(m.PriorityLevel),
		LastAnalyzedAt: m.LastAnalyzedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ProspectScoreModelFromDomain creates a persistence model from a domain Score
func ProspectScoreModelFromDomain(s *prospect.Score) *ProspectScoreModel {
	a := s.Analysis
	return &ProspectScoreModel{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		BusinessID:              s.BusinessID,
		Score:                   a.Score,
		Summary:                 a.Summary,
		PainPointsJSON:          encodeStrings(a.PainPoints),
		RecommendedServicesJSON: encodeStrings(a.RecommendedServices),
		EstimatedDealValue:      a.EstimatedDealValue,
		GrowthSignalsJSON:       encodeStrings(a.GrowthSignals),
		TechnologyReadiness:     string(a.TechnologyReadiness),
		OutreachStrategy:        a.OutreachStrategy,
		DecisionMakersJSON:      encodeStrings(a.DecisionMakers),
		PriorityLevel:           string(s.PriorityLevel),
		Fallback:                a.Fallback,
		LastAnalyzedAt:          s.LastAnalyzedAt,
	}
}
