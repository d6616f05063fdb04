package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProspectRepository implements prospect.Repository using GORM
type GormProspectRepository struct {
	db *gorm.DB
}

var _ prospect.Repository = (*GormProspectRepository)(nil)

// NewGormProspectRepository creates a new GormProspectRepository
func NewGormProspectRepository(db *gorm.DB) *GormProspectRepository {
	return &GormProspectRepository{db: db}
}

// Upsert inserts the score or replaces the existing score of the same business.
// The original row ID and created_at are kept on conflict.
func (r *GormProspectRepository) Upsert(ctx context.Context, s *prospect.Score) error {
	model := models.ProspectScoreModelFromDomain(s)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "business_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "summary", "pain_points", "recommended_services",
			"estimated_deal_value", "growth_signals", "technology_readiness",
			"outreach_strategy", "decision_makers", "priority_level", "fallback",
			"last_analyzed_at", "updated_at",
		}),
	}).Create(model).Error
}

// FindByBusinessID returns the score for a business
func (r *GormProspectRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID) (*prospect.Score, error) {
	var model models.ProspectScoreModel
	if err := r.db.WithContext(ctx).First(&model, "business_id = ?", businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists scores, highest score first by default
func (r *GormProspectRepository) FindAll(ctx context.Context, filter prospect.Filter) ([]prospect.Score, error) {
	var rows []models.ProspectScoreModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProspectScoreModel{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, ProspectScoreSortFields, "score")
	query = query.Order(fmt.Sprintf("%s %s", orderBy, ValidateSortOrder(filter.OrderDir)))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]prospect.Score, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts scores matching the filter
func (r *GormProspectRepository) Count(ctx context.Context, filter prospect.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProspectScoreModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormProspectRepository) applyFilter(query *gorm.DB, filter prospect.Filter) *gorm.DB {
	if filter.Priority != "" {
		query = query.Where("priority_level = ?", string(filter.Priority))
	}
	if filter.MinScore > 0 {
		query = query.Where("score >= ?", filter.MinScore)
	}
	return query
}

type summaryRow struct {
	Total     int64
	AvgScore  float64
	High      int64
	DealValue decimal.NullDecimal
}

// Summarize aggregates the scored pipeline in one query
func (r *GormProspectRepository) Summarize(ctx context.Context, highPriorityThreshold int) (prospect.Summary, error) {
	var row summaryRow
	err := r.db.WithContext(ctx).
		Model(&models.ProspectScoreModel{}).
		Select(`COUNT(*) AS total,
			COALESCE(AVG(score), 0) AS avg_score,
			COALESCE(SUM(CASE WHEN score >= ? THEN 1 ELSE 0 END), 0) AS high,
			SUM(estimated_deal_value) AS deal_value`, highPriorityThreshold).
		Scan(&row).Error
	if err != nil {
		return prospect.Summary{}, err
	}

	value := decimal.Zero
	if row.DealValue.Valid {
		value = row.DealValue.Decimal
	}
	return prospect.Summary{
		TotalProspects:     row.Total,
		AverageScore:       row.AvgScore,
		HighPriorityCount:  row.High,
		TotalPipelineValue: value,
	}, nil
}
