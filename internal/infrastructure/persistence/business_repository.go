package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBusinessRepository implements business.Repository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

var _ business.Repository = (*GormBusinessRepository)(nil)

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByID finds a business by its ID
func (r *GormBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	var model models.BusinessModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKey finds a business by its dedup key
func (r *GormBusinessRepository) FindByKey(ctx context.Context, nameKey string, island business.Island) (*business.Business, error) {
	var model models.BusinessModel
	err := r.db.WithContext(ctx).
		Where("name_key = ? AND island = ?", nameKey, string(island)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds businesses matching the filter, one page at a time
func (r *GormBusinessRepository) FindAll(ctx context.Context, filter business.Filter) ([]business.Business, error) {
	var rows []models.BusinessModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BusinessModel{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, BusinessSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("businesses.%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]business.Business, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts businesses matching the filter
func (r *GormBusinessRepository) Count(ctx context.Context, filter business.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.BusinessModel{}), filter).
		Count(&count).Error
	return count, err
}

func (r *GormBusinessRepository) applyFilter(query *gorm.DB, filter business.Filter) *gorm.DB {
	if filter.Search != "" {
		// name_key is already folded, so searching it ignores case,
		// diacritics and okina.
		like := "%" + business.NameKey(filter.Search) + "%"
		query = query.Where("businesses.name_key LIKE ?", like)
	}
	if filter.Island != "" {
		query = query.Where("businesses.island = ?", string(filter.Island))
	}
	if filter.Industry != "" {
		query = query.Where("businesses.industry = ?", string(filter.Industry))
	}
	if filter.MinScore > 0 {
		query = query.
			Joins("JOIN prospect_scores ON prospect_scores.business_id = businesses.id").
			Where("prospect_scores.score >= ?", filter.MinScore)
	}
	return query
}

// Create inserts a new business. A taken (name_key, island) returns business.ErrDuplicateKey.
func (r *GormBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	model := models.BusinessModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", business.ErrDuplicateKey, b.NameKey, b.Island)
		}
		return err
	}
	return nil
}

// Update writes a merged business with optimistic locking. The caller has
// already incremented the version; the stored row must still be at Version-1.
func (r *GormBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	model := models.BusinessModelFromDomain(b)
	result := r.db.WithContext(ctx).
		Model(&models.BusinessModel{}).
		Where("id = ? AND version = ?", b.ID, b.Version-1).
		Updates(model.UpdateColumns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).Model(&models.BusinessModel{}).Where("id = ?", b.ID).Count(&count)
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindUnscored returns the IDs of businesses without a prospect score, oldest first
func (r *GormBusinessRepository) FindUnscored(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.db.WithContext(ctx).
		Model(&models.BusinessModel{}).
		Joins("LEFT JOIN prospect_scores ON prospect_scores.business_id = businesses.id").
		Where("prospect_scores.id IS NULL").
		Order("businesses.created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("businesses.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (r *GormBusinessRepository) countBy(ctx context.Context, column string) ([]groupCount, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&models.BusinessModel{}).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

// CountByIsland returns the number of businesses per island
func (r *GormBusinessRepository) CountByIsland(ctx context.Context) (map[business.Island]int64, error) {
	rows, err := r.countBy(ctx, "island")
	if err != nil {
		return nil, err
	}
	out := make(map[business.Island]int64, len(rows))
	for _, row := range rows {
		out[business.Island(row.GroupKey)] = row.Total
	}
	return out, nil
}

// CountByIndustry returns the number of businesses per industry
func (r *GormBusinessRepository) CountByIndustry(ctx context.Context) (map[business.Industry]int64, error) {
	rows, err := r.countBy(ctx, "industry")
	if err != nil {
		return nil, err
	}
	out := make(map[business.Industry]int64, len(rows))
	for _, row := range rows {
		out[business.Industry(row.GroupKey)] = row.Total
	}
	return out, nil
}

// WithTx runs fn in a transaction with a repository bound to it
func (r *GormBusinessRepository) WithTx(ctx context.Context, fn func(repo business.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBusinessRepository{db: tx})
	})
}
