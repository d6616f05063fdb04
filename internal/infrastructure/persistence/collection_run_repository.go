package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRunRepository implements collection.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

var _ collection.RunRepository = (*GormRunRepository)(nil)

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Create inserts a new run
func (r *GormRunRepository) Create(ctx context.Context, run *collection.Run) error {
	return r.db.WithContext(ctx).Create(models.CollectionRunModelFromDomain(run)).Error
}

// Save writes the current counters and status of a run
func (r *GormRunRepository) Save(ctx context.Context, run *collection.Run) error {
	model := models.CollectionRunModelFromDomain(run)
	result := r.db.WithContext(ctx).
		Model(&models.CollectionRunModel{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{
			"finished_at":          model.FinishedAt,
			"businesses_found":     model.Found,
			"businesses_processed": model.Processed,
			"businesses_added":     model.Added,
			"errors":               model.Errors,
			"status":               model.Status,
			"error_details":        model.ErrorDetailsJSON,
			"duration_seconds":     model.DurationSeconds,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a run by its ID
func (r *GormRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Run, error) {
	var model models.CollectionRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists runs, newest first unless the filter says otherwise
func (r *GormRunRepository) FindAll(ctx context.Context, filter shared.Filter) ([]collection.Run, error) {
	var rows []models.CollectionRunModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CollectionRunModel{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, CollectionRunSortFields, "started_at")
	query = query.Order(fmt.Sprintf("%s %s", orderBy, ValidateSortOrder(filter.OrderDir)))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return runsToDomain(rows), nil
}

// Count counts runs matching the filter
func (r *GormRunRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CollectionRunModel{}), filter).Count(&count).Error
	return count, err
}

// FindRecent returns the latest runs by start time
func (r *GormRunRepository) FindRecent(ctx context.Context, limit int) ([]collection.Run, error) {
	var rows []models.CollectionRunModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return runsToDomain(rows), nil
}

func (r *GormRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters["status"].(string); ok && v != "" {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["source"].(string); ok && v != "" {
		query = query.Where("source = ?", v)
	}
	return query
}

func runsToDomain(rows []models.CollectionRunModel) []collection.Run {
	out := make([]collection.Run, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
