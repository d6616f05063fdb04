package models

import (
	"time"

	"github.com/hawaiibiz/intel/internal/domain/collection"
)

// CollectionRunModel is the persistence model for a collection run
type CollectionRunModel struct {
	AggregateModel
	Source           string     `gorm:"type:varchar(50);not null;index"`
	StartedAt        time.Time  `gorm:"not null;index"`
	FinishedAt       *time.Time `gorm:"column:finished_at"`
	Found            int        `gorm:"column:businesses_found;not null;default:0"`
	Processed        int        `gorm:"column:businesses_processed;not null;default:0"`
	Added            int        `gorm:"column:businesses_added;not null;default:0"`
	Errors           int        `gorm:"column:errors;not null;default:0"`
	Status           string     `gorm:"type:varchar(20);not null;index"`
	ErrorDetailsJSON string     `gorm:"column:error_details;type:text;not null;default:'[]'"`
	DurationSeconds  float64    `gorm:"column:duration_seconds;not null;default:0"`
}

// TableName returns the table name for GORM
func (CollectionRunModel) TableName() string {
	return "collection_runs"
}

// ToDomain converts the model to a domain Run
func (m *CollectionRunModel) ToDomain() *collection.Run {
	return &collection.Run{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Source:            m.Source,
		StartedAt:         m.StartedAt,
		FinishedAt:        m.FinishedAt,
		Found:             m.Found,
		Processed:         m.Processed,
		Added:             m.Added,
		Errors:            m.Errors,
		Status:            collection.RunStatus(m.Status),
		ErrorDetails:      decodeStrings(m.ErrorDetailsJSON),
		DurationSeconds:   m.DurationSeconds,
	}
}

// CollectionRunModelFromDomain creates a persistence model from a domain Run
func CollectionRunModelFromDomain(r *collection.Run) *CollectionRunModel {
	m := &CollectionRunModel{
		Source:           r.Source,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		Found:            r.Found,
		Processed:        r.Processed,
		Added:            r.Added,
		Errors:           r.Errors,
		Status:           string(r.Status),
		ErrorDetailsJSON: encodeStrings(r.ErrorDetails),
		DurationSeconds:  r.DurationSeconds,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
