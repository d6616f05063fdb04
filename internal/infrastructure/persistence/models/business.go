package models

import (
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/shopspring/decimal"
)

// BusinessModel is the persistence model for the Business aggregate.
// (name_key, island) carries the unique index that backs deduplication.
type BusinessModel struct {
	AggregateModel
	Name                  string           `gorm:"type:varchar(255);not null"`
	NameKey               string           `gorm:"column:name_key;type:varchar(255);not null;uniqueIndex:uq_businesses_name_key_island,priority:1"`
	Island                string           `gorm:"type:varchar(20);not null;uniqueIndex:uq_businesses_name_key_island,priority:2;index"`
	Industry              string           `gorm:"type:varchar(40);not null;default:'Other';index"`
	Address               string           `gorm:"type:varchar(500)"`
	Phone                 string           `gorm:"type:varchar(20)"`
	Website               string           `gorm:"type:varchar(500)"`
	EmployeeCountEstimate *int             `gorm:"column:employee_count_estimate"`
	AnnualRevenueEstimate *decimal.Decimal `gorm:"column:annual_revenue_estimate;type:decimal(18,2)"`
	Description           string           `gorm:"type:text"`
	SourcesJSON           string           `gorm:"column:sources;type:text;not null;default:'[]'"`
	SourceURL             string           `gorm:"column:source_url;type:varchar(1000)"`
	GrowthSignalsJSON     string           `gorm:"column:growth_signals;type:text;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (BusinessModel) TableName() string {
	return "businesses"
}

// ToDomain converts the model to a domain Business
func (m *BusinessModel) ToDomain() *business.Business {
	return &business.Business{
		BaseAggregateRoot:     m.ToDomainAggregate(),
		Name:                  m.Name,
		NameKey:               m.NameKey,
		Island:                business.Island(m.Island),
		Industry:              business.Industry(m.Industry),
		Address:               m.Address,
		Phone:                 m.Phone,
		Website:               m.Website,
		EmployeeCountEstimate: m.EmployeeCountEstimate,
		AnnualRevenueEstimate: m.AnnualRevenueEstimate,
		Description:           m.Description,
		Sources:               decodeStrings(m.SourcesJSON),
		SourceURL:             m.SourceURL,
		GrowthSignals:         decodeStrings(m.GrowthSignalsJSON),
	}
}

// BusinessModelFromDomain creates a persistence model from a domain Business
func BusinessModelFromDomain(b *business.Business) *BusinessModel {
	m := &BusinessModel{
		Name:                  b.Name,
		NameKey:               b.NameKey,
		Island:                string(b.Island),
		Industry:              string(b.Industry),
		Address:               b.Address,
		Phone:                 b.Phone,
		Website:               b.Website,
		EmployeeCountEstimate: b.EmployeeCountEstimate,
		AnnualRevenueEstimate: b.AnnualRevenueEstimate,
		Description:           b.Description,
		SourcesJSON:           encodeStrings(b.Sources),
		SourceURL:             b.SourceURL,
		GrowthSignalsJSON:     encodeStrings(b.GrowthSignals),
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// UpdateColumns lists the columns written by a merge. A map is used so
// that cleared pointers are written too.
func (m *BusinessModel) UpdateColumns() map[string]any {
	return map[string]any{
		"name":                    m.Name,
		"industry":                m.Industry,
		"address":                 m.Address,
		"phone":                   m.Phone,
		"website":                 m.Website,
		"employee_count_estimate": m.EmployeeCountEstimate,
		"annual_revenue_estimate": m.AnnualRevenueEstimate,
		"description":             m.Description,
		"sources":                 m.SourcesJSON,
		"source_url":              m.SourceURL,
		"growth_signals":          m.GrowthSignalsJSON,
		"version":                 m.Version,
		"updated_at":              m.UpdatedAt,
	}
}
