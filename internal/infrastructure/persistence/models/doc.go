// Package models contains the GORM persistence models for businesses,
// collection runs and prospect scores. They are kept apart from the domain
// entities so the domain layer stays free of ORM tags; each model has
// FromDomain / ToDomain mappers used by the repositories.
//
// List-valued fields (sources, growth signals, error details, pain points)
// are stored as JSON array text columns.
package models
