package prospect

import (
	"context"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows prospect listings
type Filter struct {
	shared.Filter
	Priority PriorityLevel
	MinScore int
}

// Summary aggregates the scored pipeline
type Summary struct {
	TotalProspects     int64
	AverageScore       float64
	HighPriorityCount  int64
	TotalPipelineValue decimal.Decimal
}

// Repository persists prospect scores
type Repository interface {
	// Upsert stores the score, replacing a previous one for the same business
	Upsert(ctx context.Context, s *Score) error
	FindByBusinessID(ctx context.Context, businessID uuid.UUID) (*Score, error)
	FindAll(ctx context.Context, filter Filter) ([]Score, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Summarize(ctx context.Context, highPriorityThreshold int) (Summary, error)
}
