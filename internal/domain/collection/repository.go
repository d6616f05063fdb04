package collection

import (
	"context"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// RunRepository persists collection runs
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	// Save persists a finalized run
	Save(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Run, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]Run, error)
}
