package business

import (
	"context"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// Filter narrows business listings
type Filter struct {
	shared.Filter
	Island   Island
	Industry Industry
	// MinScore keeps only businesses whose prospect score is at least this value
	MinScore int
}

// Repository is the persistence port for businesses
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)
	// FindByKey looks a business up by its dedup key; shared.ErrNotFound when absent.
	FindByKey(ctx context.Context, nameKey string, island Island) (*Business, error)
	FindAll(ctx context.Context, filter Filter) ([]Business, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Create inserts a new row; ErrDuplicateKey when the key is already taken.
	Create(ctx context.Context, b *Business) error
	Update(ctx context.Context, b *Business) error
	// FindUnscored lists businesses with no prospect score, oldest first.
	FindUnscored(ctx context.Context, limit int) ([]uuid.UUID, error)
	CountByIsland(ctx context.Context) (map[Island]int64, error)
	CountByIndustry(ctx context.Context) (map[Industry]int64, error)
	// WithTx runs fn inside one store transaction, handing it a
	// repository bound to that transaction.
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}
