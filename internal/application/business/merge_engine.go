package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MergeEngine upserts normalized candidates into the business store. Calls
// for the same (name key, island) are serialized in-process, each call runs
// in one transaction, and the store's unique index covers other processes.
type MergeEngine struct {
	repo  business.Repository
	locks *keyedMutex
	now   func() time.Time
	log   *zap.Logger
}

// MergeEngineOption configures a MergeEngine
type MergeEngineOption func(*MergeEngine)

// WithClock overrides the time source
func WithClock(now func() time.Time) MergeEngineOption {
	return func(e *MergeEngine) { e.now = now }
}

// NewMergeEngine creates a MergeEngine
func NewMergeEngine(repo business.Repository, log *zap.Logger, opts ...MergeEngineOption) *MergeEngine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &MergeEngine{
		repo:  repo,
		locks: newKeyedMutex(),
		now:   func() time.Time { return time.Now().UTC() },
		log:   log.Named("merge"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upsert creates the business for f or fill-only merges f into the stored
// one. Losing an insert race to another writer is resolved by merging into
// the winner's row, so that case reports OutcomeUpdated.
//
// Store failures are wrapped with shared.ErrPersistence.
func (e *MergeEngine) Upsert(ctx context.Context, f business.Fields) (uuid.UUID, business.Outcome, error) {
	if f.NameKey == "" {
		return uuid.Nil, "", fmt.Errorf("%w: fields have no name key", shared.ErrInvalidInput)
	}
	key := f.NameKey + "|" + string(f.Island)
	unlock := e.locks.Lock(key)
	defer unlock()

	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return uuid.Nil, "", err
		}
		id, outcome, err := e.upsertOnce(ctx, f)
		if err == nil {
			return id, outcome, nil
		}
		if !retryable(err) {
			return uuid.Nil, "", e.classify(key, err)
		}
		logger.Enrich(ctx, e.log).Debug("upsert lost a race, re-reading",
			zap.String("key", key), zap.Error(err))
		lastErr = err
	}
	return uuid.Nil, "", e.classify(key, lastErr)
}

func (e *MergeEngine) upsertOnce(ctx context.Context, f business.Fields) (uuid.UUID, business.Outcome, error) {
	var (
		id      uuid.UUID
		outcome business.Outcome
	)
	err := e.repo.WithTx(ctx, func(tx business.Repository) error {
		now := e.now()
		existing, err := tx.FindByKey(ctx, f.NameKey, f.Island)
		switch {
		case err == nil:
			existing.MergeFrom(f, now)
			if err := tx.Update(ctx, existing); err != nil {
				return err
			}
			id, outcome = existing.ID, business.OutcomeUpdated
			return nil
		case errors.Is(err, shared.ErrNotFound):
			b, err := business.NewBusiness(f, now)
			if err != nil {
				return err
			}
			if err := tx.Create(ctx, b); err != nil {
				return err
			}
			id, outcome = b.ID, business.OutcomeCreated
			return nil
		default:
			return err
		}
	})
	return id, outcome, err
}

func retryable(err error) bool {
	return errors.Is(err, business.ErrDuplicateKey) ||
		errors.Is(err, shared.ErrConcurrencyConflict) ||
		errors.Is(err, shared.ErrNotFound)
}

// classify passes domain rejections through and marks everything else as a
// persistence failure.
func (e *MergeEngine) classify(key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var de *shared.DomainError
	if errors.As(err, &de) && !retryable(err) {
		return err
	}
	return fmt.Errorf("upsert %s: %w: %w", key, shared.ErrPersistence, err)
}
