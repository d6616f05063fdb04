package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// JobSubmitter hands a scoring job to the worker pool without blocking
type JobSubmitter interface {
	Submit(businessID uuid.UUID, reason scheduler.JobReason) error
}

// Queue enqueues businesses for scoring at most once per guard TTL.
// The guard is claimed before submitting and released if the submit fails,
// so a full queue does not swallow the business.
type Queue struct {
	submitter JobSubmitter
	guard     shared.IdempotencyStore
	ttl       time.Duration
	logger    *zap.Logger
}

// NewQueue creates a Queue
func NewQueue(submitter JobSubmitter, guard shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *Queue {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		submitter: submitter,
		guard:     guard,
		ttl:       ttl,
		logger:    logger.Named("scoring_queue"),
	}
}

func guardKey(id uuid.UUID) string {
	return "score:" + id.String()
}

// Enqueue queues id for scoring unless it was already queued. It never
// waits for the score itself.
func (q *Queue) Enqueue(ctx context.Context, id uuid.UUID) error {
	return q.enqueue(ctx, id, scheduler.JobReasonCollected)
}

func (q *Queue) enqueue(ctx context.Context, id uuid.UUID, reason scheduler.JobReason) error {
	key := guardKey(id)
	first, err := q.guard.MarkProcessed(ctx, key, q.ttl)
	if err != nil {
		return fmt.Errorf("enqueue guard: %w", err)
	}
	if !first {
		q.logger.Debug("Business already queued for scoring", zap.String("business_id", id.String()))
		return nil
	}

	if err := q.submitter.Submit(id, reason); err != nil {
		// ctx may already be cancelled here.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if relErr := q.guard.Release(releaseCtx, key); relErr != nil {
			err = errors.Join(err, fmt.Errorf("release guard: %w", relErr))
		}
		return fmt.Errorf("submit scoring job: %w", err)
	}
	return nil
}

// Resubmit queues id regardless of the guard and refreshes the guard mark
func (q *Queue) Resubmit(ctx context.Context, id uuid.UUID, reason scheduler.JobReason) error {
	if err := q.guard.Release(ctx, guardKey(id)); err != nil {
		return fmt.Errorf("enqueue guard: %w", err)
	}
	return q.enqueue(ctx, id, reason)
}
