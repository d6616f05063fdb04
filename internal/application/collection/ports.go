package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
)

// Upserter merges one normalized candidate into the business store
type Upserter interface {
	Upsert(ctx context.Context, f business.Fields) (uuid.UUID, business.Outcome, error)
}

// Enqueuer queues a newly created business for scoring without waiting for it
type Enqueuer interface {
	Enqueue(ctx context.Context, businessID uuid.UUID) error
}

// Archiver keeps the raw candidates an adapter yielded during a run
type Archiver interface {
	Archive(ctx context.Context, runID uuid.UUID, adapter string, candidates []business.Candidate) error
}

// Candidate outcomes reported to Metrics
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics receives pipeline measurements
type Metrics interface {
	RecordCandidate(ctx context.Context, adapter, outcome string)
	RecordAdapterError(ctx context.Context, adapter string)
	RecordRun(ctx context.Context, source, status string, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordCandidate(context.Context, string, string) {}
func (nopMetrics) RecordAdapterError(context.Context, string) {}
func (nopMetrics) RecordRun(context.Context, string, string, time.Duration) {}
