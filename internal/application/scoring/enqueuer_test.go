package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/infrastructure/cache"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, sub JobSubmitter) (*Queue, *cache.InMemoryIdempotencyStore) {
	t.Helper()
	guard := cache.NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = guard.Close() })
	return NewQueue(sub, guard, time.Hour, nil), guard
}

func TestQueue_Enqueue_OncePerBusiness(t *testing.T) {
	sub := &recordingSubmitter{}
	q, _ := newTestQueue(t, sub)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, q.Enqueue(ctx, id))
	require.NoError(t, q.Enqueue(ctx, id))
	require.NoError(t, q.Enqueue(ctx, uuid.New()))

	jobs := sub.submitted()
	assert.Len(t, jobs, 2)
	assert.Equal(t, id, jobs[0])
}

func TestQueue_Enqueue_FailedSubmitReleasesGuard(t *testing.T) {
	sub := &recordingSubmitter{err: scheduler.ErrJobQueueFull}
	q, guard := newTestQueue(t, sub)
	ctx := context.Background()
	id := uuid.New()

	err := q.Enqueue(ctx, id)
	assert.ErrorIs(t, err, scheduler.ErrJobQueueFull)
	marked, err := guard.IsProcessed(ctx, guardKey(id))
	require.NoError(t, err)
	assert.False(t, marked)

	sub.err = nil
	require.NoError(t, q.Enqueue(ctx, id))
	assert.Equal(t, []uuid.UUID{id}, sub.submitted())
}

func TestQueue_Resubmit_BypassesGuard(t *testing.T) {
	sub := &recordingSubmitter{}
	q, _ := newTestQueue(t, sub)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, q.Enqueue(ctx, id))
	require.NoError(t, q.Resubmit(ctx, id, scheduler.JobReasonRescore))

	assert.Len(t, sub.submitted(), 2)
}
