package collection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// sliceAdapter yields a fixed list of candidates, then returns err
type sliceAdapter struct {
	name       string
	candidates []business.Candidate
	err        error
	panicAfter bool
	block      bool
	onYield    func(i int)
}

func (a *sliceAdapter) Name() string { return a.name }

func (a *sliceAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	for i, c := range a.candidates {
		if err := yield(c); err != nil {
			return err
		}
		if a.onYield != nil {
			a.onYield(i)
		}
	}
	if a.panicAfter {
		panic("selector returned nil node")
	}
	if a.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return a.err
}

// fakeUpserter creates on first sight of a key and updates afterwards
type fakeUpserter struct {
	mu      sync.Mutex
	ids     map[string]uuid.UUID
	calls   int
	failAt  int
	failErr error
}

func newFakeUpserter() *fakeUpserter {
	return &fakeUpserter{ids: make(map[string]uuid.UUID)}
}

func (u *fakeUpserter) Upsert(_ context.Context, f business.Fields) (uuid.UUID, business.Outcome, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.failAt > 0 && u.calls >= u.failAt {
		return uuid.Nil, "", u.failErr
	}
	key := f.NameKey + "|" + string(f.Island)
	if id, ok := u.ids[key]; ok {
		return id, business.OutcomeUpdated, nil
	}
	id := uuid.New()
	u.ids[key] = id
	return id, business.OutcomeCreated, nil
}

// fakeRunRepository keeps runs in memory
type fakeRunRepository struct {
	mu        sync.Mutex
	runs      map[uuid.UUID]collection.Run
	creates   int
	saves     int
	createErr error
	saveErr   error
}

func newFakeRunRepository() *fakeRunRepository {
	return &fakeRunRepository{runs: make(map[uuid.UUID]collection.Run)}
}

func (r *fakeRunRepository) Create(_ context.Context, run *collection.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	r.runs[run.ID] = *run
	return nil
}

func (r *fakeRunRepository) Save(_ context.Context, run *collection.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.runs[run.ID] = *run
	return nil
}

func (r *fakeRunRepository) FindByID(_ context.Context, id uuid.UUID) (*collection.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &run, nil
}

func (r *fakeRunRepository) FindAll(context.Context, shared.Filter) ([]collection.Run, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRunRepository) Count(context.Context, shared.Filter) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *fakeRunRepository) FindRecent(context.Context, int) ([]collection.Run, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRunRepository) stored(id uuid.UUID) collection.Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id]
}

// recordingEnqueuer records every enqueue call
type recordingEnqueuer struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, id)
	return nil
}

func (e *recordingEnqueuer) enqueued() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]uuid.UUID(nil), e.ids...)
}

// recordingArchiver keeps archived batches by adapter
type recordingArchiver struct {
	mu      sync.Mutex
	batches map[string]int
}

func (a *recordingArchiver) Archive(_ context.Context, _ uuid.UUID, adapter string, candidates []business.Candidate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.batches == nil {
		a.batches = make(map[string]int)
	}
	a.batches[adapter] += len(candidates)
	return nil
}

// recordingMetrics counts recorded outcomes
type recordingMetrics struct {
	mu            sync.Mutex
	outcomes      map[string]int
	adapterErrors int
	runs          []string
}

func (m *recordingMetrics) RecordCandidate(_ context.Context, _ string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

func (m *recordingMetrics) RecordAdapterError(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapterErrors++
}

func (m *recordingMetrics) RecordRun(_ context.Context, _ string, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, status)
}
