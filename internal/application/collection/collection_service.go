package collection

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"go.uber.org/zap"
)

// CollectionService triggers runs and serves run history. At most one run
// is in flight per service.
type CollectionService struct {
	orchestrator *Orchestrator
	registry     *Registry
	runs         collection.RunRepository
	logger       *zap.Logger

	running atomic.Bool
	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// NewCollectionService creates a CollectionService
func NewCollectionService(orchestrator *Orchestrator, registry *Registry, runs collection.RunRepository, logger *zap.Logger) *CollectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &CollectionService{
		orchestrator: orchestrator,
		registry:     registry,
		runs:         runs,
		logger:       logger.Named("collection"),
		baseCtx:      ctx,
		stop:         stop,
	}
}

// Sources lists the adapter names a run can be triggered for, "all" first
func (s *CollectionService) Sources() []string {
	return append([]string{SourceAll}, s.registry.Names()...)
}

// TriggerRun runs source to completion and returns the finalized run
func (s *CollectionService) TriggerRun(ctx context.Context, source string) (*RunResponse, error) {
	adapters, label, err := s.registry.Resolve(source)
	if err != nil {
		return nil, err
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, collection.ErrRunInProgress
	}
	defer s.running.Store(false)

	run, err := s.orchestrator.Run(ctx, adapters, label)
	if run == nil {
		return nil, err
	}
	resp := ToRunResponse(run)
	return &resp, err
}

// StartRun creates the run record and executes it in the background. The
// returned snapshot is the run as persisted before any adapter started.
func (s *CollectionService) StartRun(ctx context.Context, source string) (*RunResponse, error) {
	adapters, label, err := s.registry.Resolve(source)
	if err != nil {
		return nil, err
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, collection.ErrRunInProgress
	}

	run, err := s.orchestrator.Begin(ctx, label)
	if err != nil {
		s.running.Store(false)
		return nil, err
	}
	snapshot := ToRunResponse(run)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		if err := s.orchestrator.Execute(s.baseCtx, run, adapters); err != nil {
			s.logger.Error("Background collection run failed",
				zap.String("run_id", run.ID.String()), zap.Error(err))
		}
	}()
	return &snapshot, nil
}

// InProgress reports whether a run is executing
func (s *CollectionService) InProgress() bool {
	return s.running.Load()
}

// RunAll is the daily trigger entry point
func (s *CollectionService) RunAll(ctx context.Context) error {
	_, err := s.TriggerRun(ctx, SourceAll)
	return err
}

// Shutdown cancels a background run and waits for it to be finalized
func (s *CollectionService) Shutdown(ctx context.Context) error {
	s.stop()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetRun returns one run
func (s *CollectionService) GetRun(ctx context.Context, id uuid.UUID) (*RunResponse, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRunResponse(run)
	return &resp, nil
}

// ListRuns returns one page of runs, newest first by default
func (s *CollectionService) ListRuns(ctx context.Context, filter RunListFilter) (shared.Paginated[RunResponse], error) {
	df := shared.DefaultFilter()
	df.OrderBy = "started_at"
	if filter.Page > 0 {
		df.Page = filter.Page
	}
	if filter.PageSize > 0 {
		df.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		df.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		df.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		df.Filters["status"] = filter.Status
	}
	if filter.Source != "" {
		df.Filters["source"] = filter.Source
	}

	runs, err := s.runs.FindAll(ctx, df)
	if err != nil {
		return shared.Paginated[RunResponse]{}, err
	}
	total, err := s.runs.Count(ctx, df)
	if err != nil {
		return shared.Paginated[RunResponse]{}, err
	}

	out := make([]RunResponse, len(runs))
	for i := range runs {
		out[i] = ToRunResponse(&runs[i])
	}
	return shared.NewPaginated(out, total, df.Page, df.PageSize), nil
}
