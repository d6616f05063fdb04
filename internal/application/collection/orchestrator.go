package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DetailCancelled is the error detail of a run stopped by its caller
const DetailCancelled = "cancelled"

// OrchestratorConfig holds orchestration limits
type OrchestratorConfig struct {
	// AdapterConcurrency bounds how many adapters fetch at once
	AdapterConcurrency int
	// AdapterTimeout bounds one adapter's whole fetch; zero means no limit
	AdapterTimeout time.Duration
}

// Orchestrator drives adapters through validation, normalization and merge,
// and keeps the CollectionRun record for each pass.
type Orchestrator struct {
	config   OrchestratorConfig
	runs     collection.RunRepository
	upserter Upserter
	enqueuer Enqueuer
	archiver Archiver
	metrics  Metrics
	now      func() time.Time
	logger   *zap.Logger
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithArchiver stores each adapter's raw candidates after it finishes
func WithArchiver(a Archiver) OrchestratorOption {
	return func(o *Orchestrator) { o.archiver = a }
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(
	config OrchestratorConfig,
	runs collection.RunRepository,
	upserter Upserter,
	enqueuer Enqueuer,
	log *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if config.AdapterConcurrency < 1 {
		config.AdapterConcurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		config:   config,
		runs:     runs,
		upserter: upserter,
		enqueuer: enqueuer,
		metrics:  nopMetrics{},
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.Named("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one collection pass over adapters under the given label.
// Adapter failures, rejections and cancellation are recorded on the returned
// run; the only errors returned are store failures, wrapped with
// shared.ErrPersistence.
func (o *Orchestrator) Run(ctx context.Context, adapters []collection.Adapter, label string) (*collection.Run, error) {
	run, err := o.Begin(ctx, label)
	if err != nil {
		return nil, err
	}
	return run, o.Execute(ctx, run, adapters)
}

// Begin creates and persists a running CollectionRun
func (o *Orchestrator) Begin(ctx context.Context, label string) (*collection.Run, error) {
	run, err := collection.NewRun(label, o.now())
	if err != nil {
		return nil, err
	}
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("%w: create run: %w", shared.ErrPersistence, err)
	}
	return run, nil
}

// Execute runs adapters against a run created by Begin and finalizes it
func (o *Orchestrator) Execute(ctx context.Context, run *collection.Run, adapters []collection.Adapter) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "collection.run",
		telemetry.SpanAttrRunID, run.ID.String(),
		telemetry.SpanAttrSource, run.Source,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	ctx = logger.WithRunID(ctx, run.ID.String())
	log := logger.Enrich(ctx, o.logger)
	log.Info("Collection run started",
		zap.String("source", run.Source),
		zap.Int("adapters", len(adapters)),
	)

	st := &runState{run: run, seen: make(map[uuid.UUID]struct{})}
	runCtx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	var g errgroup.Group
	g.SetLimit(o.config.AdapterConcurrency)
	for _, a := range adapters {
		g.Go(func() error {
			telemetry.WithProfilingLabels(runCtx, telemetry.AdapterLabels(a.Name()), func(pctx context.Context) {
				o.runAdapter(pctx, ctx, st, a, abort)
			})
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil && !st.fatal() {
		st.markFatal(DetailCancelled)
	}

	// Work committed before a failure still gets scored.
	bg := context.WithoutCancel(ctx)
	o.enqueueCreated(bg, st.createdIDs())

	st.mu.Lock()
	finishErr := run.Finish(o.now())
	st.mu.Unlock()
	if finishErr != nil {
		return finishErr
	}
	telemetry.SetAttributes(span,
		"run.status", string(run.Status),
		"run.found", run.Found,
		"run.added", run.Added,
		"run.errors", run.Errors,
	)
	o.metrics.RecordRun(bg, run.Source, string(run.Status), time.Duration(run.DurationSeconds*float64(time.Second)))

	saveErr := o.runs.Save(bg, run)
	log.Info("Collection run finished",
		zap.String("status", string(run.Status)),
		zap.Int("found", run.Found),
		zap.Int("processed", run.Processed),
		zap.Int("added", run.Added),
		zap.Int("errors", run.Errors),
		zap.Float64("duration_seconds", run.DurationSeconds),
	)

	var errs []error
	if err := st.fatalError(); err != nil {
		errs = append(errs, err)
	}
	if saveErr != nil {
		log.Error("Failed to save collection run", zap.Error(saveErr))
		errs = append(errs, fmt.Errorf("%w: save run: %w", shared.ErrPersistence, saveErr))
	}
	return errors.Join(errs...)
}

// runAdapter fetches from one adapter in isolation. runCtx is cancelled when
// the run aborts; parent is the caller's context and tells a cancelled run
// apart from an adapter timeout.
func (o *Orchestrator) runAdapter(runCtx, parent context.Context, st *runState, a collection.Adapter, abort context.CancelCauseFunc) {
	name := a.Name()
	actx, span := telemetry.StartSpan(runCtx, "collection.adapter", telemetry.SpanAttrAdapter, name)
	defer span.End()
	actx = logger.WithAdapter(actx, name)
	if o.config.AdapterTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(actx, o.config.AdapterTimeout)
		defer cancel()
	}
	log := logger.Enrich(actx, o.logger)

	var batch []business.Candidate
	defer func() {
		if o.archiver == nil || len(batch) == 0 {
			return
		}
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(actx), 30*time.Second)
		defer cancel()
		if err := o.archiver.Archive(archiveCtx, st.run.ID, name, batch); err != nil {
			log.Warn("Failed to archive raw candidates", zap.Int("candidates", len(batch)), zap.Error(err))
		}
	}()

	started := time.Now()
	err := o.fetch(actx, a, func(c business.Candidate) error {
		if err := actx.Err(); err != nil {
			return err
		}
		batch = append(batch, c)
		return o.handleCandidate(actx, st, name, c, abort)
	})

	telemetry.SetAttributes(span, telemetry.SpanAttrCandidates, len(batch))
	telemetry.RecordError(span, err)
	switch {
	case err == nil:
		log.Info("Adapter finished", zap.Duration("elapsed", time.Since(started)))
	case st.fatal() || parent.Err() != nil:
		// The run-level outcome already covers this adapter.
	case errors.Is(err, context.DeadlineExceeded) && actx.Err() != nil:
		o.recordAdapterError(actx, st, name, fmt.Errorf("timed out after %s", o.config.AdapterTimeout))
	default:
		o.recordAdapterError(actx, st, name, err)
	}
}

// fetch calls a.Fetch and turns a panic into an error
func (o *Orchestrator) fetch(ctx context.Context, a collection.Adapter, yield collection.YieldFunc) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Enrich(ctx, o.logger).Error("Adapter panicked",
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return a.Fetch(ctx, yield)
}

func (o *Orchestrator) recordAdapterError(ctx context.Context, st *runState, name string, err error) {
	aerr := &collection.AdapterError{Adapter: name, Err: err}
	st.recordError(aerr.Error())
	o.metrics.RecordAdapterError(ctx, name)
	logger.Enrich(ctx, o.logger).Error("Adapter failed", zap.Error(aerr))
}

// handleCandidate validates, normalizes and merges one candidate. It returns
// an error only to stop the adapter: on cancellation or a store failure.
func (o *Orchestrator) handleCandidate(ctx context.Context, st *runState, adapter string, c business.Candidate, abort context.CancelCauseFunc) error {
	st.recordFound()
	log := logger.Enrich(ctx, o.logger)

	if err := business.Validate(c); err != nil {
		st.recordError(err.Error())
		o.metrics.RecordCandidate(ctx, adapter, OutcomeRejected)
		log.Debug("Candidate rejected", zap.String("name", c.Name), zap.Error(err))
		return nil
	}

	fields := business.Normalize(c)
	id, outcome, err := o.upserter.Upsert(ctx, fields)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		if errors.Is(err, shared.ErrPersistence) {
			st.setFatal(err)
			o.metrics.RecordCandidate(ctx, adapter, OutcomeFailed)
			log.Error("Store unavailable, aborting run", zap.Error(err))
			abort(err)
			return err
		}
		st.recordError(fmt.Sprintf("candidate %q from %s: %v", c.Name, adapter, err))
		o.metrics.RecordCandidate(ctx, adapter, OutcomeFailed)
		log.Warn("Candidate could not be merged", zap.String("name", c.Name), zap.Error(err))
		return nil
	}

	created := outcome == business.OutcomeCreated
	st.recordProcessed(id, created)
	if created {
		o.metrics.RecordCandidate(ctx, adapter, OutcomeCreated)
	} else {
		o.metrics.RecordCandidate(ctx, adapter, OutcomeUpdated)
	}
	return nil
}

func (o *Orchestrator) enqueueCreated(ctx context.Context, ids []uuid.UUID) {
	if o.enqueuer == nil || len(ids) == 0 {
		return
	}
	log := logger.Enrich(ctx, o.logger)
	failed := 0
	for _, id := range ids {
		if err := o.enqueuer.Enqueue(ctx, id); err != nil {
			failed++
			log.Warn("Failed to enqueue business for scoring",
				zap.String("business_id", id.String()), zap.Error(err))
		}
	}
	log.Info("Queued new businesses for scoring",
		zap.Int("queued", len(ids)-failed),
		zap.Int("failed", failed),
	)
}

// runState serializes updates to a run shared by concurrent adapters
type runState struct {
	mu       sync.Mutex
	run      *collection.Run
	created  []uuid.UUID
	seen     map[uuid.UUID]struct{}
	fatalErr error
}

func (s *runState) recordFound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.run.RecordFound()
}

func (s *runState) recordError(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.run.RecordError(detail)
}

func (s *runState) recordProcessed(id uuid.UUID, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.run.RecordProcessed(created)
	if !created {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.created = append(s.created, id)
}

func (s *runState) markFatal(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.run.MarkFatal(detail)
}

// setFatal keeps the first store failure and marks the run failed
func (s *runState) setFatal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatalErr != nil {
		return
	}
	s.fatalErr = err
	_ = s.run.MarkFatal(err.Error())
}

func (s *runState) fatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Fatal()
}

func (s *runState) fatalError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatalErr
}

func (s *runState) createdIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.created...)
}
