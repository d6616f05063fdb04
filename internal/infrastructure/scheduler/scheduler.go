package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scoring job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobReason records why a business was queued for scoring
type JobReason string

const (
	JobReasonCollected JobReason = "collected"
	JobReasonSweep     JobReason = "sweep"
	JobReasonRescore   JobReason = "rescore"
)

// Job asks for one business to be scored
type Job struct {
	ID          uuid.UUID
	BusinessID  uuid.UUID
	Reason      JobReason
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a new job instance
func NewJob(businessID uuid.UUID, reason JobReason, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		BusinessID: businessID,
		Reason:     reason,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry and returns the delay used.
// The delay doubles with every attempt.
func (j *Job) ScheduleRetry(base time.Duration) time.Duration {
	delay := base << j.RetryCount
	j.RetryCount++
	j.Status = JobStatusPending
	next := time.Now().Add(delay)
	j.NextRetryAt = &next
	j.Error = ""
	return delay
}

// JobExecutor runs one job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		QueueSize:         100,
		JobTimeout:        2 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        30 * time.Second,
	}
}

// Scheduler is a bounded worker pool for scoring jobs
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	retries   sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	if config.MaxConcurrentJobs < 1 {
		config.MaxConcurrentJobs = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger.Named("scheduler"),
		jobs:     make(chan *Job, config.QueueSize),
	}
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Scoring scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels in-flight jobs and waits for the workers to exit.
// Jobs still queued are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		s.retries.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scoring scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scoring scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("business_id", job.BusinessID.String()),
			zap.String("reason", string(job.Reason)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Submit queues a scoring job for businessID with the configured retry budget
func (s *Scheduler) Submit(businessID uuid.UUID, reason JobReason) error {
	return s.SubmitJob(NewJob(businessID, reason, s.config.RetryAttempts))
}

// QueueLength returns the number of jobs waiting for a worker
func (s *Scheduler) QueueLength() int {
	return len(s.jobs)
}

// IsRunning reports whether the pool accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.Start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("business_id", job.BusinessID.String()),
	)
	log.Debug("Processing job", zap.String("reason", string(job.Reason)))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		if ctx.Err() != nil {
			log.Warn("Job interrupted by shutdown", zap.Error(err))
			return
		}
		log.Error("Job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))

		if job.ShouldRetry() {
			delay := job.ScheduleRetry(s.config.RetryDelay)
			log.Info("Job scheduled for retry",
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Duration("delay", delay),
			)
			s.requeueAfter(ctx, job, delay)
		}
		return
	}

	job.Complete()
	log.Debug("Job completed")
}

// requeueAfter puts job back on the queue once delay has passed, unless the
// scheduler stops first.
func (s *Scheduler) requeueAfter(ctx context.Context, job *Job, delay time.Duration) {
	s.retries.Add(1)
	go func() {
		defer s.retries.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}()
}
