package collection

import (
	"time"

	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// RunStatus is the lifecycle state of a collection run
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// IsValid checks if the status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusSuccess, RunStatusPartial, RunStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the run has been finalized
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusPartial || s == RunStatusFailed
}

// maxErrorDetails bounds the stored error detail list
const maxErrorDetails = 100

// Run summarizes one orchestration pass. It is mutable while running and
// immutable once Finish has been called.
type Run struct {
	shared.BaseAggregateRoot
	Source          string
	StartedAt       time.Time
	FinishedAt      *time.Time
	Found           int
	Processed       int
	Added           int
	Errors          int
	Status          RunStatus
	ErrorDetails    []string
	DurationSeconds float64
	fatal           bool
}

// NewRun starts a run for the given adapter set label ("all" or an adapter name)
func NewRun(source string, now time.Time) (*Run, error) {
	if source == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Run source cannot be empty")
	}
	return &Run{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Source:            source,
		StartedAt:         now,
		Status:            RunStatusRunning,
	}, nil
}

func (r *Run) guard() error {
	if r.Status.IsTerminal() {
		return ErrRunFinalized
	}
	return nil
}

// RecordFound counts a candidate yielded by an adapter
func (r *Run) RecordFound() error {
	if err := r.guard(); err != nil {
		return err
	}
	r.Found++
	return nil
}

// RecordProcessed counts a candidate that passed validation and merge
func (r *Run) RecordProcessed(created bool) error {
	if err := r.guard(); err != nil {
		return err
	}
	r.Processed++
	if created {
		r.Added++
	}
	return nil
}

// RecordError counts a rejection or adapter failure and keeps its detail
func (r *Run) RecordError(detail string) error {
	if err := r.guard(); err != nil {
		return err
	}
	r.Errors++
	if detail != "" && len(r.ErrorDetails) < maxErrorDetails {
		r.ErrorDetails = append(r.ErrorDetails, detail)
	}
	return nil
}

// MarkFatal flags an unrecoverable failure; the run will finish as failed
func (r *Run) MarkFatal(detail string) error {
	if err := r.guard(); err != nil {
		return err
	}
	r.fatal = true
	if detail != "" && len(r.ErrorDetails) < maxErrorDetails {
		r.ErrorDetails = append(r.ErrorDetails, detail)
	}
	return nil
}

// Finish derives the final status, stamps the duration and freezes the run.
//
//	fatal                          -> failed
//	errors == 0                    -> success
//	errors > 0, some work merged   -> partial
//	errors > 0, nothing merged     -> failed
func (r *Run) Finish(now time.Time) error {
	if err := r.guard(); err != nil {
		return err
	}
	switch {
	case r.fatal:
		r.Status = RunStatusFailed
	case r.Errors == 0:
		r.Status = RunStatusSuccess
	case r.Added > 0 || r.Processed > 0:
		r.Status = RunStatusPartial
	default:
		r.Status = RunStatusFailed
	}
	r.FinishedAt = &now
	r.DurationSeconds = now.Sub(r.StartedAt).Seconds()
	r.Touch(now)
	r.IncrementVersion()
	return nil
}

// Fatal reports whether MarkFatal was called
func (r *Run) Fatal() bool {
	return r.fatal
}
