package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Metrics receives scoring measurements
type Metrics interface {
	RecordAnalysis(ctx context.Context, priority string, fallback bool, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(context.Context, string, bool, time.Duration) {}

// ExecutorOption configures a ScoringExecutor
type ExecutorOption func(*ScoringExecutor)

// WithExecutorMetrics sets the metrics sink
func WithExecutorMetrics(m Metrics) ExecutorOption {
	return func(e *ScoringExecutor) { e.metrics = m }
}

// ScoringExecutor scores the business named by a scheduler job
type ScoringExecutor struct {
	businesses            business.Repository
	scores                prospect.Repository
	analyzer              Analyzer
	highPriorityThreshold int
	metrics               Metrics
	now                   func() time.Time
	logger                *zap.Logger
}

var _ scheduler.JobExecutor = (*ScoringExecutor)(nil)

// NewScoringExecutor creates a ScoringExecutor
func NewScoringExecutor(
	businesses business.Repository,
	scores prospect.Repository,
	analyzer Analyzer,
	highPriorityThreshold int,
	logger *zap.Logger,
	opts ...ExecutorOption,
) *ScoringExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &ScoringExecutor{
		businesses:            businesses,
		scores:                scores,
		analyzer:              analyzer,
		highPriorityThreshold: highPriorityThreshold,
		metrics:               nopMetrics{},
		now:                   func() time.Time { return time.Now().UTC() },
		logger:                logger.Named("scoring"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements scheduler.JobExecutor. A business deleted since it was
// queued is skipped; store failures are returned so the job is retried.
func (e *ScoringExecutor) Execute(ctx context.Context, job *scheduler.Job) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "scoring.execute",
		telemetry.SpanAttrBusinessID, job.BusinessID.String(),
		"job.reason", string(job.Reason),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	log := e.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("business_id", job.BusinessID.String()),
	)

	b, err := e.businesses.FindByID(ctx, job.BusinessID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Business no longer exists, skipping score")
			return nil
		}
		return fmt.Errorf("load business: %w", err)
	}

	started := time.Now()
	analysis, err := e.analyzer.Analyze(ctx, b)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", b.Name, err)
	}
	elapsed := time.Since(started)

	score := prospect.NewScore(b.ID, analysis, e.now())
	if err := e.scores.Upsert(ctx, score); err != nil {
		return fmt.Errorf("save score: %w", err)
	}

	e.metrics.RecordAnalysis(ctx, string(score.PriorityLevel), analysis.Fallback, elapsed)
	telemetry.SetAttributes(span, telemetry.SpanAttrScore, score.Analysis.Score, "prospect.fallback", analysis.Fallback)

	fields := []zap.Field{
		zap.String("business", b.Name),
		zap.String("island", string(b.Island)),
		zap.Int("score", score.Analysis.Score),
		zap.String("priority", string(score.PriorityLevel)),
	}
	switch {
	case analysis.Fallback:
		log.Warn("Analysis fell back to default, manual review required", fields...)
	case score.IsHighPriority(e.highPriorityThreshold):
		log.Info("High priority prospect",
			append(fields, zap.String("estimated_deal_value", score.Analysis.EstimatedDealValue.StringFixed(2)))...)
	default:
		log.Debug("Business scored", fields...)
	}
	return nil
}
