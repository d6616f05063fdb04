package scoring

import (
	"context"

	"github.com/google/uuid"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// ScoringService exposes prospect scores and queues scoring work
type ScoringService struct {
	businesses business.Repository
	scores     prospect.Repository
	queue      *Queue
	logger     *zap.Logger
}

// NewScoringService creates a ScoringService
func NewScoringService(businesses business.Repository, scores prospect.Repository, queue *Queue, logger *zap.Logger) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		businesses: businesses,
		scores:     scores,
		queue:      queue,
		logger:     logger.Named("scoring"),
	}
}

// ScoreUnanalyzed queues up to limit businesses that have no score yet.
// It runs at startup, when nothing is in the queue, so the guard is bypassed
// to recover jobs lost by a previous process.
func (s *ScoringService) ScoreUnanalyzed(ctx context.Context, limit int) (SweepResult, error) {
	ids, err := s.businesses.FindUnscored(ctx, limit)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Found: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.queue.Resubmit(ctx, id, scheduler.JobReasonSweep); err != nil {
			res.Failed++
			s.logger.Warn("Failed to queue unscored business",
				zap.String("business_id", id.String()), zap.Error(err))
			continue
		}
		res.Enqueued++
	}

	s.logger.Info("Scoring sweep finished",
		zap.Int("found", res.Found),
		zap.Int("enqueued", res.Enqueued),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// Rescore queues an existing business for a fresh analysis
func (s *ScoringService) Rescore(ctx context.Context, id uuid.UUID) error {
	if _, err := s.businesses.FindByID(ctx, id); err != nil {
		return err
	}
	return s.queue.Resubmit(ctx, id, scheduler.JobReasonRescore)
}

// ListProspects returns scores ordered by score, highest first
func (s *ScoringService) ListProspects(ctx context.Context, filter ProspectListFilter) (shared.Paginated[appbusiness.ScoreResponse], error) {
	df := prospect.Filter{
		Filter:   shared.DefaultFilter(),
		Priority: prospect.PriorityLevel(filter.Priority),
		MinScore: filter.MinScore,
	}
	df.OrderBy = "score"
	if filter.Page > 0 {
		df.Page = filter.Page
	}
	if filter.PageSize > 0 {
		df.PageSize = filter.PageSize
	}

	items, err := s.scores.FindAll(ctx, df)
	if err != nil {
		return shared.Paginated[appbusiness.ScoreResponse]{}, err
	}
	total, err := s.scores.Count(ctx, df)
	if err != nil {
		return shared.Paginated[appbusiness.ScoreResponse]{}, err
	}

	out := make([]appbusiness.ScoreResponse, len(items))
	for i := range items {
		out[i] = *appbusiness.ToScoreResponse(&items[i])
	}
	return shared.NewPaginated(out, total, df.Page, df.PageSize), nil
}
