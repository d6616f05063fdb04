package telemetry

import (
	"context"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
)

// RepositoryStatsProvider feeds the pipeline gauges from the repositories
type RepositoryStatsProvider struct {
	businesses business.Repository
	scores     prospect.Repository
}

var _ StatsProvider = (*RepositoryStatsProvider)(nil)

// NewRepositoryStatsProvider creates a stats provider
func NewRepositoryStatsProvider(businesses business.Repository, scores prospect.Repository) *RepositoryStatsProvider {
	return &RepositoryStatsProvider{businesses: businesses, scores: scores}
}

// CountBusinessesByIsland returns stored businesses keyed by island name
func (p *RepositoryStatsProvider) CountBusinessesByIsland(ctx context.Context) (map[string]int64, error) {
	counts, err := p.businesses.CountByIsland(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for island, n := range counts {
		out[string(island)] = n
	}
	return out, nil
}

// CountUnscored returns how many businesses have no prospect score
func (p *RepositoryStatsProvider) CountUnscored(ctx context.Context) (int64, error) {
	total, err := p.businesses.Count(ctx, business.Filter{})
	if err != nil {
		return 0, err
	}
	summary, err := p.scores.Summarize(ctx, 0)
	if err != nil {
		return 0, err
	}
	return max(total-summary.TotalProspects, 0), nil
}
