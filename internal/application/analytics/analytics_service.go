package analytics

import (
	"context"
	"sort"
	"time"

	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentRuns is how many runs the summary lists when none is requested
const DefaultRecentRuns = 5

// AnalyticsService builds the dashboard summary
type AnalyticsService struct {
	businesses            business.Repository
	scores                prospect.Repository
	runs                  collection.RunRepository
	highPriorityThreshold int
	now                   func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	businesses business.Repository,
	scores prospect.Repository,
	runs collection.RunRepository,
	highPriorityThreshold int,
) *AnalyticsService {
	return &AnalyticsService{
		businesses:            businesses,
		scores:                scores,
		runs:                  runs,
		highPriorityThreshold: highPriorityThreshold,
		now:                   func() time.Time { return time.Now().UTC() },
	}
}

// GroupCount is one bucket of a breakdown
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// SummaryResponse represents the dashboard summary
type SummaryResponse struct {
	GeneratedAt        time.Time                   `json:"generated_at"`
	TotalBusinesses    int64                       `json:"total_businesses"`
	ByIsland           []GroupCount                `json:"by_island"`
	ByIndustry         []GroupCount                `json:"by_industry"`
	TotalProspects     int64                       `json:"total_prospects"`
	UnscoredBusinesses int64                       `json:"unscored_businesses"`
	AverageScore       float64                     `json:"average_score"`
	HighPriorityCount  int64                       `json:"high_priority_count"`
	TotalPipelineValue decimal.Decimal             `json:"total_pipeline_value"`
	RecentRuns         []appcollection.RunResponse `json:"recent_runs"`
}

// SummaryFilter represents query options for the summary
type SummaryFilter struct {
	RecentRuns int `form:"recent_runs" binding:"omitempty,min=1,max=50"`
}

// Summary aggregates businesses, prospect scores and recent collection runs.
// The queries are independent and run concurrently.
func (s *AnalyticsService) Summary(ctx context.Context, filter SummaryFilter) (*SummaryResponse, error) {
	limit := filter.RecentRuns
	if limit <= 0 {
		limit = DefaultRecentRuns
	}

	var (
		total      int64
		byIsland   map[business.Island]int64
		byIndustry map[business.Industry]int64
		pipeline   prospect.Summary
		recent     []collection.Run
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.businesses.Count(gctx, business.Filter{})
		return err
	})
	g.Go(func() (err error) {
		byIsland, err = s.businesses.CountByIsland(gctx)
		return err
	})
	g.Go(func() (err error) {
		byIndustry, err = s.businesses.CountByIndustry(gctx)
		return err
	})
	g.Go(func() (err error) {
		pipeline, err = s.scores.Summarize(gctx, s.highPriorityThreshold)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.runs.FindRecent(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	islands := make(map[string]int64, len(byIsland))
	for k, v := range byIsland {
		islands[string(k)] = v
	}
	industries := make(map[string]int64, len(byIndustry))
	for k, v := range byIndustry {
		industries[string(k)] = v
	}

	runs := make([]appcollection.RunResponse, len(recent))
	for i := range recent {
		runs[i] = appcollection.ToRunResponse(&recent[i])
	}

	unscored := total - pipeline.TotalProspects
	if unscored < 0 {
		unscored = 0
	}

	return &SummaryResponse{
		GeneratedAt:        s.now(),
		TotalBusinesses:    total,
		ByIsland:           sortedCounts(islands),
		ByIndustry:         sortedCounts(industries),
		TotalProspects:     pipeline.TotalProspects,
		UnscoredBusinesses: unscored,
		AverageScore:       roundTo(pipeline.AverageScore, 1),
		HighPriorityCount:  pipeline.HighPriorityCount,
		TotalPipelineValue: pipeline.TotalPipelineValue,
		RecentRuns:         runs,
	}, nil
}

// sortedCounts orders buckets by count, largest first, then by key
func sortedCounts(m map[string]int64) []GroupCount {
	out := make([]GroupCount, 0, len(m))
	for k, v := range m {
		out = append(out, GroupCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
