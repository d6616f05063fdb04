package business

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// BusinessService serves read queries over collected businesses
type BusinessService struct {
	businessRepo business.Repository
	scoreRepo    prospect.Repository
}

// NewBusinessService creates a new BusinessService
func NewBusinessService(businessRepo business.Repository, scoreRepo prospect.Repository) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		scoreRepo:    scoreRepo,
	}
}

// List returns one page of businesses
func (s *BusinessService) List(ctx context.Context, filter BusinessListFilter) (shared.Paginated[BusinessResponse], error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return shared.Paginated[BusinessResponse]{}, err
	}

	items, err := s.businessRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[BusinessResponse]{}, err
	}
	total, err := s.businessRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[BusinessResponse]{}, err
	}

	out := make([]BusinessResponse, len(items))
	for i := range items {
		out[i] = ToBusinessResponse(&items[i])
	}
	return shared.NewPaginated(out, total, domainFilter.Page, domainFilter.PageSize), nil
}

// GetByID returns a business with its prospect score, when it has one
func (s *BusinessService) GetByID(ctx context.Context, id uuid.UUID) (*BusinessDetailResponse, error) {
	b, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &BusinessDetailResponse{BusinessResponse: ToBusinessResponse(b)}

	score, err := s.scoreRepo.FindByBusinessID(ctx, id)
	switch {
	case err == nil:
		resp.Score = ToScoreResponse(score)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	return resp, nil
}

func toDomainFilter(f BusinessListFilter) (business.Filter, error) {
	df := business.Filter{Filter: shared.DefaultFilter(), MinScore: f.MinScore}
	if f.Page > 0 {
		df.Page = f.Page
	}
	if f.PageSize > 0 {
		df.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		df.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		df.OrderDir = f.OrderDir
	}
	df.Search = f.Search

	if f.Island != "" {
		island, ok := business.ParseIsland(f.Island)
		if !ok {
			return df, fmt.Errorf("%w: unknown island %q", shared.ErrInvalidInput, f.Island)
		}
		df.Island = island
	}
	if f.Industry != "" {
		industry, ok := business.ParseIndustry(f.Industry)
		if !ok {
			return df, fmt.Errorf("%w: unknown industry %q", shared.ErrInvalidInput, f.Industry)
		}
		df.Industry = industry
	}
	return df, nil
}
