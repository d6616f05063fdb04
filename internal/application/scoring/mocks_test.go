package scoring

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/mock"
)

// MockBusinessRepository is a mock implementation of business.Repository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindByKey(ctx context.Context, nameKey string, island business.Island) (*business.Business, error) {
	args := m.Called(ctx, nameKey, island)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindAll(ctx context.Context, filter business.Filter) ([]business.Business, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]business.Business), args.Error(1)
}

func (m *MockBusinessRepository) Count(ctx context.Context, filter business.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBusinessRepository) FindUnscored(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockBusinessRepository) CountByIsland(ctx context.Context) (map[business.Island]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[business.Island]int64), args.Error(1)
}

func (m *MockBusinessRepository) CountByIndustry(ctx context.Context) (map[business.Industry]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[business.Industry]int64), args.Error(1)
}

func (m *MockBusinessRepository) WithTx(ctx context.Context, fn func(repo business.Repository) error) error {
	return fn(m)
}

// MockScoreRepository is a mock implementation of prospect.Repository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Upsert(ctx context.Context, s *prospect.Score) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockScoreRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID) (*prospect.Score, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prospect.Score), args.Error(1)
}

func (m *MockScoreRepository) FindAll(ctx context.Context, filter prospect.Filter) ([]prospect.Score, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]prospect.Score), args.Error(1)
}

func (m *MockScoreRepository) Count(ctx context.Context, filter prospect.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScoreRepository) Summarize(ctx context.Context, threshold int) (prospect.Summary, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(prospect.Summary), args.Error(1)
}

// MockAnalyzer is a mock implementation of Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, b *business.Business) (prospect.Analysis, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(prospect.Analysis), args.Error(1)
}

// recordingSubmitter records submitted jobs and can be told to fail
type recordingSubmitter struct {
	mu   sync.Mutex
	jobs []uuid.UUID
	err  error
}

func (r *recordingSubmitter) Submit(id uuid.UUID, _ scheduler.JobReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, id)
	return nil
}

func (r *recordingSubmitter) submitted() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.jobs...)
}
