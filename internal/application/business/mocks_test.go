package business

import (
	"context"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/stretchr/testify/mock"
)

// MockBusinessRepository is a mock implementation of business.Repository
type MockBusinessRepository struct {
	mock.Mock
}

var _ business.Repository = (*MockBusinessRepository)(nil)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]business.Business), args.Error(1)
}

func (m *MockBusinessRepository) Count(ctx context.Context, filter business.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[business.Island]int64), args.Error(1)
}

func (m *MockBusinessRepository) CountByIndustry(ctx context.Context) (map[business.Industry]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[business.Industry]int64), args.Error(1)
}

// WithTx runs fn against the mock itself
func (m *MockBusinessRepository) WithTx(ctx context.Context, fn func(repo business.Repository) error) error {
	return fn(m)
}

// MockScoreRepository is a mock implementation of prospect.Repository
type MockScoreRepository struct {
	mock.Mock
}

var _ prospect.Repository = (*MockScoreRepository)(nil)

func (m *MockScoreRepository) Upsert(ctx context.Context, s *prospect.Score) error {
	args := m.Called(ctx, s)
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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
