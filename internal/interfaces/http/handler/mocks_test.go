package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/application/analytics"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/application/scoring"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
	"github.com/hawaiibiz/intel/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type MockBusinessReader struct {
	mock.Mock
}

func (m *MockBusinessReader) List(ctx context.Context, filter appbusiness.BusinessListFilter) (shared.Paginated[appbusiness.BusinessResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[appbusiness.BusinessResponse]), args.Error(1)
}

func (m *MockBusinessReader) GetByID(ctx context.Context, id uuid.UUID) (*appbusiness.BusinessDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbusiness.BusinessDetailResponse), args.Error(1)
}

type MockCollectionRunner struct {
	mock.Mock
}

func (m *MockCollectionRunner) Sources() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockCollectionRunner) StartRun(ctx context.Context, source string) (*appcollection.RunResponse, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcollection.RunResponse), args.Error(1)
}

func (m *MockCollectionRunner) GetRun(ctx context.Context, id uuid.UUID) (*appcollection.RunResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcollection.RunResponse), args.Error(1)
}

func (m *MockCollectionRunner) ListRuns(ctx context.Context, filter appcollection.RunListFilter) (shared.Paginated[appcollection.RunResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[appcollection.RunResponse]), args.Error(1)
}

type MockProspectService struct {
	mock.Mock
}

func (m *MockProspectService) ListProspects(ctx context.Context, filter scoring.ProspectListFilter) (shared.Paginated[appbusiness.ScoreResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[appbusiness.ScoreResponse]), args.Error(1)
}

func (m *MockProspectService) Rescore(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockSummaryProvider struct {
	mock.Mock
}

func (m *MockSummaryProvider) Summary(ctx context.Context, filter analytics.SummaryFilter) (*analytics.SummaryResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.SummaryResponse), args.Error(1)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping() error { return f.err }

type fakeRunStatus bool

func (f fakeRunStatus) InProgress() bool { return bool(f) }

var errBoom = errors.New("connection reset by peer")

// perform runs one request through a router with the given route
func perform(t *testing.T, method, route, target string, body io.Reader, h gin.HandlerFunc) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Handle(method, route, h)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, "test-req")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	if w.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}
