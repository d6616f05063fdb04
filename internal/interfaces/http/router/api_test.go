package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/application/analytics"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/application/scoring"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/auth"
	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"github.com/hawaiibiz/intel/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServices struct {
	started  []string
	rescored []uuid.UUID
}

func (s *stubServices) Ping() error      { return nil }
func (s *stubServices) InProgress() bool { return false }

func (s *stubServices) List(context.Context, appbusiness.BusinessListFilter) (shared.Paginated[appbusiness.BusinessResponse], error) {
	return shared.NewPaginated[appbusiness.BusinessResponse](nil, 0, 1, 20), nil
}

func (s *stubServices) GetByID(context.Context, uuid.UUID) (*appbusiness.BusinessDetailResponse, error) {
	return nil, shared.ErrNotFound
}

func (s *stubServices) Sources() []string { return []string{"all", "news"} }

func (s *stubServices) StartRun(_ context.Context, source string) (*appcollection.RunResponse, error) {
	s.started = append(s.started, source)
	return &appcollection.RunResponse{ID: uuid.New(), Source: source, Status: "running", StartedAt: time.Now()}, nil
}

func (s *stubServices) GetRun(context.Context, uuid.UUID) (*appcollection.RunResponse, error) {
	return nil, shared.ErrNotFound
}

func (s *stubServices) ListRuns(context.Context, appcollection.RunListFilter) (shared.Paginated[appcollection.RunResponse], error) {
	return shared.NewPaginated[appcollection.RunResponse](nil, 0, 1, 20), nil
}

func (s *stubServices) ListProspects(context.Context, scoring.ProspectListFilter) (shared.Paginated[appbusiness.ScoreResponse], error) {
	return shared.NewPaginated[appbusiness.ScoreResponse](nil, 0, 1, 20), nil
}

func (s *stubServices) Rescore(_ context.Context, id uuid.UUID) error {
	s.rescored = append(s.rescored, id)
	return nil
}

type stubSummary struct{}

func (stubSummary) Summary(context.Context, analytics.SummaryFilter) (*analytics.SummaryResponse, error) {
	return &analytics.SummaryResponse{}, nil
}

const apiTestSecret = "router-test-secret-at-least-32-chars"

func newTestEngine(t *testing.T, httpCfg config.HTTPConfig) (http.Handler, *stubServices) {
	t.Helper()
	svc := &stubServices{}
	if httpCfg.MaxBodySize == 0 {
		httpCfg.MaxBodySize = 1 << 20
	}
	engine, err := New(t.Context(), Options{
		ServiceName: "hbi-test",
		HTTP:        httpCfg,
		Swagger:     config.SwaggerConfig{Enabled: false},
		JWT:         auth.NewJWTService(config.JWTConfig{Secret: apiTestSecret}),
	}, Handlers{
		Health:     handler.NewHealthHandler(svc, svc),
		Business:   handler.NewBusinessHandler(svc),
		Collection: handler.NewCollectionHandler(svc),
		Prospect:   handler.NewProspectHandler(svc),
		Analytics:  handler.NewAnalyticsHandler(stubSummary{}),
	})
	require.NoError(t, err)
	return engine, svc
}

func operatorToken(t *testing.T) string {
	t.Helper()
	tok, _, err := auth.NewJWTService(config.JWTConfig{Secret: apiTestSecret}).
		IssueToken("kai", []string{auth.RoleOperator}, time.Minute)
	require.NoError(t, err)
	return tok
}

func TestNew_PublicRoutes(t *testing.T) {
	engine, _ := newTestEngine(t, config.HTTPConfig{})

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/api/v1/businesses", http.StatusOK},
		{"/api/v1/businesses/" + uuid.NewString(), http.StatusNotFound},
		{"/api/v1/collection/runs", http.StatusOK},
		{"/api/v1/collection/runs/" + uuid.NewString(), http.StatusNotFound},
		{"/api/v1/collection/sources", http.StatusOK},
		{"/api/v1/prospects", http.StatusOK},
		{"/api/v1/analytics/summary", http.StatusOK},
		{"/swagger/index.html", http.StatusNotFound},
		{"/api/v1/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestNew_MutatingRoutesRequireOperator(t *testing.T) {
	engine, svc := newTestEngine(t, config.HTTPConfig{})
	id := uuid.New()

	requests := func(authHeader string) []*http.Request {
		run := httptest.NewRequest(http.MethodPost, "/api/v1/collection/runs", strings.NewReader(`{"source":"news"}`))
		run.Header.Set("Content-Type", "application/json")
		rescore := httptest.NewRequest(http.MethodPost, "/api/v1/prospects/"+id.String()+"/rescore", nil)
		for _, r := range []*http.Request{run, rescore} {
			if authHeader != "" {
				r.Header.Set("Authorization", authHeader)
			}
		}
		return []*http.Request{run, rescore}
	}

	for _, req := range requests("") {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	assert.Empty(t, svc.started)
	assert.Empty(t, svc.rescored)

	for _, req := range requests("Bearer " + operatorToken(t)) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	}
	assert.Equal(t, []string{"news"}, svc.started)
	assert.Equal(t, []uuid.UUID{id}, svc.rescored)
}

func TestNew_RateLimit(t *testing.T) {
	engine, _ := newTestEngine(t, config.HTTPConfig{
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Hour,
	})

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/prospects", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
