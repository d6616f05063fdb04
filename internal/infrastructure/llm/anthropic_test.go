package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBusiness() *business.Business {
	employees := 45
	return &business.Business{
		BaseAggregateRoot:     shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}},
		Name:                  "Kona Coast Tours",
		Island:                business.IslandBigIsland,
		Industry:              business.IndustryTourism,
		Description:           "Snorkel and whale watching charters.",
		EmployeeCountEstimate: &employees,
		GrowthSignals:         []string{"hiring", "new location"},
	}
}

func textReply(text string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": text}},
	}
}

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) (*AnthropicAnalyzer, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	a, err := NewAnthropicAnalyzer(Config{
		APIKey:         "test-key",
		BaseURL:        srv.URL + "/",
		Temperature:    0.7,
		RequestTimeout: 2 * time.Second,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  2 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return a, &calls
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestAnthropicAnalyzer_Analyze(t *testing.T) {
	a, calls := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, messagesPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-haiku-20240307", req.Model)
		assert.Equal(t, 1500, req.MaxTokens)
		assert.Equal(t, 0.7, req.Temperature)
		assert.Equal(t, systemPrompt, req.System)
		if assert.Len(t, req.Messages, 1) {
			assert.Contains(t, req.Messages[0].Content, "Company: Kona Coast Tours")
		}

		reply(w, textReply("Here is my assessment:\n```json\n"+`{
  "score": 87.6,
  "summary": "Growing tour operator with manual booking.",
  "pain_points": ["Manual booking", " "],
  "recommended_services": ["Custom Chatbots", "Data Analytics"],
  "estimated_deal_value": 42000.5,
  "growth_signals": ["hiring"],
  "technology_readiness": "medium",
  "outreach_strategy": "Meet in person in Kona.",
  "decision_makers": ["Owner",],
}`+"\n```"))
	})

	got, err := a.Analyze(context.Background(), testBusiness())

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, got.Fallback)
	assert.Equal(t, 88, got.Score)
	assert.Equal(t, "Growing tour operator with manual booking.", got.Summary)
	assert.Equal(t, []string{"Manual booking"}, got.PainPoints)
	assert.Equal(t, []string{"Custom Chatbots", "Data Analytics"}, got.RecommendedServices)
	assert.True(t, decimal.RequireFromString("42000.5").Equal(got.EstimatedDealValue))
	assert.Equal(t, prospect.ReadinessMedium, got.TechnologyReadiness)
	assert.Equal(t, []string{"Owner"}, got.DecisionMakers)
}

func TestAnthropicAnalyzer_RetriesTransientFailures(t *testing.T) {
	var n atomic.Int32
	a, calls := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		reply(w, textReply(`{"score": 55, "summary": "Steady local retailer."}`))
	})

	got, err := a.Analyze(context.Background(), testBusiness())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 55, got.Score)
	assert.Equal(t, prospect.ReadinessUnknown, got.TechnologyReadiness)
}

func TestAnthropicAnalyzer_GivesUpWithDefault(t *testing.T) {
	a, calls := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := a.Analyze(context.Background(), testBusiness())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, prospect.DefaultAnalysis(), got)
}

func TestAnthropicAnalyzer_ClientErrorIsNotRetried(t *testing.T) {
	a, calls := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error"}}`))
	})

	got, err := a.Analyze(context.Background(), testBusiness())

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, got.Fallback)
	assert.Equal(t, "Analysis failed - manual review required", got.Summary)
}

func TestAnthropicAnalyzer_UnusableReplies(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"prose only", "I would rate this business a score: 75 overall."},
		{"missing summary", `{"score": 70}`},
		{"score is not a number", `{"score": "high", "summary": "Looks promising."}`},
		{"empty summary", `{"score": 40, "summary": ""}`},
		{"lists of objects", `{"score": 40, "summary": "ok", "pain_points": [{"x": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
				reply(w, textReply(tt.text))
			})

			got, err := a.Analyze(context.Background(), testBusiness())

			require.NoError(t, err)
			assert.Equal(t, prospect.DefaultAnalysis(), got)
		})
	}
}

func TestAnthropicAnalyzer_Cancelled(t *testing.T) {
	a, _ := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, textReply(`{"score": 90, "summary": "x"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, testBusiness())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAnthropicAnalyzer_RequiresKey(t *testing.T) {
	_, err := NewAnthropicAnalyzer(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestResponseParser(t *testing.T) {
	p, err := newResponseParser()
	require.NoError(t, err)

	t.Run("clamps score and deal value", func(t *testing.T) {
		got, err := p.parse(`{"score": 140, "summary": "Huge", "estimated_deal_value": -500}`)
		require.NoError(t, err)
		assert.Equal(t, 100, got.Score)
		assert.True(t, got.EstimatedDealValue.IsZero())
		assert.Empty(t, got.PainPoints)

		got, err = p.parse(`{"score": -3, "summary": "Tiny"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Score)
	})

	t.Run("repairs a truncated reply", func(t *testing.T) {
		got, err := p.parse(`{"score": 72, "summary": "Multi-island retailer", "pain_points": ["Inventory across islands"`)
		require.NoError(t, err)
		assert.Equal(t, 72, got.Score)
		assert.Equal(t, []string{"Inventory across islands"}, got.PainPoints)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := p.parse("Sorry, I cannot help with that.")
		assert.ErrorIs(t, err, errNoJSONObject)
	})
}

func TestBuildPrompt(t *testing.T) {
	b := testBusiness()
	got := buildPrompt(b)
	assert.Contains(t, got, "Island: "+string(business.IslandBigIsland))
	assert.Contains(t, got, "Employee Count: 45")
	assert.Contains(t, got, "Growth Signals: hiring, new location")
	assert.Contains(t, got, "Website: Not provided")

	b.EmployeeCountEstimate = nil
	b.GrowthSignals = nil
	b.Description = ""
	got = buildPrompt(b)
	assert.Contains(t, got, "Employee Count: Unknown")
	assert.Contains(t, got, "Description: No description available")
	assert.False(t, strings.Contains(got, "{{"))
}
