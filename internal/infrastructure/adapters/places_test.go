package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlacesKey = "sekret/key+1"

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func placesServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var detailCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, testPlacesKey, q.Get("key"))
		if q.Get("pagetoken") == "page-2" {
			writeJSON(w, map[string]any{
				"status": "OK",
				"results": []map[string]any{
					{"place_id": "p3", "name": "Kihei Kayak Tours", "formatted_address": "Kihei, HI", "types": []string{"travel_agency"}, "user_ratings_total": 60},
					{"place_id": "p1", "name": "Paia Fish Market", "formatted_address": "Paia, HI"},
				},
			})
			return
		}
		assert.Equal(t, "restaurants in Maui, Hawaii", q.Get("query"))
		writeJSON(w, map[string]any{
			"status":          "OK",
			"next_page_token": "page-2",
			"results": []map[string]any{
				{"place_id": "p1", "name": "Paia Fish Market", "formatted_address": "100 Baldwin Ave, Paia, HI", "types": []string{"restaurant", "food"}, "rating": 4.6, "user_ratings_total": 2400, "price_level": 2},
				{"place_id": "p2", "name": "Starbucks Kahului", "types": []string{"cafe"}},
				{"place_id": "p9", "name": "Old Lahaina Shop", "business_status": "CLOSED_PERMANENTLY"},
			},
		})
	})
	mux.HandleFunc("/details", func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		switch r.URL.Query().Get("place_id") {
		case "p1":
			writeJSON(w, map[string]any{"status": "OK", "result": map[string]any{
				"name":                   "Paia Fish Market",
				"formatted_phone_number": "(808) 579-8030",
				"website":                "https://paiafishmarket.example",
				"rating":                 4.6,
				"user_ratings_total":     2400,
				"price_level":            2,
			}})
		default:
			writeJSON(w, map[string]any{"status": "NOT_FOUND"})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &detailCalls
}

func newTestPlaces(srv *httptest.Server, mutate func(*PlacesConfig)) *PlacesAdapter {
	cfg := PlacesConfig{
		APIKey:     testPlacesKey,
		BaseURL:    srv.URL + "/textsearch",
		DetailsURL: srv.URL + "/details",
		Areas:      []string{"Maui"},
		Queries:    []string{"restaurants"},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPlacesAdapter(testClient(), cfg, nil)
}

func TestPlacesAdapter_Fetch(t *testing.T) {
	srv, detailCalls := placesServer(t)
	a := newTestPlaces(srv, nil)

	got, err := drain(t, a.Fetch)

	require.NoError(t, err)
	assert.Equal(t, []string{"Paia Fish Market", "Kihei Kayak Tours"}, names(got))
	assert.Equal(t, int32(2), detailCalls.Load())

	fish := got[0]
	assert.Equal(t, "Maui", fish.IslandText)
	assert.Equal(t, "100 Baldwin Ave, Paia, HI", fish.Address, "search address is kept when details omit it")
	assert.Equal(t, "(808) 579-8030", fish.Phone)
	assert.Equal(t, "https://paiafishmarket.example", fish.Website)
	assert.Equal(t, "restaurant food", fish.Industry)
	assert.Equal(t, PlacesSource, fish.Source)
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:p1", fish.SourceURL)
	assert.Equal(t, "Google rating: 4.6/5 (2400 reviews). Business type: restaurant, food.", fish.Description)
	require.NotNil(t, fish.EmployeeCountEstimate)
	assert.Equal(t, 112, *fish.EmployeeCountEstimate)

	kayak := got[1]
	assert.Equal(t, "Kihei, HI", kayak.Address, "failed details lookup keeps the search result")
	assert.Empty(t, kayak.Phone)
}

func TestPlacesAdapter_WithoutDetails(t *testing.T) {
	srv, detailCalls := placesServer(t)
	a := newTestPlaces(srv, func(c *PlacesConfig) {
		c.DetailsURL = ""
		c.MaxPages = 1
	})

	got, err := drain(t, a.Fetch)

	require.NoError(t, err)
	assert.Equal(t, []string{"Paia Fish Market"}, names(got))
	assert.Zero(t, detailCalls.Load())
}

func TestPlacesAdapter_MissingKey(t *testing.T) {
	a := NewPlacesAdapter(testClient(), PlacesConfig{Areas: []string{"Oahu"}, Queries: []string{"hotels"}}, nil)

	_, err := drain(t, a.Fetch)

	assert.ErrorIs(t, err, ErrPlacesDenied)
}

func TestPlacesAdapter_RequestDenied(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, map[string]any{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."})
	}))
	defer srv.Close()
	a := newTestPlaces(srv, func(c *PlacesConfig) {
		c.Areas = []string{"Oahu", "Maui"}
	})

	_, err := drain(t, a.Fetch)

	assert.ErrorIs(t, err, ErrPlacesDenied)
	assert.Equal(t, int32(1), calls.Load(), "a denied key stops further searches")
}

func TestPlacesAdapter_AllSearchesFailRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	a := newTestPlaces(srv, func(c *PlacesConfig) {
		c.Areas = []string{"Oahu", "Kauai"}
	})

	_, err := drain(t, a.Fetch)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all places searches failed")
	assert.Contains(t, err.Error(), "REDACTED")
	assert.NotContains(t, err.Error(), "sekret")
	var se *StatusError
	assert.ErrorAs(t, err, &se)
}

func TestPlacesAdapter_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("query"), "Kauai") {
			writeJSON(w, map[string]any{"status": "UNKNOWN_ERROR"})
			return
		}
		writeJSON(w, map[string]any{"status": "OK", "results": []map[string]any{
			{"place_id": "h1", "name": "Manoa Hardware", "formatted_address": "Honolulu, HI"},
		}})
	}))
	defer srv.Close()
	a := newTestPlaces(srv, func(c *PlacesConfig) {
		c.DetailsURL = ""
		c.Areas = []string{"Kauai", "Oahu"}
	})

	got, err := drain(t, a.Fetch)

	require.NoError(t, err)
	assert.Equal(t, []string{"Manoa Hardware"}, names(got))
}

func TestPlacesAdapter_YieldErrorStops(t *testing.T) {
	srv, _ := placesServer(t)
	a := newTestPlaces(srv, nil)

	err := a.Fetch(context.Background(), func(business.Candidate) error { return assert.AnError })

	assert.ErrorIs(t, err, assert.AnError)
}

func TestEstimatePlaceEmployees(t *testing.T) {
	one, four := 1, 4
	tests := []struct {
		name  string
		place placeResult
		want  int
	}{
		{"few reviews", placeResult{RatingsTotal: 10}, 10},
		{"busy hotel", placeResult{RatingsTotal: 1500, Types: []string{"lodging"}}, 150},
		{"cheap small shop", placeResult{RatingsTotal: 20, PriceLevel: &one}, 7},
		{"upscale clinic", placeResult{RatingsTotal: 300, Types: []string{"doctor"}, PriceLevel: &four}, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, estimatePlaceEmployees(tt.place))
		})
	}
}
