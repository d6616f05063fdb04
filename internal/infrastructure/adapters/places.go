package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"go.uber.org/zap"
)

// PlacesSource is the source label of Google Places candidates
const PlacesSource = "places"

// ErrPlacesDenied is returned when Google rejects the API key or quota
var ErrPlacesDenied = errors.New("places request denied")

var defaultChainNames = []string{"McDonald", "Starbucks", "Subway", "7-Eleven", "Walmart", "Target"}

// PlacesConfig configures the Google Places text search adapter
type PlacesConfig struct {
	APIKey     string
	BaseURL    string // text search endpoint
	DetailsURL string // place details endpoint; empty skips details
	Areas      []string
	Queries    []string
	MaxPages   int
	SkipChains []string
}

// PlacesAdapter searches Google Places for businesses in each area
type PlacesAdapter struct {
	client *Client
	cfg    PlacesConfig
	logger *zap.Logger
}

var _ collection.Adapter = (*PlacesAdapter)(nil)

// NewPlacesAdapter creates a places adapter. The API key is only sent to
// the configured endpoints.
func NewPlacesAdapter(client *Client, cfg PlacesConfig, logger *zap.Logger) *PlacesAdapter {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.SkipChains == nil {
		cfg.SkipChains = defaultChainNames
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacesAdapter{client: client, cfg: cfg, logger: logger.With(zap.String("adapter", PlacesSource))}
}

// Name implements collection.Adapter
func (a *PlacesAdapter) Name() string { return PlacesSource }

type placesResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	NextPageToken string        `json:"next_page_token"`
	Results       []placeResult `json:"results"`
	Result        placeResult   `json:"result"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Phone            string   `json:"formatted_phone_number"`
	Website          string   `json:"website"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	RatingsTotal     int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	BusinessStatus   string   `json:"business_status"`
}

// Fetch implements collection.Adapter. Every area is searched with every
// query; a denied request stops the adapter since later ones would fail too.
func (a *PlacesAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	if a.cfg.APIKey == "" {
		return fmt.Errorf("%w: no API key configured", ErrPlacesDenied)
	}
	seen := make(map[string]bool)
	var searches int
	var failures []error
	for _, area := range a.cfg.Areas {
		for _, query := range a.cfg.Queries {
			searches++
			if err := a.search(ctx, area, query, seen, yield); err != nil {
				if errors.Is(err, ErrPlacesDenied) || ctx.Err() != nil || !isFetchError(err) {
					return err
				}
				a.logger.Warn("Places search failed",
					zap.String("area", area), zap.String("query", query), zap.Error(err))
				failures = append(failures, err)
			}
		}
	}
	if searches > 0 && len(failures) == searches {
		return fmt.Errorf("all places searches failed: %w", errors.Join(failures...))
	}
	return nil
}

type fetchError struct{ err error }

func (e *fetchError) Error() string { return e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

func isFetchError(err error) bool {
	var fe *fetchError
	return errors.As(err, &fe)
}

func (a *PlacesAdapter) search(ctx context.Context, area, query string, seen map[string]bool, yield collection.YieldFunc) error {
	token := ""
	for page := 0; page < a.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := url.Values{"key": {a.cfg.APIKey}}
		if token != "" {
			params.Set("pagetoken", token)
		} else {
			params.Set("query", fmt.Sprintf("%s in %s, Hawaii", query, area))
		}
		resp, err := a.call(ctx, a.cfg.BaseURL, params)
		if err != nil {
			return err
		}

		for _, place := range resp.Results {
			if place.PlaceID != "" && seen[place.PlaceID] {
				continue
			}
			seen[place.PlaceID] = true
			if a.isChain(place.Name) || place.BusinessStatus == "CLOSED_PERMANENTLY" {
				continue
			}
			place = a.withDetails(ctx, place)
			if err := yield(placeCandidate(place, area)); err != nil {
				return err
			}
		}

		token = resp.NextPageToken
		if token == "" {
			return nil
		}
	}
	return nil
}

// withDetails adds phone and website from the details endpoint; a failed
// lookup keeps the search result as is
func (a *PlacesAdapter) withDetails(ctx context.Context, place placeResult) placeResult {
	if a.cfg.DetailsURL == "" || place.PlaceID == "" {
		return place
	}
	resp, err := a.call(ctx, a.cfg.DetailsURL, url.Values{
		"key":      {a.cfg.APIKey},
		"place_id": {place.PlaceID},
		"fields":   {"name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,types,price_level"},
	})
	if err != nil {
		a.logger.Debug("Place details unavailable", zap.String("place_id", place.PlaceID), zap.Error(err))
		return place
	}
	d := resp.Result
	d.PlaceID = place.PlaceID
	if d.Name == "" {
		d.Name = place.Name
	}
	if d.FormattedAddress == "" {
		d.FormattedAddress = place.FormattedAddress
	}
	if len(d.Types) == 0 {
		d.Types = place.Types
	}
	return d
}

func (a *PlacesAdapter) call(ctx context.Context, endpoint string, params url.Values) (*placesResponse, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid places endpoint: %w", err)
	}
	u.RawQuery = params.Encode()

	body, err := a.client.Get(ctx, u.String(), nil)
	if err != nil {
		return nil, &fetchError{err: redactKey(err, a.cfg.APIKey)}
	}
	var resp placesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &fetchError{err: fmt.Errorf("malformed places response: %w", err)}
	}
	switch resp.Status {
	case "OK", "ZERO_RESULTS":
		return &resp, nil
	case "REQUEST_DENIED", "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return nil, fmt.Errorf("%w: %s %s", ErrPlacesDenied, resp.Status, resp.ErrorMessage)
	default:
		return nil, &fetchError{err: fmt.Errorf("places status %s: %s", resp.Status, resp.ErrorMessage)}
	}
}

func (a *PlacesAdapter) isChain(name string) bool {
	for _, chain := range a.cfg.SkipChains {
		if strings.Contains(name, chain) {
			return true
		}
	}
	return false
}

func placeCandidate(p placeResult, area string) business.Candidate {
	desc := fmt.Sprintf("Google rating: %s/5 (%d reviews).", strconv.FormatFloat(p.Rating, 'f', -1, 64), p.RatingsTotal)
	if len(p.Types) > 0 {
		desc += " Business type: " + strings.Join(p.Types[:min(3, len(p.Types))], ", ") + "."
	}
	return business.Candidate{
		Name:                  p.Name,
		IslandText:            area,
		Address:               p.FormattedAddress,
		Industry:              strings.ReplaceAll(strings.Join(p.Types, " "), "_", " "),
		Phone:                 p.Phone,
		Website:               p.Website,
		EmployeeCountEstimate: intPtr(estimatePlaceEmployees(p)),
		Description:           desc,
		Source:                PlacesSource,
		SourceURL:             "https://www.google.com/maps/place/?q=place_id:" + url.QueryEscape(p.PlaceID),
	}
}

// estimatePlaceEmployees sizes a business from its review volume, type and
// price level
func estimatePlaceEmployees(p placeResult) int {
	base := 10
	switch {
	case p.RatingsTotal > 2000:
		base = 75
	case p.RatingsTotal > 1000:
		base = 50
	case p.RatingsTotal > 500:
		base = 30
	case p.RatingsTotal > 200:
		base = 20
	case p.RatingsTotal > 50:
		base = 15
	}

	types := strings.Join(p.Types, " ")
	switch {
	case strings.Contains(types, "lodging"), strings.Contains(types, "hotel"), strings.Contains(types, "resort"):
		base *= 3
	case strings.Contains(types, "restaurant"):
		base = base * 3 / 2
	case strings.Contains(types, "hospital"), strings.Contains(types, "doctor"):
		base *= 2
	}

	if p.PriceLevel != nil {
		switch {
		case *p.PriceLevel >= 4:
			base = base * 3 / 2
		case *p.PriceLevel == 1:
			base = base * 7 / 10
		}
	}
	return max(5, base)
}

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
