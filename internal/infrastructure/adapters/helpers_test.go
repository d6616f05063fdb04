package adapters

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
)

func testClient() *Client {
	return NewClient(ClientConfig{
		RequestTimeout: 2 * time.Second,
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}, nil)
}

// drain runs an adapter's Fetch and returns everything it yielded
func drain(t *testing.T, fetch func(context.Context, collection.YieldFunc) error) ([]business.Candidate, error) {
	t.Helper()
	var out []business.Candidate
	err := fetch(context.Background(), func(c business.Candidate) error {
		out = append(out, c)
		return nil
	})
	return out, err
}

func names(cs []business.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}
