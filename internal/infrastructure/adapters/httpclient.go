// Package adapters implements the source adapters that feed collection
// runs: news sites, business directories, Google Places, rendered company
// pages and operator CSV exports.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrBodyTooLarge is returned when a response exceeds MaxBodyBytes
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}

// ClientConfig configures the shared adapter HTTP client
type ClientConfig struct {
	UserAgent       string
	RequestTimeout  time.Duration
	PolitenessDelay time.Duration
	MaxRetries      int
	MaxBodyBytes    int64
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; HawaiiBusinessIntel/1.0)"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 5 << 20
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = time.Second
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 30 * time.Second
	}
	return c
}

// Client is a polite HTTP client. Requests through one Client are spaced
// by PolitenessDelay; retryable failures back off exponentially.
type Client struct {
	http   *http.Client
	cfg    ClientConfig
	logger *zap.Logger

	mu   sync.Mutex
	next time.Time
}

// NewClient creates a Client. Each adapter gets its own so delays are per origin.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

// UserAgent returns the configured user agent
func (c *Client) UserAgent() string {
	return c.cfg.UserAgent
}

// Get fetches url and returns the body. header may be nil.
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	ctx, span := telemetry.StartClientSpan(ctx, "adapter.http_get", "http.url", url)
	defer span.End()

	policy := &retryPolicy{client: c}
	attempts := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		if err := c.wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		body, err := c.do(ctx, url, header)
		if err == nil {
			return body, nil
		}
		policy.lastErr = err
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		if !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("Retrying request",
				zap.String("url", url),
				zap.Int("attempt", attempts+1),
				zap.Duration("delay", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "http.attempts", attempts)
	return body, nil
}

func (c *Client) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &retryAfterError{
			StatusError: &StatusError{URL: url, StatusCode: resp.StatusCode},
			after:       parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("GET %s: %w", url, ErrBodyTooLarge)
	}
	return body, nil
}

// wait blocks until the politeness delay since the previous request has passed
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	start := now
	if c.next.After(now) {
		start = c.next
	}
	c.next = start.Add(c.cfg.PolitenessDelay)
	c.mu.Unlock()
	return sleep(ctx, start.Sub(now))
}

// retryPolicy doubles the delay from RetryBaseDelay up to RetryMaxDelay
// and honors a server's Retry-After
type retryPolicy struct {
	client  *Client
	attempt int
	lastErr error
}

func (p *retryPolicy) NextBackOff() time.Duration {
	p.attempt++
	return p.client.backoff(p.attempt, p.lastErr)
}

func (p *retryPolicy) Reset() {
	p.attempt = 0
	p.lastErr = nil
}

func (c *Client) backoff(attempt int, lastErr error) time.Duration {
	var ra *retryAfterError
	if errors.As(lastErr, &ra) && ra.after > 0 {
		return min(ra.after, c.cfg.RetryMaxDelay)
	}
	delay := c.cfg.RetryBaseDelay << (attempt - 1)
	if delay <= 0 || delay > c.cfg.RetryMaxDelay {
		delay = c.cfg.RetryMaxDelay
	}
	return delay
}

type retryAfterError struct {
	*StatusError
	after time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.StatusError }

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, ErrBodyTooLarge)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
