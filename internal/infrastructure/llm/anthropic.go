// Package llm scores businesses with Anthropic's Messages API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hawaiibiz/intel/internal/application/scoring"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	maxResponseBytes = 1 << 20
)

// ErrNoAPIKey is returned by NewAnthropicAnalyzer without a key
var ErrNoAPIKey = errors.New("anthropic api key is not configured")

// Config configures the analyzer
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.anthropic.com"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = "claude-3-haiku-20240307"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1500
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 4 * time.Second
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 10 * time.Second
	}
	return c
}

// AnthropicAnalyzer implements scoring.Analyzer
type AnthropicAnalyzer struct {
	cfg    Config
	http   *http.Client
	parser *responseParser
	logger *zap.Logger
}

var _ scoring.Analyzer = (*AnthropicAnalyzer)(nil)

// NewAnthropicAnalyzer creates an analyzer
func NewAnthropicAnalyzer(cfg Config, logger *zap.Logger) (*AnthropicAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	parser, err := newResponseParser()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &AnthropicAnalyzer{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		parser: parser,
		logger: logger.Named("llm"),
	}, nil
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// APIError is a non-2xx response from the Messages API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic api status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout || e.StatusCode >= 500
}

// Analyze implements scoring.Analyzer. Transport and parse failures give
// the default analysis; only a cancelled context is returned as an error.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, b *business.Business) (prospect.Analysis, error) {
	ctx, span := telemetry.StartClientSpan(ctx, "llm.analyze",
		telemetry.SpanAttrBusinessID, b.ID.String(),
		"llm.model", a.cfg.Model,
	)
	defer span.End()

	logger := a.logger.With(zap.String("business_id", b.ID.String()), zap.String("business", b.Name))

	text, err := a.completeWithRetry(ctx, buildPrompt(b))
	if err != nil {
		if ctx.Err() != nil {
			return prospect.Analysis{}, ctx.Err()
		}
		telemetry.RecordError(span, err)
		logger.Error("Prospect analysis request failed", zap.Error(err))
		return prospect.DefaultAnalysis(), nil
	}

	analysis, err := a.parser.parse(text)
	if err != nil {
		telemetry.AddEvent(span, "llm.unusable_response", "error", err.Error())
		logger.Warn("Unusable analysis response", zap.Error(err), zap.Int("response_length", len(text)))
		return prospect.DefaultAnalysis(), nil
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrScore, analysis.Score)
	return analysis, nil
}

func (a *AnthropicAnalyzer) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = a.cfg.RetryBaseDelay
	exp.MaxInterval = a.cfg.RetryMaxDelay

	return backoff.Retry(ctx, func() (string, error) {
		text, err := a.complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return "", backoff.Permanent(err)
		}
		return "", err
	},
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(a.cfg.MaxRetries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			a.logger.Warn("Retrying analysis request", zap.Error(err), zap.Duration("backoff", next))
		}),
	)
}

func (a *AnthropicAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		System:      systemPrompt,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && apiErr.retryable() {
			return "", backoff.RetryAfter(secs)
		}
		return "", apiErr
	}

	var out messagesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("malformed messages response: %w", err)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("messages response %s has no text content", out.ID)
	}
	if out.StopReason == "max_tokens" {
		a.logger.Debug("Analysis response hit max_tokens", zap.String("response_id", out.ID))
	}
	return sb.String(), nil
}
