package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"go.uber.org/zap"
)

// SocialSource is the source label of rendered-page candidates
const SocialSource = "social"

// Renderer returns the HTML of a page after its scripts have run
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeConfig configures the headless Chrome renderer
type ChromeConfig struct {
	RemoteURL string // devtools websocket; empty launches a local browser
	WaitReady string // CSS selector that marks the page as rendered
	UserAgent string
	Timeout   time.Duration
	NoSandbox bool
}

// ChromeRenderer renders pages with chromedp. The browser is started on
// first use and shared by later renders.
type ChromeRenderer struct {
	cfg    ChromeConfig
	logger *zap.Logger

	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var _ Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer creates a renderer; call Close to stop the browser
func NewChromeRenderer(cfg ChromeConfig, logger *zap.Logger) *ChromeRenderer {
	if cfg.WaitReady == "" {
		cfg.WaitReady = "body"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{cfg: cfg, logger: logger}
}

func (r *ChromeRenderer) allocator() context.Context {
	r.once.Do(func() {
		if r.cfg.RemoteURL != "" {
			r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.cfg.RemoteURL)
			return
		}
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("no-first-run", true),
		)
		if r.cfg.UserAgent != "" {
			opts = append(opts, chromedp.UserAgent(r.cfg.UserAgent))
		}
		if r.cfg.NoSandbox {
			opts = append(opts, chromedp.NoSandbox)
		}
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	})
	return r.allocCtx
}

// Render implements Renderer
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(r.allocator(),
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, r.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var out string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.WaitReady(r.cfg.WaitReady, chromedp.ByQuery),
		chromedp.OuterHTML("html", &out, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("render %s timed out after %v: %w", url, r.cfg.Timeout, err)
		}
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return out, nil
}

// Close stops the browser
func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// SocialConfig configures the social adapter
type SocialConfig struct {
	URLs []string
}

// SocialAdapter reads JavaScript-rendered company listing pages
type SocialAdapter struct {
	renderer Renderer
	cfg      SocialConfig
	logger   *zap.Logger
}

var _ collection.Adapter = (*SocialAdapter)(nil)

// NewSocialAdapter creates a social adapter
func NewSocialAdapter(renderer Renderer, cfg SocialConfig, logger *zap.Logger) *SocialAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocialAdapter{renderer: renderer, cfg: cfg, logger: logger.With(zap.String("adapter", SocialSource))}
}

// Name implements collection.Adapter
func (a *SocialAdapter) Name() string { return SocialSource }

// Fetch implements collection.Adapter
func (a *SocialAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	var failures []error
	for _, page := range a.cfg.URLs {
		if err := ctx.Err(); err != nil {
			return err
		}
		rendered, err := a.renderer.Render(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warn("Failed to render page", zap.String("url", page), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		if err := yieldListings(ctx, []byte(rendered), page, SocialSource, a.logger, yield); err != nil {
			return err
		}
	}
	if len(failures) > 0 && len(failures) == len(a.cfg.URLs) {
		return fmt.Errorf("all social pages failed: %w", errors.Join(failures...))
	}
	return nil
}
