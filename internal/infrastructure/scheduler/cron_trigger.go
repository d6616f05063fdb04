package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TriggerFunc is the work a CronTrigger fires once a day
type TriggerFunc func(ctx context.Context) error

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// Name identifies the trigger in logs
	Name string
	// Hour and Minute give the local time of day to fire (24h clock)
	Hour   int
	Minute int
	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Name:          "daily",
		Hour:          2,
		Minute:        0,
		CheckInterval: time.Minute,
	}
}

// Validate checks the time of day
func (c CronTriggerConfig) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidSchedule, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidSchedule, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidSchedule)
	}
	return nil
}

// CronTrigger fires a TriggerFunc at most once per calendar day
type CronTrigger struct {
	config CronTriggerConfig
	fn     TriggerFunc
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, fn TriggerFunc, logger *zap.Logger) (*CronTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config: config,
		fn:     fn,
		logger: logger.Named("cron").With(zap.String("trigger", config.Name)),
		now:    time.Now,
	}, nil
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("hour", c.config.Hour),
		zap.Int("minute", c.config.Minute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the cron trigger and waits for a firing in progress
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// shouldRun reports whether now is the configured minute and the trigger
// has not fired yet today. It claims the day when it returns true.
func (c *CronTrigger) shouldRun(now time.Time) bool {
	if now.Hour() != c.config.Hour || now.Minute() != c.config.Minute {
		return false
	}
	today := now.Format("2006-01-02")

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRunDate == today {
		return false
	}
	c.lastRunDate = today
	return true
}

func (c *CronTrigger) checkAndTrigger(ctx context.Context) {
	if !c.shouldRun(c.now()) {
		return
	}
	c.logger.Info("Cron trigger firing")
	c.fire(ctx)
}

func (c *CronTrigger) fire(ctx context.Context) {
	if err := c.fn(ctx); err != nil {
		c.logger.Error("Cron trigger failed", zap.Error(err))
	}
}

// TriggerNow runs the trigger function immediately, outside the schedule
func (c *CronTrigger) TriggerNow(ctx context.Context) error {
	return c.fn(ctx)
}
