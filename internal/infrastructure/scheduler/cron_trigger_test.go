package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCronTriggerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CronTriggerConfig)
		wantErr bool
	}{
		{"default", func(c *CronTriggerConfig) {}, false},
		{"midnight", func(c *CronTriggerConfig) { c.Hour, c.Minute = 0, 0 }, false},
		{"hour out of range", func(c *CronTriggerConfig) { c.Hour = 24 }, true},
		{"minute out of range", func(c *CronTriggerConfig) { c.Minute = 60 }, true},
		{"no interval", func(c *CronTriggerConfig) { c.CheckInterval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCronTriggerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSchedule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCronTrigger_ShouldRun(t *testing.T) {
	cfg := DefaultCronTriggerConfig()
	cfg.Hour, cfg.Minute = 2, 30
	c, err := NewCronTrigger(cfg, func(context.Context) error { return nil }, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name     string
		time     time.Time
		expected bool
	}{
		{"Wrong hour", time.Date(2026, 1, 15, 3, 30, 0, 0, time.UTC), false},
		{"Wrong minute", time.Date(2026, 1, 15, 2, 31, 0, 0, time.UTC), false},
		{"Exact match", time.Date(2026, 1, 15, 2, 30, 0, 0, time.UTC), true},
		{"Same day again", time.Date(2026, 1, 15, 2, 30, 40, 0, time.UTC), false},
		{"Next day", time.Date(2026, 1, 16, 2, 30, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.shouldRun(tt.time))
		})
	}
}

func TestCronTrigger_FiresOncePerDay(t *testing.T) {
	cfg := DefaultCronTriggerConfig()
	cfg.CheckInterval = 2 * time.Millisecond
	fired := make(chan struct{}, 10)
	c, err := NewCronTrigger(cfg, func(context.Context) error {
		fired <- struct{}{}
		return errors.New("logged, not fatal")
	}, zap.NewNop())
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, c.Start(context.Background()))
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("trigger did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))

	assert.Len(t, fired, 0)
}

func TestCronTrigger_TriggerNow(t *testing.T) {
	called := false
	c, err := NewCronTrigger(DefaultCronTriggerConfig(), func(context.Context) error {
		called = true
		return nil
	}, nil)
	require.NoError(t, err)

	require.NoError(t, c.TriggerNow(context.Background()))
	assert.True(t, called)
}
