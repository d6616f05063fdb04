package collection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRun(t *testing.T) *Run {
	t.Helper()
	r, err := NewRun("all", t0)
	require.NoError(t, err)
	return r
}

func TestNewRun(t *testing.T) {
	r := newRun(t)
	assert.Equal(t, RunStatusRunning, r.Status)
	assert.Equal(t, "all", r.Source)
	assert.Nil(t, r.FinishedAt)

	_, err := NewRun("", t0)
	assert.Error(t, err)
}

func TestRun_Finish(t *testing.T) {
	tests := []struct {
		name  string
		build func(r *Run)
		want  RunStatus
	}{
		{"no errors is success", func(r *Run) {
			_ = r.RecordFound()
			_ = r.RecordProcessed(true)
		}, RunStatusSuccess},
		{"empty run is success", func(r *Run) {}, RunStatusSuccess},
		{"errors with additions is partial", func(r *Run) {
			_ = r.RecordFound()
			_ = r.RecordProcessed(true)
			_ = r.RecordError("adapter news: timeout")
		}, RunStatusPartial},
		{"errors with updates only is partial", func(r *Run) {
			_ = r.RecordFound()
			_ = r.RecordProcessed(false)
			_ = r.RecordError("rejected")
		}, RunStatusPartial},
		{"errors and nothing merged is failed", func(r *Run) {
			_ = r.RecordError("adapter places: 503")
		}, RunStatusFailed},
		{"fatal is failed", func(r *Run) {
			_ = r.RecordProcessed(true)
			_ = r.MarkFatal("database unavailable")
		}, RunStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRun(t)
			tt.build(r)
			require.NoError(t, r.Finish(t0.Add(90*time.Second)))
			assert.Equal(t, tt.want, r.Status)
			require.NotNil(t, r.FinishedAt)
			assert.Equal(t, 90.0, r.DurationSeconds)
		})
	}
}

func TestRun_ImmutableAfterFinish(t *testing.T) {
	r := newRun(t)
	require.NoError(t, r.Finish(t0))

	assert.True(t, errors.Is(r.RecordFound(), ErrRunFinalized))
	assert.True(t, errors.Is(r.RecordProcessed(true), ErrRunFinalized))
	assert.True(t, errors.Is(r.RecordError("x"), ErrRunFinalized))
	assert.True(t, errors.Is(r.Finish(t0), ErrRunFinalized))
	assert.Equal(t, 0, r.Found)
}

func TestRun_Counts(t *testing.T) {
	r := newRun(t)
	_ = r.RecordFound()
	_ = r.RecordFound()
	_ = r.RecordProcessed(true)
	_ = r.RecordProcessed(false)
	_ = r.RecordError("bad listing")

	assert.Equal(t, 2, r.Found)
	assert.Equal(t, 2, r.Processed)
	assert.Equal(t, 1, r.Added)
	assert.Equal(t, 1, r.Errors)
	assert.Equal(t, []string{"bad listing"}, r.ErrorDetails)
}

func TestAdapterError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &AdapterError{Adapter: "news", Err: inner}
	assert.Equal(t, "adapter news: connection refused", err.Error())
	assert.True(t, errors.Is(err, inner))
}
