package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PipelineMetrics records collection and scoring activity. It satisfies the
// metrics ports of the collection orchestrator and the scoring executor.
type PipelineMetrics struct {
	logger *zap.Logger

	candidatesTotal    *Counter
	adapterErrorsTotal *Counter
	runsTotal          *Counter
	runDuration        *Histogram
	analysesTotal      *Counter
	analysisDuration   *Histogram

	businessesGauge *Gauge
	unscoredGauge   *Gauge
	queueGauge      *Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// StatsProvider reports store-wide counts for the periodic gauges
type StatsProvider interface {
	CountBusinessesByIsland(ctx context.Context) (map[string]int64, error)
	CountUnscored(ctx context.Context) (int64, error)
}

// QueueLengther reports the scoring queue depth
type QueueLengther interface {
	QueueLength() int
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter, logger *zap.Logger) (*PipelineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &PipelineMetrics{logger: logger, stopCh: make(chan struct{})}

	var err error
	if m.candidatesTotal, err = NewCounter(meter, "hbi_candidates_total",
		"Candidates handled by outcome", "{candidate}"); err != nil {
		return nil, err
	}
	if m.adapterErrorsTotal, err = NewCounter(meter, "hbi_adapter_errors_total",
		"Adapter fetch failures", "{error}"); err != nil {
		return nil, err
	}
	if m.runsTotal, err = NewCounter(meter, "hbi_collection_runs_total",
		"Finished collection runs by status", "{run}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "hbi_collection_run_duration_seconds",
		Description: "Collection run wall time",
		Unit:        "s",
		Boundaries:  RunDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.analysesTotal, err = NewCounter(meter, "hbi_prospect_analyses_total",
		"Prospect analyses by priority", "{analysis}"); err != nil {
		return nil, err
	}
	if m.analysisDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "hbi_prospect_analysis_duration_seconds",
		Description: "Time spent in the analyzer",
		Unit:        "s",
		Boundaries:  AnalysisDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.businessesGauge, err = NewGauge(meter, "hbi_businesses",
		"Stored businesses by island", "{business}"); err != nil {
		return nil, err
	}
	if m.unscoredGauge, err = NewGauge(meter, "hbi_businesses_unscored",
		"Businesses without a prospect score", "{business}"); err != nil {
		return nil, err
	}
	if m.queueGauge, err = NewGauge(meter, "hbi_scoring_queue_length",
		"Scoring jobs waiting for a worker", "{job}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCandidate counts one candidate outcome
func (m *PipelineMetrics) RecordCandidate(ctx context.Context, adapter, outcome string) {
	m.candidatesTotal.Inc(ctx, AttrAdapter.String(adapter), AttrOutcome.String(outcome))
}

// RecordAdapterError counts one failed fetch
func (m *PipelineMetrics) RecordAdapterError(ctx context.Context, adapter string) {
	m.adapterErrorsTotal.Inc(ctx, AttrAdapter.String(adapter))
}

// RecordRun records a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, source, status string, duration time.Duration) {
	attrs := []attribute.KeyValue{AttrSource.String(source), AttrRunStatus.String(status)}
	m.runsTotal.Inc(ctx, attrs...)
	m.runDuration.RecordDuration(ctx, duration, attrs...)
}

// RecordAnalysis records one scored business
func (m *PipelineMetrics) RecordAnalysis(ctx context.Context, priority string, fallback bool, elapsed time.Duration) {
	m.analysesTotal.Inc(ctx, AttrPriority.String(priority), AttrFallback.Bool(fallback))
	m.analysisDuration.RecordDuration(ctx, elapsed, AttrFallback.Bool(fallback))
}

// StartPeriodicCollection refreshes the store and queue gauges every
// interval until Stop or ctx is done. queue may be nil.
func (m *PipelineMetrics) StartPeriodicCollection(ctx context.Context, stats StatsProvider, queue QueueLengther, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			m.collect(ctx, stats, queue)
			select {
			case <-ticker.C:
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *PipelineMetrics) collect(ctx context.Context, stats StatsProvider, queue QueueLengther) {
	if queue != nil {
		m.queueGauge.Record(ctx, int64(queue.QueueLength()))
	}
	if stats == nil {
		return
	}
	byIsland, err := stats.CountBusinessesByIsland(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect business counts", zap.Error(err))
	} else {
		for island, n := range byIsland {
			m.businessesGauge.Record(ctx, n, AttrIsland.String(island))
		}
	}
	unscored, err := stats.CountUnscored(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect unscored count", zap.Error(err))
		return
	}
	m.unscoredGauge.Record(ctx, unscored)
}

// Stop ends periodic collection. Safe to call more than once.
func (m *PipelineMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = &MetricsError{Op: "NewPipelineMetrics", Err: "meter cannot be nil"}

// MetricsError is a telemetry construction failure
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
