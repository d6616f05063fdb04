package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls gorm instrumentation
type DBConfig struct {
	TraceEnabled       bool
	LogFullSQL         bool // include bind variables in spans; never in production
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

// DBInstrumentation is a gorm plugin adding otelgorm spans plus query and
// pool metrics. Each statement is timed so slow queries are flagged on the
// span and counted.
type DBInstrumentation struct {
	config DBConfig
	logger *zap.Logger

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolConns      *Gauge

	sqlDB    *sql.DB
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ gorm.Plugin = (*DBInstrumentation)(nil)

type dbStartKey struct{}

// NewDBInstrumentation creates the plugin's instruments on meter
func NewDBInstrumentation(meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	d := &DBInstrumentation{config: cfg, logger: logger, stopCh: make(chan struct{})}
	var err error
	if d.queryTotal, err = NewCounter(meter, "hbi_db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if d.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "hbi_db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if d.slowQueryTotal, err = NewCounter(meter, "hbi_db_slow_query_total", "Queries slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	if d.poolConns, err = NewGauge(meter, "hbi_db_pool_connections", "Pool connections by state", "{connection}"); err != nil {
		return nil, err
	}
	return d, nil
}

// Name implements gorm.Plugin
func (d *DBInstrumentation) Name() string { return "hbi:db_instrumentation" }

// Initialize implements gorm.Plugin
func (d *DBInstrumentation) Initialize(db *gorm.DB) error {
	if d.config.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !d.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err == nil {
		d.sqlDB = sqlDB
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("hbi:before_create", d.before),
		cb.Query().Before("gorm:query").Register("hbi:before_query", d.before),
		cb.Update().Before("gorm:update").Register("hbi:before_update", d.before),
		cb.Delete().Before("gorm:delete").Register("hbi:before_delete", d.before),
		cb.Row().Before("gorm:row").Register("hbi:before_row", d.before),
		cb.Raw().Before("gorm:raw").Register("hbi:before_raw", d.before),
		cb.Create().After("gorm:create").Register("hbi:after_create", d.after("INSERT")),
		cb.Query().After("gorm:query").Register("hbi:after_query", d.after("SELECT")),
		cb.Update().After("gorm:update").Register("hbi:after_update", d.after("UPDATE")),
		cb.Delete().After("gorm:delete").Register("hbi:after_delete", d.after("DELETE")),
		cb.Row().After("gorm:row").Register("hbi:after_row", d.after("")),
		cb.Raw().After("gorm:raw").Register("hbi:after_raw", d.after("")),
	)
}

func (d *DBInstrumentation) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, dbStartKey{}, time.Now())
}

// after records one statement. An empty operation is read from the SQL.
func (d *DBInstrumentation) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		op := operation
		if op == "" {
			op = detectOperation(db.Statement.SQL.String())
		}
		var elapsed time.Duration
		if start, ok := ctx.Value(dbStartKey{}).(time.Time); ok {
			elapsed = time.Since(start)
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}

		d.queryTotal.Inc(ctx, AttrDBOperation.String(op))
		d.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(op))
		slow := elapsed > d.config.SlowQueryThreshold
		if slow {
			d.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
		}

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(
			attribute.String("db.sql.table", table),
			attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
		)
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordError(span, db.Error)
		}
		if slow {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", d.config.SlowQueryThreshold.Milliseconds()),
			))
		}
	}
}

func detectOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

// StartPoolStats records pool gauges every PoolStatsInterval until Stop
func (d *DBInstrumentation) StartPoolStats(ctx context.Context) {
	if d.sqlDB == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.config.PoolStatsInterval)
		defer ticker.Stop()
		for {
			d.recordPoolStats(ctx)
			select {
			case <-ticker.C:
			case <-d.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (d *DBInstrumentation) recordPoolStats(ctx context.Context) {
	s := d.sqlDB.Stats()
	d.poolConns.Record(ctx, int64(s.Idle), AttrDBState.String("idle"))
	d.poolConns.Record(ctx, int64(s.InUse), AttrDBState.String("in_use"))
	d.poolConns.Record(ctx, int64(s.MaxOpenConnections), AttrDBState.String("max"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (d *DBInstrumentation) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.wg.Wait()
	})
}
