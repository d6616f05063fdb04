package telemetry

import (
	"context"
	"errors"

	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Telemetry bundles the providers built from configuration
type Telemetry struct {
	Tracer   *TracerProvider
	Meters   *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	cfg      config.TelemetryConfig
}

// Setup builds tracing, metrics, log export and profiling. Disabled parts
// are no-ops. logger is used for setup messages only.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	base := Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}
	t := &Telemetry{cfg: cfg}

	var err error
	if t.Tracer, err = NewTracerProvider(ctx, base, logger); err != nil {
		return nil, err
	}
	if t.Meters, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.Enabled && cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger); err != nil {
		return nil, errors.Join(err, t.Tracer.Shutdown(ctx))
	}
	if t.Logs, err = NewLoggerProvider(ctx, base, logger); err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}
	if t.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.PyroscopeURL,
		ApplicationName: cfg.ServiceName,
	}, logger); err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}
	if t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}
	return t, nil
}

// Meter returns the service meter
func (t *Telemetry) Meter() metric.Meter {
	return t.Meters.Meter(TracerName)
}

// LogCore returns the OTel zap core for logger.New
func (t *Telemetry) LogCore(level zapcore.Level) zapcore.Core {
	return t.Logs.Core(t.cfg.ServiceName, level)
}

// DBConfig returns the gorm instrumentation settings
func (t *Telemetry) DBConfig() DBConfig {
	return DBConfig{
		TraceEnabled:       t.cfg.Enabled && t.cfg.DBTraceEnabled,
		LogFullSQL:         t.cfg.DBLogFullSQL,
		SlowQueryThreshold: t.cfg.DBSlowQueryThresh,
	}
}

// Shutdown stops every provider, flushing pending data. Log export stops
// last so shutdown messages from the others are still delivered.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	if t.Meters != nil {
		errs = append(errs, t.Meters.Shutdown(ctx))
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
