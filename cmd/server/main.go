package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hawaiibiz/intel/internal/application/analytics"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/application/scoring"
	"github.com/hawaiibiz/intel/internal/infrastructure/adapters"
	"github.com/hawaiibiz/intel/internal/infrastructure/auth"
	"github.com/hawaiibiz/intel/internal/infrastructure/cache"
	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"github.com/hawaiibiz/intel/internal/infrastructure/llm"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/infrastructure/migration"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence"
	"github.com/hawaiibiz/intel/internal/infrastructure/scheduler"
	"github.com/hawaiibiz/intel/internal/infrastructure/storage"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
	"github.com/hawaiibiz/intel/internal/interfaces/http/handler"
	"github.com/hawaiibiz/intel/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/hawaiibiz/intel/docs"
)

//	@title			Hawaii Business Intelligence API
//	@version		1.0
//	@description	Collects Hawaii business data from public sources, deduplicates it and scores each business as a sales prospect.

//	@contact.name	API Support
//	@contact.url	https://github.com/hawaiibiz/intel

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	rootCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// Telemetry comes first so its log core can be attached to the logger.
	bootLog, err := newLogger(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	tel, err := telemetry.Setup(rootCtx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log, err := newLogger(cfg, tel.LogCore(zapcore.InfoLevel))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Hawaii business intelligence service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.Database.AutoMigrate {
		if err := migration.ApplyUp(cfg.Database.DSN(), log.Named("migrate")); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	dbMetrics, err := telemetry.NewDBInstrumentation(tel.Meter(), tel.DBConfig(), log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := db.DB.Use(dbMetrics); err != nil {
		log.Fatal("Failed to register database instrumentation", zap.Error(err))
	}
	dbMetrics.StartPoolStats(rootCtx)
	log.Info("Database connected successfully")

	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	runRepo := persistence.NewGormRunRepository(db.DB)
	scoreRepo := persistence.NewGormProspectRepository(db.DB)

	pipelineMetrics, err := telemetry.NewPipelineMetrics(tel.Meter(), log)
	if err != nil {
		log.Fatal("Failed to create pipeline metrics", zap.Error(err))
	}

	// Scoring: enqueue guard, worker pool and the model client.
	guard, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(rootCtx)
	if err != nil {
		log.Fatal("Failed to create enqueue guard", zap.Error(err))
	}
	analyzer := newAnalyzer(cfg.Scoring, log)
	executor := scoring.NewScoringExecutor(businessRepo, scoreRepo, analyzer, cfg.Scoring.HighPriorityScore, log,
		scoring.WithExecutorMetrics(pipelineMetrics))
	scoringScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		QueueSize:         cfg.Scheduler.QueueSize,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, executor, log)
	scoringQueue := scoring.NewQueue(scoringScheduler, guard, cfg.Collection.EnqueueTTL, log)
	scoringService := scoring.NewScoringService(businessRepo, scoreRepo, scoringQueue, log)

	// Without an analyzer the pool stays down and scoring requests answer
	// ERR_SCORING_OFFLINE; collected businesses are picked up by the next
	// startup sweep.
	scoringOnline := analyzer != nil && cfg.Scheduler.Enabled
	if scoringOnline {
		if err := scoringScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scoring scheduler", zap.Error(err))
		}
	} else {
		log.Warn("Scoring is offline",
			zap.Bool("scoring_enabled", cfg.Scoring.Enabled),
			zap.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
			zap.Bool("analyzer_configured", analyzer != nil),
		)
	}

	// Collection: adapters, orchestrator and the run service.
	adapterSet := adapters.Build(cfg.Adapters, log)
	registry := appcollection.NewRegistry(adapterSet.Adapters...)
	orchestratorOpts := []appcollection.OrchestratorOption{appcollection.WithMetrics(pipelineMetrics)}
	if archiver := newArchiver(rootCtx, cfg.Storage, log); archiver != nil {
		orchestratorOpts = append(orchestratorOpts, appcollection.WithArchiver(archiver))
	}
	orchestrator := appcollection.NewOrchestrator(appcollection.OrchestratorConfig{
		AdapterConcurrency: cfg.Collection.AdapterConcurrency,
		AdapterTimeout:     cfg.Collection.AdapterTimeout,
	}, runRepo, appbusiness.NewMergeEngine(businessRepo, log), scoringQueue, log, orchestratorOpts...)
	collectionService := appcollection.NewCollectionService(orchestrator, registry, runRepo, log)

	var dailyRun *scheduler.CronTrigger
	if cfg.Scheduler.Enabled {
		dailyRun, err = scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			Name:          "daily-collection",
			Hour:          cfg.Scheduler.DailyRunHour,
			Minute:        cfg.Scheduler.DailyRunMinute,
			CheckInterval: time.Minute,
		}, collectionService.RunAll, log)
		if err != nil {
			log.Fatal("Failed to create daily collection trigger", zap.Error(err))
		}
		if err := dailyRun.Start(rootCtx); err != nil {
			log.Fatal("Failed to start daily collection trigger", zap.Error(err))
		}
	}

	if scoringOnline && cfg.Scheduler.StartupSweep {
		go func() {
			if _, err := scoringService.ScoreUnanalyzed(rootCtx, cfg.Scheduler.StartupSweepLimit); err != nil {
				log.Warn("Startup scoring sweep failed", zap.Error(err))
			}
		}()
	}

	pipelineMetrics.StartPeriodicCollection(rootCtx,
		telemetry.NewRepositoryStatsProvider(businessRepo, scoreRepo), scoringScheduler, cfg.Telemetry.MetricsInterval)

	engine, err := router.New(rootCtx, router.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger,
		Tracing:     cfg.Telemetry.Enabled,
		Profiling:   tel.Profiler.IsEnabled(),
		Meter:       tel.Meter(),
		JWT:         auth.NewJWTService(cfg.JWT),
		Logger:      log,
	}, router.Handlers{
		Health:     handler.NewHealthHandler(db, collectionService),
		Business:   handler.NewBusinessHandler(appbusiness.NewBusinessService(businessRepo, scoreRepo)),
		Collection: handler.NewCollectionHandler(collectionService),
		Prospect:   handler.NewProspectHandler(scoringService),
		Analytics:  handler.NewAnalyticsHandler(analytics.NewAnalyticsService(businessRepo, scoreRepo, runRepo, cfg.Scoring.HighPriorityScore)),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	stopSignals()
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop taking requests, then let an in-flight run record its outcome
	// before the workers and stores go away.
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if dailyRun != nil {
		if err := dailyRun.Stop(ctx); err != nil {
			log.Error("Error stopping daily collection trigger", zap.Error(err))
		}
	}
	if err := collectionService.Shutdown(ctx); err != nil {
		log.Error("Collection run did not finish before shutdown", zap.Error(err))
	}
	if err := scoringScheduler.Stop(ctx); err != nil {
		log.Error("Error stopping scoring scheduler", zap.Error(err))
	}
	pipelineMetrics.Stop()
	dbMetrics.Stop()
	adapterSet.Close()
	if err := guard.Close(); err != nil {
		log.Error("Error closing enqueue guard", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := tel.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newLogger(cfg *config.Config, extra ...zapcore.Core) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, extra...)
}

// newAnalyzer returns nil when scoring is disabled or no API key is set
func newAnalyzer(cfg config.ScoringConfig, log *zap.Logger) scoring.Analyzer {
	if !cfg.Enabled {
		return nil
	}
	a, err := llm.NewAnthropicAnalyzer(llm.Config{
		APIKey:         cfg.AnthropicAPIKey,
		BaseURL:        cfg.AnthropicBaseURL,
		Model:          cfg.Model,
		MaxTokens:      cfg.MaxTokens,
		Temperature:    cfg.Temperature,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	}, log)
	if errors.Is(err, llm.ErrNoAPIKey) {
		return nil
	}
	if err != nil {
		log.Fatal("Failed to create analyzer", zap.Error(err))
	}
	return a
}

// newArchiver prefers the object store, then a local directory. Nil means
// raw candidates are not archived.
func newArchiver(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) appcollection.Archiver {
	switch {
	case cfg.Enabled:
		archive, err := storage.NewS3Archive(ctx, &cfg, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create raw archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare archive bucket", zap.String("bucket", archive.Bucket()), zap.Error(err))
		}
		return archive
	case cfg.LocalDir != "":
		archive, err := storage.NewFileArchive(cfg.LocalDir)
		if err != nil {
			log.Fatal("Failed to create raw archive", zap.String("dir", cfg.LocalDir), zap.Error(err))
		}
		return archive
	default:
		log.Info("Raw archive disabled")
		return nil
	}
}
