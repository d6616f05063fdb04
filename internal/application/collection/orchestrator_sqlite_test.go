package collection_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// listAdapter yields its candidates in order, then returns err
type listAdapter struct {
	name       string
	candidates []business.Candidate
	err        error
}

func (a *listAdapter) Name() string { return a.name }

func (a *listAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	for _, c := range a.candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(c); err != nil {
			return err
		}
	}
	return a.err
}

type idRecorder struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *idRecorder) Enqueue(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func (r *idRecorder) enqueued() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.ids...)
}

type store struct {
	businesses *persistence.GormBusinessRepository
	runs       *persistence.GormRunRepository
	enqueued   *idRecorder
	orch       *appcollection.Orchestrator
}

func newStore(t *testing.T) *store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.BusinessModel{},
		&models.CollectionRunModel{},
		&models.ProspectScoreModel{},
	))

	s := &store{
		businesses: persistence.NewGormBusinessRepository(db),
		runs:       persistence.NewGormRunRepository(db),
		enqueued:   &idRecorder{},
	}
	s.orch = appcollection.NewOrchestrator(appcollection.OrchestratorConfig{AdapterConcurrency: 1},
		s.runs, appbusiness.NewMergeEngine(s.businesses, nil), s.enqueued, nil)
	return s
}

func TestOrchestrator_NewListingIsNormalizedAndStored(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	adapter := &listAdapter{name: "directory", candidates: []business.Candidate{
		{Name: "Aloha Dental", IslandText: "Honolulu, HI", Phone: "808.523.8585", Source: "directory"},
	}}

	run, err := s.orch.Run(ctx, []collection.Adapter{adapter}, "directory")

	require.NoError(t, err)
	assert.Equal(t, collection.RunStatusSuccess, run.Status)
	assert.Equal(t, 1, run.Found)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 1, run.Added)

	stored, err := s.businesses.FindByKey(ctx, business.NameKey("Aloha Dental"), business.IslandOahu)
	require.NoError(t, err)
	assert.Equal(t, business.IslandOahu, stored.Island)
	assert.Equal(t, "(808) 523-8585", stored.Phone)
	assert.Equal(t, business.IndustryOther, stored.Industry)
	assert.Equal(t, []uuid.UUID{stored.ID}, s.enqueued.enqueued())

	persisted, err := s.runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, collection.RunStatusSuccess, persisted.Status)
	assert.Equal(t, 1, persisted.Added)
}

func TestOrchestrator_RepeatRunAddsNothing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	adapter := &listAdapter{name: "directory", candidates: []business.Candidate{
		{Name: "Aloha Dental", IslandText: "Honolulu, HI", Phone: "808.523.8585", Source: "directory"},
	}}

	first, err := s.orch.Run(ctx, []collection.Adapter{adapter}, "directory")
	require.NoError(t, err)
	second, err := s.orch.Run(ctx, []collection.Adapter{adapter}, "directory")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Added)
	assert.Equal(t, collection.RunStatusSuccess, second.Status)
	assert.Equal(t, 1, second.Found)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 0, second.Added)

	total, err := s.businesses.Count(ctx, business.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, s.enqueued.enqueued(), 1, "only the created business is queued for scoring")
}

func TestOrchestrator_AdapterFailureAfterYieldingIsPartial(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	adapter := &listAdapter{
		name: "news",
		candidates: []business.Candidate{
			{Name: "Kona Coffee Roasters", IslandText: "Kailua-Kona", Source: "news"},
			{Name: "Hanalei Surf Shop", IslandText: "Hanalei, Kauai", Source: "news"},
			{Name: "Maui Sunset Tours", IslandText: "Lahaina", Source: "news"},
		},
		err: errors.New("connection reset by peer"),
	}

	run, err := s.orch.Run(ctx, []collection.Adapter{adapter}, "news")

	require.NoError(t, err)
	assert.Equal(t, collection.RunStatusPartial, run.Status)
	assert.Equal(t, 3, run.Found)
	assert.Equal(t, 3, run.Processed)
	assert.Equal(t, 3, run.Added)
	assert.Equal(t, 1, run.Errors)

	total, err := s.businesses.Count(ctx, business.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "candidates yielded before the failure stay merged")

	persisted, err := s.runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, collection.RunStatusPartial, persisted.Status)
	assert.Equal(t, 1, persisted.Errors)
}
