//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appbusiness "github.com/hawaiibiz/intel/internal/application/business"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/hawaiibiz/intel/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newBusiness(t *testing.T, name, islandText, source string) *business.Business {
	t.Helper()
	b, err := business.NewBusiness(business.Normalize(business.Candidate{
		Name:       name,
		IslandText: islandText,
		Source:     source,
	}), testNow)
	require.NoError(t, err)
	return b
}

func TestBusinessRepository_UniqueKeyPerIsland(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormBusinessRepository(tdb.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newBusiness(t, "Aloha Poke Co", "Honolulu", "news")))
	require.NoError(t, repo.Create(ctx, newBusiness(t, "Aloha Poke Co", "Kahului, Maui", "news")))

	err := repo.Create(ctx, newBusiness(t, "ALOHA POKE CO.", "Kailua, Oahu", "directory"))
	assert.ErrorIs(t, err, business.ErrDuplicateKey)

	byIsland, err := repo.CountByIsland(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, byIsland[business.IslandOahu])
	assert.EqualValues(t, 1, byIsland[business.IslandMaui])
}

func TestBusinessRepository_FilterAndUnscored(t *testing.T) {
	tdb := NewTestDB(t)
	businesses := persistence.NewGormBusinessRepository(tdb.DB)
	scores := persistence.NewGormProspectRepository(tdb.DB)
	ctx := context.Background()

	scored := newBusiness(t, "Kona Coffee Roasters", "Kailua-Kona", "directory")
	unscored := newBusiness(t, "Hanalei Surf Shop", "Hanalei, Kauai", "directory")
	require.NoError(t, businesses.Create(ctx, scored))
	require.NoError(t, businesses.Create(ctx, unscored))
	require.NoError(t, scores.Upsert(ctx, prospect.NewScore(scored.ID, prospect.Analysis{
		Score:              85,
		EstimatedDealValue: decimal.NewFromInt(25000),
	}, testNow)))

	ids, err := businesses.FindUnscored(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{unscored.ID}, ids)

	list, err := businesses.FindAll(ctx, business.Filter{Filter: shared.DefaultFilter(), MinScore: 80})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, scored.ID, list[0].ID)

	list, err = businesses.FindAll(ctx, business.Filter{Filter: shared.DefaultFilter(), Island: business.IslandKauai})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, unscored.ID, list[0].ID)

	summary, err := scores.Summarize(ctx, 80)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.TotalProspects)
	assert.EqualValues(t, 1, summary.HighPriorityCount)
	assert.True(t, decimal.NewFromInt(25000).Equal(summary.TotalPipelineValue))
}

func TestMergeEngine_ConcurrentUpsertsOnPostgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormBusinessRepository(tdb.DB)
	engine := appbusiness.NewMergeEngine(repo, nil)
	ctx := context.Background()

	const workers = 10
	outcomes := make([]business.Outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, outcome, err := engine.Upsert(ctx, business.Normalize(business.Candidate{
				Name:       "Mālama Farms",
				IslandText: "Hilo, HI",
				Source:     fmt.Sprintf("source-%d", i),
			}))
			assert.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	created := 0
	for _, o := range outcomes {
		if o == business.OutcomeCreated {
			created++
		}
	}
	assert.Equal(t, 1, created)

	stored, err := repo.FindByKey(ctx, business.NameKey("Malama Farms"), business.IslandBigIsland)
	require.NoError(t, err)
	assert.Len(t, stored.Sources, workers)
}

func TestRunRepository_Lifecycle(t *testing.T) {
	tdb := NewTestDB(t)
	runs := persistence.NewGormRunRepository(tdb.DB)
	ctx := context.Background()

	run, err := collection.NewRun("all", testNow)
	require.NoError(t, err)
	require.NoError(t, runs.Create(ctx, run))

	stored, err := runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, collection.RunStatusRunning, stored.Status)
	assert.Equal(t, "all", stored.Source)

	_, err = runs.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
