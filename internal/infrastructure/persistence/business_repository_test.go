package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestBusiness(t *testing.T, name string, island business.Island, source string) *business.Business {
	t.Helper()
	b, err := business.NewBusiness(business.Fields{
		Name:     name,
		NameKey:  business.NameKey(name),
		Island:   island,
		Industry: business.IndustryFoodService,
		Source:   source,
	}, testNow)
	require.NoError(t, err)
	return b
}

func TestGormBusinessRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormBusinessRepository(newSQLiteDB(t))

	employees := 12
	b := newTestBusiness(t, "Kōna Coffee Co", business.IslandBigIsland, "places")
	b.EmployeeCountEstimate = &employees
	b.AnnualRevenueEstimate = business.EstimateAnnualRevenue(&employees)
	b.GrowthSignals = []string{"hiring"}
	require.NoError(t, repo.Create(ctx, b))

	t.Run("by key", func(t *testing.T) {
		found, err := repo.FindByKey(ctx, "kona coffee co", business.IslandBigIsland)
		require.NoError(t, err)
		assert.Equal(t, b.ID, found.ID)
		assert.Equal(t, "Kōna Coffee Co", found.Name)
		assert.Equal(t, []string{"places"}, found.Sources)
		assert.Equal(t, []string{"hiring"}, found.GrowthSignals)
		require.NotNil(t, found.EmployeeCountEstimate)
		assert.Equal(t, 12, *found.EmployeeCountEstimate)
		require.NotNil(t, found.AnnualRevenueEstimate)
		assert.Equal(t, "1800000", found.AnnualRevenueEstimate.String())
		assert.Equal(t, 1, found.Version)
	})

	t.Run("same name on another island is a different key", func(t *testing.T) {
		_, err := repo.FindByKey(ctx, "kona coffee co", business.IslandOahu)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, business.IndustryFoodService, found.Industry)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate key is reported", func(t *testing.T) {
		dup := newTestBusiness(t, "KONA COFFEE CO", business.IslandBigIsland, "news")
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, business.ErrDuplicateKey)
	})
}

func TestGormBusinessRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewGormBusinessRepository(newSQLiteDB(t))

	b := newTestBusiness(t, "Aloha Surf Shop", business.IslandOahu, "directory")
	require.NoError(t, repo.Create(ctx, b))

	t.Run("merge is persisted", func(t *testing.T) {
		stored, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		stored.MergeFrom(business.Fields{Phone: "(808) 555-1234", Source: "places"}, testNow.Add(time.Hour))
		require.NoError(t, repo.Update(ctx, stored))

		reloaded, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "(808) 555-1234", reloaded.Phone)
		assert.Equal(t, []string{"directory", "places"}, reloaded.Sources)
		assert.Equal(t, 2, reloaded.Version)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		stale := newTestBusiness(t, "Aloha Surf Shop", business.IslandOahu, "news")
		stale.ID = b.ID
		stale.MergeFrom(business.Fields{Website: "https://aloha.example"}, testNow)
		err := repo.Update(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		ghost := newTestBusiness(t, "Ghost", business.IslandMaui, "news")
		ghost.IncrementVersion()
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})
}

func TestGormBusinessRepository_WithTx(t *testing.T) {
	ctx := context.Background()
	repo := NewGormBusinessRepository(newSQLiteDB(t))

	t.Run("commits", func(t *testing.T) {
		err := repo.WithTx(ctx, func(tx business.Repository) error {
			return tx.Create(ctx, newTestBusiness(t, "Maui Tacos", business.IslandMaui, "news"))
		})
		require.NoError(t, err)
		_, err = repo.FindByKey(ctx, "maui tacos", business.IslandMaui)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(tx business.Repository) error {
			if err := tx.Create(ctx, newTestBusiness(t, "Hilo Hattie", business.IslandBigIsland, "news")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		_, err = repo.FindByKey(ctx, "hilo hattie", business.IslandBigIsland)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBusinessRepository_Queries(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormBusinessRepository(db)
	scores := NewGormProspectRepository(db)

	a := newTestBusiness(t, "Lānaʻi Pine Cafe", business.IslandLanai, "news")
	b := newTestBusiness(t, "Kauai Kayak Tours", business.IslandKauai, "places")
	b.Industry = business.IndustryTourism
	c := newTestBusiness(t, "Kauai Bakery", business.IslandKauai, "places")
	c.CreatedAt = testNow.Add(time.Minute)
	for _, x := range []*business.Business{a, b, c} {
		require.NoError(t, repo.Create(ctx, x))
	}
	require.NoError(t, scores.Upsert(ctx, prospect.NewScore(b.ID, prospect.Analysis{Score: 85}, testNow)))

	t.Run("filter by island", func(t *testing.T) {
		f := business.Filter{Filter: shared.DefaultFilter(), Island: business.IslandKauai}
		list, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		n, err := repo.Count(ctx, f)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("search ignores okina and diacritics", func(t *testing.T) {
		f := business.Filter{Filter: shared.DefaultFilter()}
		f.Search = "lanai pine"
		list, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)
	})

	t.Run("min score joins prospect scores", func(t *testing.T) {
		f := business.Filter{Filter: shared.DefaultFilter(), MinScore: 80}
		list, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b.ID, list[0].ID)
	})

	t.Run("unscored oldest first", func(t *testing.T) {
		ids, err := repo.FindUnscored(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a.ID, c.ID}, ids)
	})

	t.Run("counts by island and industry", func(t *testing.T) {
		byIsland, err := repo.CountByIsland(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, byIsland[business.IslandKauai])
		assert.EqualValues(t, 1, byIsland[business.IslandLanai])

		byIndustry, err := repo.CountByIndustry(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, byIndustry[business.IndustryTourism])
		assert.EqualValues(t, 2, byIndustry[business.IndustryFoodService])
	})
}

func TestGormBusinessRepository_FindByKey_SQL(t *testing.T) {
	gdb, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormBusinessRepository(gdb)

	t.Run("queries by name key and island", func(t *testing.T) {
		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "name", "name_key", "island", "industry", "sources", "growth_signals"}).
			AddRow(id.String(), testNow, testNow, 3, "Aloha Poke", "aloha poke", "Oahu", "FoodService", `["news"]`, `[]`)
		mock.ExpectQuery(`SELECT \* FROM "businesses" WHERE name_key = \$1 AND island = \$2 ORDER BY "businesses"."id" LIMIT \$3`).
			WithArgs("aloha poke", "Oahu", 1).
			WillReturnRows(rows)

		b, err := repo.FindByKey(context.Background(), "aloha poke", business.IslandOahu)
		require.NoError(t, err)
		assert.Equal(t, id, b.ID)
		assert.Equal(t, 3, b.Version)
		assert.Equal(t, []string{"news"}, b.Sources)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is passed through", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "businesses"`).WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByKey(context.Background(), "x", business.IslandOahu)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}
