package business

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testFields() business.Fields {
	return business.Normalize(business.Candidate{
		Name:       "Aloha Poke Co",
		IslandText: "Honolulu, HI",
		Phone:      "808-555-1234",
		Source:     "directory",
	})
}

func newTestEngine(repo business.Repository) *MergeEngine {
	return NewMergeEngine(repo, nil, WithClock(func() time.Time { return fixedNow }))
}

func TestMergeEngine_Upsert_CreatesNewBusiness(t *testing.T) {
	repo := new(MockBusinessRepository)
	f := testFields()
	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(nil, shared.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*business.Business")).Return(nil)

	id, outcome, err := newTestEngine(repo).Upsert(context.Background(), f)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, business.OutcomeCreated, outcome)

	created := repo.Calls[1].Arguments.Get(1).(*business.Business)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "(808) 555-1234", created.Phone)
	assert.Equal(t, []string{"directory"}, created.Sources)
	assert.Equal(t, fixedNow, created.CreatedAt)
	repo.AssertExpectations(t)
}

func TestMergeEngine_Upsert_MergesIntoExisting(t *testing.T) {
	repo := new(MockBusinessRepository)
	existing, err := business.NewBusiness(business.Normalize(business.Candidate{
		Name:       "Aloha Poke Co",
		IslandText: "Oahu",
		Website:    "alohapoke.com",
		Source:     "news",
	}), fixedNow.Add(-time.Hour))
	require.NoError(t, err)

	f := testFields()
	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	id, outcome, err := newTestEngine(repo).Upsert(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	assert.Equal(t, business.OutcomeUpdated, outcome)
	assert.Equal(t, "https://alohapoke.com", existing.Website)
	assert.Equal(t, "(808) 555-1234", existing.Phone)
	assert.Equal(t, []string{"news", "directory"}, existing.Sources)
	assert.Equal(t, 2, existing.Version)
	repo.AssertExpectations(t)
}

func TestMergeEngine_Upsert_DuplicateInsertRetriesAsMerge(t *testing.T) {
	repo := new(MockBusinessRepository)
	f := testFields()
	winner, err := business.NewBusiness(f, fixedNow)
	require.NoError(t, err)

	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(nil, shared.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(business.ErrDuplicateKey).Once()
	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(winner, nil).Once()
	repo.On("Update", mock.Anything, winner).Return(nil).Once()

	id, outcome, err := newTestEngine(repo).Upsert(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, id)
	assert.Equal(t, business.OutcomeUpdated, outcome)
	repo.AssertExpectations(t)
}

func TestMergeEngine_Upsert_PersistentConflictIsPersistenceError(t *testing.T) {
	repo := new(MockBusinessRepository)
	f := testFields()
	existing, err := business.NewBusiness(f, fixedNow)
	require.NoError(t, err)

	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(shared.ErrConcurrencyConflict)

	_, _, err = newTestEngine(repo).Upsert(context.Background(), f)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestMergeEngine_Upsert_StoreFailureIsPersistenceError(t *testing.T) {
	repo := new(MockBusinessRepository)
	f := testFields()
	dbErr := errors.New("connection refused")
	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(nil, dbErr)

	_, _, err := newTestEngine(repo).Upsert(context.Background(), f)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.ErrorIs(t, err, dbErr)
	repo.AssertNumberOfCalls(t, "FindByKey", 1)
}

func TestMergeEngine_Upsert_EmptyNameKey(t *testing.T) {
	repo := new(MockBusinessRepository)

	_, _, err := newTestEngine(repo).Upsert(context.Background(), business.Fields{Island: business.IslandOahu})

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNotCalled(t, "FindByKey", mock.Anything, mock.Anything, mock.Anything)
}

func TestMergeEngine_Upsert_CancelledContext(t *testing.T) {
	repo := new(MockBusinessRepository)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestEngine(repo).Upsert(ctx, testFields())

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, shared.ErrPersistence)
}

func TestMergeEngine_Upsert_ReleasesKeyLock(t *testing.T) {
	repo := new(MockBusinessRepository)
	f := testFields()
	repo.On("FindByKey", mock.Anything, f.NameKey, business.IslandOahu).Return(nil, shared.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	engine := newTestEngine(repo)
	_, _, err := engine.Upsert(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 0, engine.locks.size())
}
