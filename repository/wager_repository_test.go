package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wagering/models"
	"wagering/repository/testutil"
	"wagering/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWagerRepository_CreateAndSettle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedAccount(t, testDB.DB, 5001, 100000)

	wager := testutil.CreateTestWager(5001, models.VariantBlackjack, 1000)
	key := "retry-1"
	wager.IdempotencyKey = &key
	wager.Result = json.RawMessage(`{"finished":false}`)
	require.NoError(t, repo.Create(ctx, wager))

	got, err := repo.GetByID(ctx, wager.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.WagerStatusOpen, got.Status)
	assert.Equal(t, models.VariantBlackjack, got.Variant)
	assert.JSONEq(t, `{"finished":false}`, string(got.Result))

	byKey, err := repo.GetByIdempotencyKey(ctx, 5001, key)
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, wager.ID, byKey.ID)

	missing, err := repo.GetByIdempotencyKey(ctx, 5001, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	settledAt := time.Now().UTC()
	require.NoError(t, repo.Settle(ctx, wager.ID, models.WagerStatusWon, 2000, json.RawMessage(`{"finished":true}`), settledAt))

	got, err = repo.GetByID(ctx, wager.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WagerStatusWon, got.Status)
	assert.Equal(t, int64(2000), got.Win)
	assert.NotNil(t, got.SettledAt)

	err = repo.Settle(ctx, wager.ID, models.WagerStatusLost, 0, nil, settledAt)
	assert.ErrorIs(t, err, service.ErrWagerClosed, "a settled wager cannot be settled again")
}

func TestWagerRepository_IdempotencyKeyIsUniquePerUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedAccount(t, testDB.DB, 6001, 100000)
	testutil.SeedAccount(t, testDB.DB, 6002, 100000)

	key := "same"
	first := testutil.CreateTestWager(6001, models.VariantSlots, 500)
	first.IdempotencyKey = &key
	require.NoError(t, repo.Create(ctx, first))

	dup := testutil.CreateTestWager(6001, models.VariantSlots, 500)
	dup.IdempotencyKey = &key
	assert.Error(t, repo.Create(ctx, dup))

	otherUser := testutil.CreateTestWager(6002, models.VariantSlots, 500)
	otherUser.IdempotencyKey = &key
	assert.NoError(t, repo.Create(ctx, otherUser))
}

func TestWagerRepository_AbandonOpen(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedAccount(t, testDB.DB, 7001, 100000)

	open := testutil.CreateTestWager(7001, models.VariantCrash, 1000)
	require.NoError(t, repo.Create(ctx, open))

	settled := testutil.CreateTestWager(7001, models.VariantSlots, 1000)
	settled.Status = models.WagerStatusLost
	now := time.Now().UTC()
	settled.SettledAt = &now
	require.NoError(t, repo.Create(ctx, settled))

	played := testutil.CreateTestWager(7001, models.VariantBlackjack, 1000)
	require.NoError(t, repo.Create(ctx, played))
	assert.True(t, played.LastActiveAt.Equal(played.CreatedAt))
	require.NoError(t, repo.Touch(ctx, played.ID, time.Now().UTC().Add(time.Minute)))

	abandoned, err := repo.AbandonOpen(ctx, time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, abandoned, 1, "the touched wager is still live")
	assert.Equal(t, open.ID, abandoned[0].ID)
	assert.Equal(t, models.WagerStatusAbandoned, abandoned[0].Status)

	assert.ErrorIs(t, repo.Touch(ctx, open.ID, time.Now().UTC()), service.ErrWagerClosed)
	assert.ErrorIs(t, repo.Settle(ctx, open.ID, models.WagerStatusWon, 2000, nil, time.Now().UTC()), service.ErrWagerClosed)

	history, err := repo.GetByUser(ctx, 7001, 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	none, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}
