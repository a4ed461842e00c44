package infrastructure

import (
	"context"
	"os"
	"testing"
	"time"

	"wagering/events"
	"wagering/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseRecentPlayers(t *testing.T, recent RecentPlayers) {
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3, 2} {
		require.NoError(t, recent.Touch(ctx, id))
	}
	players, err := recent.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, players, "repeat players move to the front without duplicates")

	for id := int64(100); id < 115; id++ {
		require.NoError(t, recent.Touch(ctx, id))
	}
	players, err = recent.List(ctx)
	require.NoError(t, err)
	require.Len(t, players, RecentPlayersLimit)
	assert.Equal(t, int64(114), players[0])
	assert.Equal(t, int64(105), players[RecentPlayersLimit-1])
}

func TestMemoryRecentPlayers(t *testing.T) {
	exerciseRecentPlayers(t, NewMemoryRecentPlayers())
}

func TestRedisRecentPlayers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	recent, err := NewRedisRecentPlayers(ctx, addr, os.Getenv("REDIS_PASSWORD"), 15)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer recent.Close()

	require.NoError(t, recent.Clear(context.Background()))
	t.Cleanup(func() { _ = recent.Clear(context.Background()) })

	exerciseRecentPlayers(t, recent)
}

func TestRegisterRecentPlayers(t *testing.T) {
	bus := events.NewBus()
	recent := NewMemoryRecentPlayers()
	RegisterRecentPlayers(bus, recent)

	bus.Emit(context.Background(), events.WagerPlacedEvent{UserID: 9, Variant: models.VariantDice, Amount: 100})

	require.Eventually(t, func() bool {
		players, _ := recent.List(context.Background())
		return len(players) == 1 && players[0] == 9
	}, time.Second, 10*time.Millisecond)
}
