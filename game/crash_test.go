package game_test

import (
	"testing"

	"wagering/game"
	"wagering/game/gametest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrashRound_CrashesWhenMultiplierReachesPoint(t *testing.T) {
	round := game.NewCrashRound(1000, decimal.RequireFromString("2.5"))

	for i := 0; i < 14; i++ {
		crashed, err := round.Check()
		require.NoError(t, err)
		require.False(t, crashed, "check %d", i+1)
	}
	assert.True(t, round.Multiplier.Equal(decimal.RequireFromString("2.4")))
	assert.Nil(t, round.View().CrashPoint)

	crashed, err := round.Check()
	require.NoError(t, err)
	assert.True(t, crashed)
	assert.True(t, round.Multiplier.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, game.CrashCrashed, round.State)
	require.NotNil(t, round.View().CrashPoint)

	_, err = round.Cashout()
	assert.ErrorIs(t, err, game.ErrRoundOver)
	_, err = round.Check()
	assert.ErrorIs(t, err, game.ErrRoundOver)
	assert.Zero(t, round.Payout())
}

func TestCrashRound_Cashout(t *testing.T) {
	round := game.NewCrashRound(1234, decimal.RequireFromString("9.9"))
	for i := 0; i < 3; i++ {
		_, err := round.Check()
		require.NoError(t, err)
	}

	win, err := round.Cashout()
	require.NoError(t, err)

	// floor(1234 * 1.3)
	assert.Equal(t, int64(1604), win)
	assert.Equal(t, game.CrashCashedOut, round.State)
	assert.Equal(t, int64(1604), round.Payout())

	_, err = round.Cashout()
	assert.ErrorIs(t, err, game.ErrRoundOver)
}

func TestCrashRound_CashoutAtStartReturnsStake(t *testing.T) {
	round := game.NewCrashRound(1000, decimal.RequireFromString("5"))

	win, err := round.Cashout()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), win)
}

func TestDrawCrashPoint(t *testing.T) {
	t.Run("bounds of the draw", func(t *testing.T) {
		low := game.DrawCrashPoint(gametest.NewScript().Floats(0, 0.0001))
		assert.True(t, low.GreaterThan(decimal.RequireFromString("1.1")))

		high := game.DrawCrashPoint(gametest.NewScript().Floats(0.9999999))
		assert.True(t, high.LessThan(decimal.RequireFromString("10")))
	})

	t.Run("midpoint", func(t *testing.T) {
		mid := game.DrawCrashPoint(gametest.NewScript().Floats(0.5))
		assert.True(t, mid.Equal(decimal.RequireFromString("5.55")), mid.String())
	})

	t.Run("runtime source stays in range", func(t *testing.T) {
		src := game.NewSource()
		for i := 0; i < 1000; i++ {
			p := game.DrawCrashPoint(src)
			assert.True(t, p.GreaterThan(decimal.RequireFromString("1.1")))
			assert.True(t, p.LessThan(decimal.RequireFromString("10")))
		}
	})
}
