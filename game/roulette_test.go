package game_test

import (
	"testing"

	"wagering/game"
	"wagering/game/gametest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRouletteBet(t *testing.T) {
	t.Run("named selections", func(t *testing.T) {
		for _, name := range []string{"red", "black", "green", "1-12", "13-24", "25-36", "even", "odd"} {
			bet, err := game.ParseRouletteBet(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, bet.String())
		}
	})

	t.Run("straight numbers", func(t *testing.T) {
		bet, err := game.ParseRouletteBet(" 17 ")
		require.NoError(t, err)
		assert.Equal(t, game.BetStraight, bet.Kind)
		assert.Equal(t, 17, bet.Number)

		bet, err = game.ParseRouletteBet("0")
		require.NoError(t, err)
		assert.Equal(t, 0, bet.Number)
	})

	t.Run("case insensitive", func(t *testing.T) {
		bet, err := game.ParseRouletteBet("RED")
		require.NoError(t, err)
		assert.Equal(t, game.BetRed, bet.Kind)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := game.ParseRouletteBet("  ")
		assert.ErrorIs(t, err, game.ErrEmptyBetType)
	})

	t.Run("unknown", func(t *testing.T) {
		for _, s := range []string{"blue", "37", "-1", "+5", "1-13", "12.5"} {
			_, err := game.ParseRouletteBet(s)
			assert.ErrorIs(t, err, game.ErrUnknownBetType, s)
		}
	})
}

func TestPocketColor(t *testing.T) {
	assert.Equal(t, game.ColorGreen, game.PocketColor(0))
	assert.Equal(t, game.ColorRed, game.PocketColor(1))
	assert.Equal(t, game.ColorBlack, game.PocketColor(2))
	assert.Equal(t, game.ColorRed, game.PocketColor(36))
	assert.Equal(t, game.ColorBlack, game.PocketColor(35))

	reds := 0
	for n := 0; n <= 36; n++ {
		if game.PocketColor(n) == game.ColorRed {
			reds++
		}
	}
	assert.Equal(t, 18, reds)
}

func TestSpinRoulette(t *testing.T) {
	mustBet := func(s string) game.RouletteBet {
		bet, err := game.ParseRouletteBet(s)
		require.NoError(t, err)
		return bet
	}

	tests := []struct {
		name   string
		bet    string
		number int
		want   int64
	}{
		{"red hits red", "red", 1, 2000},
		{"red misses black", "red", 2, 0},
		{"black hits black", "black", 2, 2000},
		{"green hits zero", "green", 0, 36000},
		{"green misses", "green", 5, 0},
		{"first dozen", "1-12", 12, 3000},
		{"second dozen", "13-24", 13, 3000},
		{"third dozen", "25-36", 36, 3000},
		{"dozen misses zero", "1-12", 0, 0},
		{"even", "even", 10, 2000},
		{"even never pays zero", "even", 0, 0},
		{"odd", "odd", 7, 2000},
		{"odd misses zero", "odd", 0, 0},
		{"straight hit", "17", 17, 36000},
		{"straight miss", "17", 18, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := gametest.NewScript(tt.number)
			result := game.SpinRoulette(src, mustBet(tt.bet), 1000)

			assert.Equal(t, tt.want, result.Win)
			assert.Equal(t, tt.number, result.Number)
			assert.Equal(t, game.PocketColor(tt.number), result.Color)
			assert.Equal(t, tt.bet, result.Bet)
		})
	}
}
