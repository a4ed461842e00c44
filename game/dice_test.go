package game_test

import (
	"testing"

	"wagering/game"
	"wagering/game/gametest"

	"github.com/stretchr/testify/assert"
)

func TestRollDice(t *testing.T) {
	t.Run("player higher", func(t *testing.T) {
		result := game.RollDice(gametest.NewScript().Dice(6, 5, 1, 2), 1000)
		assert.Equal(t, [2]int{6, 5}, result.Player)
		assert.Equal(t, [2]int{1, 2}, result.House)
		assert.Equal(t, 11, result.PlayerSum)
		assert.Equal(t, 3, result.HouseSum)
		assert.Equal(t, int64(2000), result.Win)
	})

	t.Run("tie returns stake", func(t *testing.T) {
		result := game.RollDice(gametest.NewScript().Dice(3, 4, 5, 2), 1000)
		assert.Equal(t, int64(1000), result.Win)
	})

	t.Run("house higher", func(t *testing.T) {
		result := game.RollDice(gametest.NewScript().Dice(1, 1, 6, 6), 1000)
		assert.Equal(t, int64(0), result.Win)
	})
}

func TestRollDice_FacesStayOnDie(t *testing.T) {
	src := game.NewSource()
	for i := 0; i < 500; i++ {
		result := game.RollDice(src, 100)
		for _, f := range append(result.Player[:], result.House[:]...) {
			assert.GreaterOrEqual(t, f, 1)
			assert.LessOrEqual(t, f, 6)
		}
	}
}
