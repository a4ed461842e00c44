package game_test

import (
	"testing"

	"wagering/game"
	"wagering/game/gametest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandTotal(t *testing.T) {
	tests := []struct {
		name  string
		cards []game.Card
		want  int
	}{
		{"blackjack", []game.Card{10, game.Ace}, 21},
		{"soft seventeen", []game.Card{6, game.Ace}, 17},
		{"soft hand turns hard", []game.Card{6, game.Ace, 9}, 16},
		{"two aces", []game.Card{game.Ace, game.Ace}, 12},
		{"three aces and a nine", []game.Card{game.Ace, game.Ace, game.Ace, 9}, 12},
		{"bust without aces", []game.Card{10, 10, 5}, 25},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, game.HandTotal(tt.cards))
		})
	}
}

func TestDealBlackjack_HidesHoleCard(t *testing.T) {
	src := gametest.NewScript().Cards(10, 9, 7, game.Ace)
	hand := game.DealBlackjack(src, 1000)

	assert.Equal(t, []game.Card{10, 9}, hand.Player)
	assert.Equal(t, []game.Card{7, game.Ace}, hand.Dealer)
	assert.Equal(t, game.BlackjackAwaitingAction, hand.State)

	view := hand.View()
	assert.Equal(t, []game.Card{7}, view.DealerCards)
	assert.True(t, view.HoleHidden)
	assert.Zero(t, view.DealerTotal)
	assert.Equal(t, 19, view.PlayerTotal)
}

func TestBlackjackHand_StandWinsAgainstSeventeen(t *testing.T) {
	hand := game.NewBlackjackHand(1000, []game.Card{10, game.Ace}, []game.Card{10, 7})

	require.NoError(t, hand.Stand(gametest.NewScript()))

	assert.Equal(t, game.BlackjackResolved, hand.State)
	assert.Equal(t, game.BlackjackWin, hand.Result)
	assert.Equal(t, int64(2000), hand.Payout())
	assert.Equal(t, []game.Card{10, 7}, hand.Dealer, "dealer stands on 17")
}

func TestBlackjackHand_DealerDrawsBelowSeventeen(t *testing.T) {
	hand := game.NewBlackjackHand(1000, []game.Card{10, 8}, []game.Card{10, 2})

	require.NoError(t, hand.Stand(gametest.NewScript().Cards(3, 5)))

	assert.Equal(t, []game.Card{10, 2, 3, 5}, hand.Dealer)
	assert.Equal(t, game.BlackjackLose, hand.Result)
	assert.Zero(t, hand.Payout())
}

func TestBlackjackHand_DealerBust(t *testing.T) {
	hand := game.NewBlackjackHand(500, []game.Card{10, 2}, []game.Card{10, 6})

	require.NoError(t, hand.Stand(gametest.NewScript().Cards(10)))

	assert.Equal(t, game.BlackjackWin, hand.Result)
	assert.Equal(t, int64(1000), hand.Payout())
}

func TestBlackjackHand_PushPaysNothing(t *testing.T) {
	hand := game.NewBlackjackHand(1000, []game.Card{10, 8}, []game.Card{9, 9})

	require.NoError(t, hand.Stand(gametest.NewScript()))

	assert.Equal(t, game.BlackjackPush, hand.Result)
	assert.Zero(t, hand.Payout())
}

func TestBlackjackHand_HitBust(t *testing.T) {
	hand := game.NewBlackjackHand(1000, []game.Card{10, 6}, []game.Card{10, 7})

	require.NoError(t, hand.Hit(gametest.NewScript().Cards(9)))

	assert.Equal(t, game.BlackjackResolved, hand.State)
	assert.Equal(t, game.BlackjackBust, hand.Result)
	assert.Zero(t, hand.Payout())

	view := hand.View()
	assert.False(t, view.HoleHidden)
	assert.Equal(t, 17, view.DealerTotal)

	assert.ErrorIs(t, hand.Hit(gametest.NewScript().Cards(2)), game.ErrHandResolved)
	assert.ErrorIs(t, hand.Stand(gametest.NewScript()), game.ErrHandResolved)
}

func TestBlackjackHand_HitSoftAceSaves(t *testing.T) {
	hand := game.NewBlackjackHand(1000, []game.Card{game.Ace, 5}, []game.Card{10, 7})

	require.NoError(t, hand.Hit(gametest.NewScript().Cards(10)))

	assert.Equal(t, game.BlackjackAwaitingAction, hand.State)
	assert.Equal(t, 16, game.HandTotal(hand.Player))
}

func TestRenderCards(t *testing.T) {
	assert.Equal(t, "🂪 🂡", game.RenderCards([]game.Card{10, game.Ace}))
	assert.Equal(t, game.CardBack, game.Card(1).Glyph())
}
