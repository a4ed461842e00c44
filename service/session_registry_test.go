package service

import (
	"testing"
	"time"

	"wagering/game"
	"wagering/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_OneSessionPerUserAndGame(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Now()

	bj := &Session{WagerID: uuid.New(), UserID: 1, Variant: models.VariantBlackjack, StartedAt: now}
	require.NoError(t, r.Create(bj))

	dup := &Session{WagerID: uuid.New(), UserID: 1, Variant: models.VariantBlackjack, StartedAt: now}
	assert.ErrorIs(t, r.Create(dup), ErrSessionAlreadyActive)

	crash := &Session{WagerID: uuid.New(), UserID: 1, Variant: models.VariantCrash, StartedAt: now}
	assert.NoError(t, r.Create(crash), "a different game is a separate slot")

	other := &Session{WagerID: uuid.New(), UserID: 2, Variant: models.VariantBlackjack, StartedAt: now}
	assert.NoError(t, r.Create(other))
	assert.Equal(t, 3, r.Len())

	got, ok := r.Get(1, models.VariantBlackjack)
	require.True(t, ok)
	assert.Same(t, bj, got)
}

func TestSessionRegistry_RemoveChecksWager(t *testing.T) {
	r := NewSessionRegistry()
	s := &Session{WagerID: uuid.New(), UserID: 1, Variant: models.VariantCrash, StartedAt: time.Now()}
	require.NoError(t, r.Create(s))

	assert.False(t, r.Remove(1, models.VariantCrash, uuid.New()))
	assert.True(t, r.Remove(1, models.VariantCrash, s.WagerID))
	_, ok := r.Get(1, models.VariantCrash)
	assert.False(t, ok)
}

func TestSessionRegistry_IdleSince(t *testing.T) {
	r := NewSessionRegistry()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	old := &Session{WagerID: uuid.New(), UserID: 1, Variant: models.VariantCrash, StartedAt: base}
	fresh := &Session{WagerID: uuid.New(), UserID: 2, Variant: models.VariantCrash, StartedAt: base}
	require.NoError(t, r.Create(old))
	require.NoError(t, r.Create(fresh))
	r.Touch(fresh, base.Add(2*time.Hour))

	idle := r.IdleSince(base.Add(time.Hour))
	require.Len(t, idle, 1)
	assert.Same(t, old, idle[0])
	assert.Equal(t, base.Add(2*time.Hour), r.LastActive(fresh))
}

func TestSession_TerminalAndPayout(t *testing.T) {
	hand := game.NewBlackjackHand(1000, []game.Card{10, 10}, []game.Card{10, 7})
	s := &Session{Bet: 1000, Blackjack: hand}
	assert.False(t, s.Terminal())

	require.NoError(t, hand.Stand(nil))
	assert.True(t, s.Terminal())
	assert.Equal(t, int64(2000), s.Payout())
	assert.Equal(t, models.WagerStatusWon, s.WagerStatus(s.Payout()))

	push := game.NewBlackjackHand(1000, []game.Card{10, 7}, []game.Card{10, 7})
	require.NoError(t, push.Stand(nil))
	assert.Equal(t, models.WagerStatusPush, (&Session{Bet: 1000, Blackjack: push}).WagerStatus(0))

	round := game.NewCrashRound(1000, decimal.RequireFromString("3"))
	cs := &Session{Bet: 1000, Crash: round}
	assert.False(t, cs.Terminal())
	_, err := round.Cashout()
	require.NoError(t, err)
	assert.True(t, cs.Terminal())
	assert.Equal(t, int64(1000), cs.Payout())
}
