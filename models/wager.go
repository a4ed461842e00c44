package models

import (
	"encoding/json"
	"time"

	"wagering/game"

	"github.com/google/uuid"
)

// Variant identifies one of the chance games
type Variant string

const (
	VariantSlots     Variant = "slots"
	VariantRoulette  Variant = "roulette"
	VariantDice      Variant = "dice"
	VariantBlackjack Variant = "blackjack"
	VariantCrash     Variant = "crash"
)

// Variants lists every supported game
var Variants = []Variant{VariantSlots, VariantRoulette, VariantDice, VariantBlackjack, VariantCrash}

// ParseVariant resolves a game name
func ParseVariant(s string) (Variant, bool) {
	for _, v := range Variants {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// MultiStep reports whether the game keeps a session between player actions
func (v Variant) MultiStep() bool {
	return v == VariantBlackjack || v == VariantCrash
}

// WagerStatus represents the lifecycle of a persisted wager
type WagerStatus string

const (
	WagerStatusOpen      WagerStatus = "open"
	WagerStatusWon       WagerStatus = "won"
	WagerStatusLost      WagerStatus = "lost"
	WagerStatusPush      WagerStatus = "push"
	WagerStatusAbandoned WagerStatus = "abandoned"
)

// WagerRequest is what a caller submits to place a bet
type WagerRequest struct {
	UserID  int64
	Variant Variant
	Amount  int64
	// BetType is the roulette selection (red, black, green, 1-12, even, 17, ...)
	BetType string
	// IdempotencyKey, when set, makes retries of the same request return the first outcome
	IdempotencyKey string
}

// Wager represents a persisted bet
type Wager struct {
	ID             uuid.UUID       `db:"id"`
	UserID         int64           `db:"user_id"`
	Variant        Variant         `db:"variant"`
	Amount         int64           `db:"amount"`
	BetType        string          `db:"bet_type"`
	IdempotencyKey *string         `db:"idempotency_key"`
	Status         WagerStatus     `db:"status"`
	Win            int64           `db:"win"`
	Result         json.RawMessage `db:"result"`
	CreatedAt      time.Time       `db:"created_at"`
	SettledAt      *time.Time      `db:"settled_at"`
	// LastActiveAt is refreshed by the process holding the session while it is played
	LastActiveAt time.Time `db:"last_active_at"`
}

// Outcome is returned to the caller after every wager action
type Outcome struct {
	WagerID   uuid.UUID `json:"wager_id"`
	Variant   Variant   `json:"variant"`
	Bet       int64     `json:"bet"`
	Win       int64     `json:"win"`
	Premium   bool      `json:"premium"`
	Finished  bool      `json:"finished"`
	Balance   int64     `json:"balance"`
	Level     int64     `json:"level"`
	XP        int64     `json:"xp"`
	Status    Status    `json:"status"`
	LevelUp   bool      `json:"level_up,omitempty"`
	Replayed  bool      `json:"replayed,omitempty"`

	Slots     *game.SlotsResult    `json:"slots,omitempty"`
	Roulette  *game.RouletteResult `json:"roulette,omitempty"`
	Dice      *game.DiceResult     `json:"dice,omitempty"`
	Blackjack *game.BlackjackView  `json:"blackjack,omitempty"`
	Crash     *game.CrashView      `json:"crash,omitempty"`
}

// StatusForWin maps a settled payout onto the persisted wager status
func StatusForWin(bet, win int64) WagerStatus {
	switch {
	case win > bet:
		return WagerStatusWon
	case win == bet && win > 0:
		return WagerStatusPush
	default:
		return WagerStatusLost
	}
}
