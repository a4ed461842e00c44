package models

import (
	"time"
)

// Status is the progression tier derived from an account's level
type Status string

const (
	StatusNovice Status = "novice"
	StatusPlayer Status = "player"
	StatusPro    Status = "pro"
	StatusLegend Status = "legend"
)

// StatusForLevel maps a level onto its tier
func StatusForLevel(level int64) Status {
	switch {
	case level >= 30:
		return StatusLegend
	case level >= 20:
		return StatusPro
	case level >= 10:
		return StatusPlayer
	default:
		return StatusNovice
	}
}

// Account represents a player's ledger entry
type Account struct {
	UserID        int64      `db:"user_id"`
	Balance       int64      `db:"balance"`
	TotalWon      int64      `db:"total_won"`
	TotalLost     int64      `db:"total_lost"`
	Level         int64      `db:"level"`
	XP            int64      `db:"xp"`
	Status        Status     `db:"status"`
	PremiumExpiry *time.Time `db:"premium_expiry"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// PremiumActive reports whether the premium multiplier applies at the given instant
func (a *Account) PremiumActive(now time.Time) bool {
	return a.PremiumExpiry != nil && now.Before(*a.PremiumExpiry)
}

// CanAfford checks if the account can cover the given stake
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}
