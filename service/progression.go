package service

import "wagering/models"

const (
	// XPPerLevel scales the xp needed to leave a level: level n needs n*XPPerLevel
	XPPerLevel = 1000
	// WinPerXP is the payout that earns one xp
	WinPerXP = 100
)

// Progress is the result of crediting xp to an account
type Progress struct {
	Level        int64
	XP           int64
	Status       models.Status
	LevelsGained int64
}

// ApplyXP grants floor(win/100) xp and rolls any surplus into new levels.
// A zero or negative win leaves level and xp unchanged.
func ApplyXP(level, xp, win int64) Progress {
	if level < 1 {
		level = 1
	}
	start := level
	if win > 0 {
		xp += win / WinPerXP
	}
	for xp >= level*XPPerLevel {
		xp -= level * XPPerLevel
		level++
	}
	return Progress{
		Level:        level,
		XP:           xp,
		Status:       models.StatusForLevel(level),
		LevelsGained: level - start,
	}
}
