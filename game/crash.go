package game

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrRoundOver is returned when acting on a crashed or cashed-out round
var ErrRoundOver = errors.New("round is over")

var (
	crashFloor   = decimal.RequireFromString("1.1")
	crashCeiling = decimal.RequireFromString("10.0")

	// CrashStep is added to the multiplier on every check
	CrashStep = decimal.RequireFromString("0.1")
)

// CrashState is the round lifecycle
type CrashState string

const (
	CrashRunning   CrashState = "running"
	CrashCashedOut CrashState = "cashed_out"
	CrashCrashed   CrashState = "crashed"
)

// DrawCrashPoint picks the hidden threshold uniformly from (1.1, 10.0)
func DrawCrashPoint(src Source) decimal.Decimal {
	r := src.Float64()
	for r == 0 {
		r = src.Float64()
	}
	span := crashCeiling.Sub(crashFloor)
	return crashFloor.Add(span.Mul(decimal.NewFromFloat(r)))
}

// CrashRound is one rocket flight
type CrashRound struct {
	Bet        int64
	Multiplier decimal.Decimal
	State      CrashState
	crashPoint decimal.Decimal
}

// StartCrash launches a round with a freshly drawn crash point
func StartCrash(src Source, bet int64) *CrashRound {
	return NewCrashRound(bet, DrawCrashPoint(src))
}

// NewCrashRound launches a round with a known crash point
func NewCrashRound(bet int64, crashPoint decimal.Decimal) *CrashRound {
	return &CrashRound{
		Bet:        bet,
		Multiplier: decimal.NewFromInt(1),
		State:      CrashRunning,
		crashPoint: crashPoint,
	}
}

// CrashPoint exposes the hidden threshold for logging
func (r *CrashRound) CrashPoint() decimal.Decimal {
	return r.crashPoint
}

// Check advances the multiplier one step and reports whether the rocket crashed
func (r *CrashRound) Check() (bool, error) {
	if r.State != CrashRunning {
		return false, ErrRoundOver
	}
	r.Multiplier = r.Multiplier.Add(CrashStep)
	if r.Multiplier.GreaterThanOrEqual(r.crashPoint) {
		r.State = CrashCrashed
		return true, nil
	}
	return false, nil
}

// Cashout stops the round and pays floor(bet * multiplier)
func (r *CrashRound) Cashout() (int64, error) {
	if r.State != CrashRunning {
		return 0, ErrRoundOver
	}
	r.State = CrashCashedOut
	return r.Payout(), nil
}

// Payout is floor(bet * multiplier) for a cashed-out round, otherwise 0
func (r *CrashRound) Payout() int64 {
	if r.State != CrashCashedOut {
		return 0
	}
	return decimal.NewFromInt(r.Bet).Mul(r.Multiplier).Floor().IntPart()
}

// CrashView is the caller-visible state of a round
type CrashView struct {
	Multiplier decimal.Decimal  `json:"multiplier"`
	State      CrashState       `json:"state"`
	CrashPoint *decimal.Decimal `json:"crash_point,omitempty"`
}

// View hides the crash point until the rocket has crashed
func (r *CrashRound) View() *CrashView {
	v := &CrashView{Multiplier: r.Multiplier, State: r.State}
	if r.State == CrashCrashed {
		cp := r.crashPoint
		v.CrashPoint = &cp
	}
	return v
}
