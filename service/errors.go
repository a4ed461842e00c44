package service

import (
	"errors"
	"fmt"
)

var (
	ErrBetTooSmall          = errors.New("bet too small")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrMissingBetType       = errors.New("bet type is required")
	ErrInvalidBetType       = errors.New("invalid bet type")
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrUnknownVariant       = errors.New("unknown game variant")
	ErrIdempotencyConflict  = errors.New("idempotency key reused for a different wager")
	ErrAccountNotFound      = errors.New("account not found")

	// ErrWagerClosed is returned when a session's wager was settled or
	// abandoned elsewhere. The session is dropped and nothing is paid.
	ErrWagerClosed = errors.New("wager already closed")

	// ErrTransient marks persistence failures. The operation did not report
	// success and may be retried by the caller with the same idempotency key.
	ErrTransient = errors.New("transient persistence failure")
)

// BetTooSmallError is returned when the stake is under the table minimum
type BetTooSmallError struct {
	Amount int64
	Min    int64
}

func (e *BetTooSmallError) Error() string {
	return fmt.Sprintf("bet of %d is below the minimum of %d", e.Amount, e.Min)
}

func (e *BetTooSmallError) Is(target error) bool {
	return target == ErrBetTooSmall
}

// InsufficientFundsError carries the balance the debit was checked against
type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Balance, e.Required)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// InvalidBetTypeError names the rejected roulette selection
type InvalidBetTypeError struct {
	Value string
}

func (e *InvalidBetTypeError) Error() string {
	return fmt.Sprintf("invalid bet type %q", e.Value)
}

func (e *InvalidBetTypeError) Is(target error) bool {
	return target == ErrInvalidBetType
}

// TransientError wraps a storage failure during a ledger operation
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// persistenceError leaves business errors untouched and marks everything else transient
func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsBusinessError(err) || errors.Is(err, ErrTransient) {
		return err
	}
	return &TransientError{Op: op, Err: err}
}

// IsBusinessError reports whether err is a caller-facing wager rejection
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrBetTooSmall,
		ErrInsufficientFunds,
		ErrMissingBetType,
		ErrInvalidBetType,
		ErrNoActiveSession,
		ErrSessionAlreadyActive,
		ErrUnknownVariant,
		ErrIdempotencyConflict,
		ErrWagerClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
