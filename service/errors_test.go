package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_MatchSentinels(t *testing.T) {
	assert.ErrorIs(t, &BetTooSmallError{Amount: 50, Min: 100}, ErrBetTooSmall)
	assert.ErrorIs(t, &InsufficientFundsError{Balance: 10, Required: 20}, ErrInsufficientFunds)
	assert.ErrorIs(t, &InvalidBetTypeError{Value: "x"}, ErrInvalidBetType)
	assert.ErrorIs(t, fmt.Errorf("debit stake: %w", &InsufficientFundsError{}), ErrInsufficientFunds)

	cause := errors.New("connection refused")
	err := &TransientError{Op: "commit wager", Err: cause}
	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "commit wager: connection refused", err.Error())
}

func TestPersistenceError(t *testing.T) {
	assert.Nil(t, persistenceError("op", nil))

	business := &InsufficientFundsError{Balance: 1, Required: 2}
	assert.Same(t, business, persistenceError("debit", business))

	wrapped := persistenceError("debit", errors.New("timeout"))
	var transient *TransientError
	assert.ErrorAs(t, wrapped, &transient)
	assert.Equal(t, "debit", transient.Op)

	assert.Same(t, wrapped, persistenceError("outer", wrapped), "already transient errors are not wrapped twice")

	closed := fmt.Errorf("wager 1: %w", ErrWagerClosed)
	assert.Same(t, closed, persistenceError("settle wager", closed))
	assert.False(t, errors.Is(persistenceError("settle wager", closed), ErrTransient))
}

func TestIsBusinessError(t *testing.T) {
	assert.True(t, IsBusinessError(ErrNoActiveSession))
	assert.True(t, IsBusinessError(&BetTooSmallError{}))
	assert.True(t, IsBusinessError(fmt.Errorf("wager 1: %w", ErrWagerClosed)))
	assert.False(t, IsBusinessError(errors.New("boom")))
	assert.False(t, IsBusinessError(&TransientError{Op: "x", Err: errors.New("y")}))
}
