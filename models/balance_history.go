package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial TransactionType = "initial"
	TransactionTypeStake   TransactionType = "stake"
	TransactionTypePayout  TransactionType = "payout"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	WagerID             *uuid.UUID      `db:"wager_id"`
	CreatedAt           time.Time       `db:"created_at"`
}
