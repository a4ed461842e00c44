package testutil

import (
	"context"
	"testing"
	"time"

	"wagering/database"
	"wagering/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// SeedAccount inserts an account directly, bypassing the ledger
func SeedAccount(t *testing.T, db *database.DB, userID, balance int64) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO accounts (user_id, balance) VALUES ($1, $2)`, userID, balance)
		return err
	})
	require.NoError(t, err)
}

// CreateTestWager builds an open wager for a user
func CreateTestWager(userID int64, variant models.Variant, amount int64) *models.Wager {
	return &models.Wager{
		ID:        uuid.New(),
		UserID:    userID,
		Variant:   variant,
		Amount:    amount,
		Status:    models.WagerStatusOpen,
		CreatedAt: time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond),
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   100000,
		BalanceAfter:    90000,
		ChangeAmount:    -10000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
