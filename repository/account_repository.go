package repository

import (
	"context"
	"fmt"
	"time"

	"wagering/database"
	"wagering/models"
	"wagering/service"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `user_id, balance, total_won, total_lost, level, xp, status, premium_expiry, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.UserID,
		&account.Balance,
		&account.TotalWon,
		&account.TotalLost,
		&account.Level,
		&account.XP,
		&account.Status,
		&account.PremiumExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByUserID retrieves an account by user ID
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}
	return account, nil
}

// Create opens a new account with the initial balance
func (r *AccountRepository) Create(ctx context.Context, userID int64, initialBalance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, balance, level, xp, status)
		VALUES ($1, $2, 1, 0, $3)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, initialBalance, models.StatusNovice))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", userID, err)
	}
	return account, nil
}

// Debit subtracts amount only if the balance covers it, in a single statement
func (r *AccountRepository) Debit(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $2,
		    total_lost = total_lost + $2,
		    updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, amount))
	if err == pgx.ErrNoRows {
		current, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		if current == nil {
			return nil, fmt.Errorf("account %d not found", userID)
		}
		return nil, &service.InsufficientFundsError{Balance: current.Balance, Required: amount}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit account %d: %w", userID, err)
	}
	return account, nil
}

// Credit adds amount to the balance and lifetime winnings
func (r *AccountRepository) Credit(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    total_won = total_won + $2,
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, amount))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("account %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to credit account %d: %w", userID, err)
	}
	return account, nil
}

// UpdateProgress stores level, xp and status
func (r *AccountRepository) UpdateProgress(ctx context.Context, userID int64, level, xp int64, status models.Status) error {
	query := `
		UPDATE accounts
		SET level = $2, xp = $3, status = $4, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query, userID, level, xp, status)
	if err != nil {
		return fmt.Errorf("failed to update progress for account %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", userID)
	}
	return nil
}

// SetPremiumExpiry grants premium until expiry, or revokes it when expiry is nil
func (r *AccountRepository) SetPremiumExpiry(ctx context.Context, userID int64, expiry *time.Time) error {
	query := `UPDATE accounts SET premium_expiry = $2, updated_at = NOW() WHERE user_id = $1`

	result, err := r.q.Exec(ctx, query, userID, expiry)
	if err != nil {
		return fmt.Errorf("failed to set premium expiry for account %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", userID)
	}
	return nil
}
