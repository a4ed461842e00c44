package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wagering/database"
	"wagering/models"
	"wagering/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const wagerColumns = `id, user_id, variant, amount, bet_type, idempotency_key, status, win, result, created_at, settled_at, last_active_at`

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

func scanWager(row pgx.Row) (*models.Wager, error) {
	var wager models.Wager
	err := row.Scan(
		&wager.ID,
		&wager.UserID,
		&wager.Variant,
		&wager.Amount,
		&wager.BetType,
		&wager.IdempotencyKey,
		&wager.Status,
		&wager.Win,
		&wager.Result,
		&wager.CreatedAt,
		&wager.SettledAt,
		&wager.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

func scanWagers(rows pgx.Rows) ([]*models.Wager, error) {
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}
	return wagers, nil
}

// Create inserts a wager
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	if wager.ID == uuid.Nil {
		wager.ID = uuid.New()
	}

	query := `
		INSERT INTO wagers (id, user_id, variant, amount, bet_type, idempotency_key, status, win, result, created_at, settled_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), $11, COALESCE($10, NOW()))
		RETURNING created_at, last_active_at
	`

	var createdAt *time.Time
	if !wager.CreatedAt.IsZero() {
		createdAt = &wager.CreatedAt
	}

	err := r.q.QueryRow(ctx, query,
		wager.ID,
		wager.UserID,
		wager.Variant,
		wager.Amount,
		wager.BetType,
		wager.IdempotencyKey,
		wager.Status,
		wager.Win,
		wager.Result,
		createdAt,
		wager.SettledAt,
	).Scan(&wager.CreatedAt, &wager.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to create wager for user %d: %w", wager.UserID, err)
	}

	return nil
}

// GetByID retrieves a wager by its ID
func (r *WagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1`

	wager, err := scanWager(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager %s: %w", id, err)
	}
	return wager, nil
}

// GetByIdempotencyKey finds the wager a user placed with the given key
func (r *WagerRepository) GetByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE user_id = $1 AND idempotency_key = $2`

	wager, err := scanWager(r.q.QueryRow(ctx, query, userID, key))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager by idempotency key for user %d: %w", userID, err)
	}
	return wager, nil
}

// GetByUser returns the most recent wagers for a user
func (r *WagerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for user %d: %w", userID, err)
	}
	return scanWagers(rows)
}

// Settle moves an open wager to a terminal status
func (r *WagerRepository) Settle(ctx context.Context, id uuid.UUID, status models.WagerStatus, win int64, result json.RawMessage, settledAt time.Time) error {
	query := `
		UPDATE wagers
		SET status = $2, win = $3, result = $4, settled_at = $5
		WHERE id = $1 AND status = 'open'
	`

	tag, err := r.q.Exec(ctx, query, id, status, win, result, settledAt)
	if err != nil {
		return fmt.Errorf("failed to settle wager %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wager %s: %w", id, service.ErrWagerClosed)
	}
	return nil
}

// Touch records player activity on an open wager
func (r *WagerRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE wagers
		SET last_active_at = GREATEST(last_active_at, $2)
		WHERE id = $1 AND status = 'open'
	`

	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch wager %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wager %s: %w", id, service.ErrWagerClosed)
	}
	return nil
}

// AbandonOpen marks every open wager with no activity since idleBefore as abandoned
func (r *WagerRepository) AbandonOpen(ctx context.Context, idleBefore time.Time, settledAt time.Time) ([]*models.Wager, error) {
	query := `
		UPDATE wagers
		SET status = 'abandoned', win = 0, settled_at = $2
		WHERE status = 'open' AND last_active_at < $1
		RETURNING ` + wagerColumns

	rows, err := r.q.Query(ctx, query, idleBefore, settledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to abandon open wagers: %w", err)
	}
	return scanWagers(rows)
}
