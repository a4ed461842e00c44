package service

import (
	"context"
	"encoding/json"
	"time"

	"wagering/events"
	"wagering/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account ledger access
type AccountRepository interface {
	// GetByUserID retrieves an account, returning nil when the user has none
	GetByUserID(ctx context.Context, userID int64) (*models.Account, error)

	// Create opens an account with the starting balance
	Create(ctx context.Context, userID int64, initialBalance int64) (*models.Account, error)

	// Debit subtracts amount in a single conditional update and returns the new state.
	// Fails with *InsufficientFundsError when the balance does not cover amount.
	Debit(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// Credit adds amount to the balance and to total_won
	Credit(ctx context.Context, userID int64, amount int64) (*models.Account, error)

	// UpdateProgress stores level, xp and status
	UpdateProgress(ctx context.Context, userID int64, level, xp int64, status models.Status) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the most recent balance history for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create inserts a wager, assigning its ID and CreatedAt when unset
	Create(ctx context.Context, wager *models.Wager) error

	// GetByID retrieves a wager, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error)

	// GetByIdempotencyKey finds the wager a user placed with the given key
	GetByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Wager, error)

	// GetByUser returns the most recent wagers for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Wager, error)

	// Settle moves an open wager to a terminal status. It returns
	// ErrWagerClosed when the wager is missing or no longer open.
	Settle(ctx context.Context, id uuid.UUID, status models.WagerStatus, win int64, result json.RawMessage, settledAt time.Time) error

	// Touch moves an open wager's LastActiveAt forward, or returns ErrWagerClosed
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	// AbandonOpen marks every wager still open and idle since before idleBefore as abandoned
	AbandonOpen(ctx context.Context, idleBefore time.Time, settledAt time.Time) ([]*models.Wager, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases queued events
	Commit() error

	// Rollback rolls back the transaction and drops queued events
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	WagerRepository() WagerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccountService defines the interface for account queries
type AccountService interface {
	// GetAccount returns the account snapshot, creating it on first contact
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)

	// History returns the latest balance changes for a user
	History(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)

	// Wagers returns the latest wagers for a user
	Wagers(ctx context.Context, userID int64, limit int) ([]*models.Wager, error)
}

// WagerService defines the interface for placing and playing wagers
type WagerService interface {
	// PlaceWager validates, charges and resolves a bet. Blackjack and crash
	// open a session that the follow-up actions below operate on.
	PlaceWager(ctx context.Context, req models.WagerRequest) (*models.Outcome, error)

	BlackjackHit(ctx context.Context, userID int64) (*models.Outcome, error)
	BlackjackStand(ctx context.Context, userID int64) (*models.Outcome, error)
	CrashCheck(ctx context.Context, userID int64) (*models.Outcome, error)
	CrashCashout(ctx context.Context, userID int64) (*models.Outcome, error)

	// AbandonStaleSessions settles or abandons sessions idle since before the cutoff
	AbandonStaleSessions(ctx context.Context, idleSince time.Time) (int, error)

	// AbandonOrphanedWagers abandons open wagers with no activity since idleSince.
	// Wagers still played by a live process keep refreshing their activity and are skipped.
	AbandonOrphanedWagers(ctx context.Context, idleSince time.Time) (int, error)
}
