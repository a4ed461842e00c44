// Package memory is an in-process storage backend with transactional
// rollback. It backs the memory storage driver and the service tests.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"wagering/events"
	"wagering/models"
	"wagering/service"

	"github.com/google/uuid"
)

// ErrDuplicateIdempotencyKey mirrors the unique constraint on (user_id, idempotency_key)
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// Store keeps accounts, wagers and balance history in maps. Every
// mutation is journaled by the unit of work that made it so a rollback
// can undo it. Units of work for different users never block each other
// beyond the short critical section of a single operation.
type Store struct {
	mu       sync.Mutex
	accounts map[int64]*models.Account
	wagers   map[uuid.UUID]*models.Wager
	history  []*models.BalanceHistory
	nextID   int64
	bus      *events.Bus
	now      func() time.Time

	failMu      sync.Mutex
	failCommits int
	failErr     error
}

// NewStore creates an empty store that flushes committed events to bus
func NewStore(bus *events.Bus) *Store {
	return &Store{
		accounts: make(map[int64]*models.Account),
		wagers:   make(map[uuid.UUID]*models.Wager),
		bus:      bus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create starts a new unit of work against the store
func (s *Store) Create() service.UnitOfWork {
	return &unitOfWork{
		store:            s,
		transactionalBus: events.NewTransactionalBus(s.bus),
	}
}

// FailCommits makes the next n commits roll back and return err
func (s *Store) FailCommits(n int, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failCommits = n
	s.failErr = err
}

func (s *Store) takeCommitFailure() error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failCommits == 0 {
		return nil
	}
	s.failCommits--
	return s.failErr
}

// SetPremiumExpiry grants or revokes premium for an existing account
func (s *Store) SetPremiumExpiry(userID int64, expiry *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("account %d not found", userID)
	}
	account.PremiumExpiry = expiry
	return nil
}

// Account returns a copy of the committed account state
func (s *Store) Account(userID int64) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return models.Account{}, false
	}
	return *account, true
}

// Wager returns a copy of a stored wager
func (s *Store) Wager(id uuid.UUID) (models.Wager, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wager, ok := s.wagers[id]
	if !ok {
		return models.Wager{}, false
	}
	return *wager, true
}

// History returns every balance history entry for a user, oldest first
func (s *Store) History(userID int64) []models.BalanceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BalanceHistory
	for _, h := range s.history {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out
}

// SeedWager inserts a wager outside any unit of work
func (s *Store) SeedWager(wager models.Wager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wager.LastActiveAt.IsZero() {
		wager.LastActiveAt = wager.CreatedAt
	}
	s.wagers[wager.ID] = &wager
}

type unitOfWork struct {
	store            *Store
	ctx              context.Context
	active           bool
	journal          []func()
	transactionalBus *events.TransactionalBus
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	u.active = true
	u.ctx = ctx
	u.journal = nil
	return nil
}

// Commit keeps every journaled change and flushes queued events
func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	if err := u.store.takeCommitFailure(); err != nil {
		u.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.active = false
	u.journal = nil
	u.transactionalBus.Flush(u.ctx)
	return nil
}

// Rollback undoes journaled changes in reverse order
func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}

	u.store.mu.Lock()
	for i := len(u.journal) - 1; i >= 0; i-- {
		u.journal[i]()
	}
	u.store.mu.Unlock()

	u.active = false
	u.journal = nil
	u.transactionalBus.Discard()
	return nil
}

func (u *unitOfWork) mustBeActive() {
	if !u.active {
		panic("unit of work not started - call Begin() first")
	}
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	u.mustBeActive()
	return &accountRepository{uow: u}
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	u.mustBeActive()
	return &balanceHistoryRepository{uow: u}
}

// WagerRepository returns the wager repository for this unit of work
func (u *unitOfWork) WagerRepository() service.WagerRepository {
	u.mustBeActive()
	return &wagerRepository{uow: u}
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}

// apply runs fn under the store lock. fn returns the undo step for its change.
func (u *unitOfWork) apply(fn func(s *Store) (undo func(), err error)) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	undo, err := fn(u.store)
	if err != nil {
		return err
	}
	if undo != nil {
		u.journal = append(u.journal, undo)
	}
	return nil
}

type accountRepository struct {
	uow *unitOfWork
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	var out *models.Account
	err := r.uow.apply(func(s *Store) (func(), error) {
		if account, ok := s.accounts[userID]; ok {
			copied := *account
			out = &copied
		}
		return nil, nil
	})
	return out, err
}

func (r *accountRepository) Create(ctx context.Context, userID int64, initialBalance int64) (*models.Account, error) {
	var out *models.Account
	err := r.uow.apply(func(s *Store) (func(), error) {
		if _, exists := s.accounts[userID]; exists {
			return nil, fmt.Errorf("account %d already exists", userID)
		}
		now := s.now()
		account := &models.Account{
			UserID:    userID,
			Balance:   initialBalance,
			Level:     1,
			Status:    models.StatusNovice,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.accounts[userID] = account
		copied := *account
		out = &copied
		return func() { delete(s.accounts, userID) }, nil
	})
	return out, err
}

func (r *accountRepository) Debit(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	var out *models.Account
	err := r.uow.apply(func(s *Store) (func(), error) {
		account, ok := s.accounts[userID]
		if !ok {
			return nil, fmt.Errorf("account %d not found", userID)
		}
		if account.Balance < amount {
			return nil, &service.InsufficientFundsError{Balance: account.Balance, Required: amount}
		}
		account.Balance -= amount
		account.TotalLost += amount
		account.UpdatedAt = s.now()
		copied := *account
		out = &copied
		return func() {
			account.Balance += amount
			account.TotalLost -= amount
		}, nil
	})
	return out, err
}

func (r *accountRepository) Credit(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	var out *models.Account
	err := r.uow.apply(func(s *Store) (func(), error) {
		account, ok := s.accounts[userID]
		if !ok {
			return nil, fmt.Errorf("account %d not found", userID)
		}
		account.Balance += amount
		account.TotalWon += amount
		account.UpdatedAt = s.now()
		copied := *account
		out = &copied
		return func() {
			account.Balance -= amount
			account.TotalWon -= amount
		}, nil
	})
	return out, err
}

func (r *accountRepository) UpdateProgress(ctx context.Context, userID int64, level, xp int64, status models.Status) error {
	return r.uow.apply(func(s *Store) (func(), error) {
		account, ok := s.accounts[userID]
		if !ok {
			return nil, fmt.Errorf("account %d not found", userID)
		}
		prevLevel, prevXP, prevStatus := account.Level, account.XP, account.Status
		account.Level, account.XP, account.Status = level, xp, status
		return func() {
			account.Level, account.XP, account.Status = prevLevel, prevXP, prevStatus
		}, nil
	})
}

type balanceHistoryRepository struct {
	uow *unitOfWork
}

func (r *balanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	return r.uow.apply(func(s *Store) (func(), error) {
		s.nextID++
		history.ID = s.nextID
		history.CreatedAt = s.now()
		copied := *history
		s.history = append(s.history, &copied)
		id := copied.ID
		return func() {
			for i, h := range s.history {
				if h.ID == id {
					s.history = append(s.history[:i], s.history[i+1:]...)
					return
				}
			}
		}, nil
	})
}

func (r *balanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	var out []*models.BalanceHistory
	err := r.uow.apply(func(s *Store) (func(), error) {
		for i := len(s.history) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
			if s.history[i].UserID == userID {
				copied := *s.history[i]
				out = append(out, &copied)
			}
		}
		return nil, nil
	})
	return out, err
}

type wagerRepository struct {
	uow *unitOfWork
}

func (r *wagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	return r.uow.apply(func(s *Store) (func(), error) {
		if wager.ID == uuid.Nil {
			wager.ID = uuid.New()
		}
		if wager.CreatedAt.IsZero() {
			wager.CreatedAt = s.now()
		}
		wager.LastActiveAt = wager.CreatedAt
		if wager.IdempotencyKey != nil {
			for _, existing := range s.wagers {
				if existing.UserID == wager.UserID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *wager.IdempotencyKey {
					return nil, ErrDuplicateIdempotencyKey
				}
			}
		}
		copied := *wager
		s.wagers[wager.ID] = &copied
		id := wager.ID
		return func() { delete(s.wagers, id) }, nil
	})
}

func (r *wagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	var out *models.Wager
	err := r.uow.apply(func(s *Store) (func(), error) {
		if wager, ok := s.wagers[id]; ok {
			copied := *wager
			out = &copied
		}
		return nil, nil
	})
	return out, err
}

func (r *wagerRepository) GetByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Wager, error) {
	var out *models.Wager
	err := r.uow.apply(func(s *Store) (func(), error) {
		for _, wager := range s.wagers {
			if wager.UserID == userID && wager.IdempotencyKey != nil && *wager.IdempotencyKey == key {
				copied := *wager
				out = &copied
				break
			}
		}
		return nil, nil
	})
	return out, err
}

func (r *wagerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Wager, error) {
	var out []*models.Wager
	err := r.uow.apply(func(s *Store) (func(), error) {
		for _, wager := range s.wagers {
			if wager.UserID == userID {
				copied := *wager
				out = append(out, &copied)
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *wagerRepository) Settle(ctx context.Context, id uuid.UUID, status models.WagerStatus, win int64, result json.RawMessage, settledAt time.Time) error {
	return r.uow.apply(func(s *Store) (func(), error) {
		wager, ok := s.wagers[id]
		if !ok || wager.Status != models.WagerStatusOpen {
			return nil, fmt.Errorf("wager %s: %w", id, service.ErrWagerClosed)
		}
		prev := *wager
		wager.Status = status
		wager.Win = win
		wager.Result = result
		wager.SettledAt = &settledAt
		return func() { *wager = prev }, nil
	})
}

func (r *wagerRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.uow.apply(func(s *Store) (func(), error) {
		wager, ok := s.wagers[id]
		if !ok || wager.Status != models.WagerStatusOpen {
			return nil, fmt.Errorf("wager %s: %w", id, service.ErrWagerClosed)
		}
		prev := wager.LastActiveAt
		if at.After(prev) {
			wager.LastActiveAt = at
		}
		return func() { wager.LastActiveAt = prev }, nil
	})
}

func (r *wagerRepository) AbandonOpen(ctx context.Context, idleBefore time.Time, settledAt time.Time) ([]*models.Wager, error) {
	var out []*models.Wager
	err := r.uow.apply(func(s *Store) (func(), error) {
		var undo []func()
		for _, wager := range s.wagers {
			if wager.Status != models.WagerStatusOpen || !wager.LastActiveAt.Before(idleBefore) {
				continue
			}
			prev := *wager
			w := wager
			undo = append(undo, func() { *w = prev })
			w.Status = models.WagerStatusAbandoned
			w.Win = 0
			w.SettledAt = &settledAt
			copied := *w
			out = append(out, &copied)
		}
		return func() {
			for _, fn := range undo {
				fn()
			}
		}, nil
	})
	return out, err
}
