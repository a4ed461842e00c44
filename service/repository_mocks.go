package service

import (
	"context"
	"encoding/json"
	"time"

	"wagering/events"
	"wagering/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, userID int64, initialBalance int64) (*models.Account, error) {
	args := m.Called(ctx, userID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Debit(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Credit(ctx context.Context, userID int64, amount int64) (*models.Account, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateProgress(ctx context.Context, userID int64, level, xp int64, status models.Status) error {
	args := m.Called(ctx, userID, level, xp, status)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Wager, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Wager, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) Settle(ctx context.Context, id uuid.UUID, status models.WagerStatus, win int64, result json.RawMessage, settledAt time.Time) error {
	args := m.Called(ctx, id, status, win, result, settledAt)
	return args.Error(0)
}

func (m *MockWagerRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockWagerRepository) AbandonOpen(ctx context.Context, idleBefore time.Time, settledAt time.Time) ([]*models.Wager, error) {
	args := m.Called(ctx, idleBefore, settledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

// MockUnitOfWork hands out mock repositories and records published events
type MockUnitOfWork struct {
	mock.Mock
	Accounts  *MockAccountRepository
	History   *MockBalanceHistoryRepository
	Wagers    *MockWagerRepository
	Published []events.Event
}

// NewMockUnitOfWork creates a unit of work whose repositories are fresh mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Accounts: new(MockAccountRepository),
		History:  new(MockBalanceHistoryRepository),
		Wagers:   new(MockWagerRepository),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.Accounts
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.History
}

func (m *MockUnitOfWork) WagerRepository() WagerRepository {
	return m.Wagers
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return publisherFunc(func(e events.Event) {
		m.Published = append(m.Published, e)
	})
}

// AssertAll checks expectations on the unit of work and every repository
func (m *MockUnitOfWork) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Accounts.AssertExpectations(t)
	m.History.AssertExpectations(t)
	m.Wagers.AssertExpectations(t)
}

type publisherFunc func(events.Event)

func (f publisherFunc) Publish(e events.Event) { f(e) }

// MockUnitOfWorkFactory returns the same unit of work for every Create call
type MockUnitOfWorkFactory struct {
	UoW *MockUnitOfWork
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	return f.UoW
}
