package service

import (
	"context"
	"fmt"

	"wagering/config"
	"wagering/models"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	locks      *UserLocks
	ledger     ledger
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, cfg *config.Config, locks *UserLocks) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		locks:      locks,
		ledger:     ledger{startingBalance: cfg.StartingBalance},
	}
}

func (s *accountService) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	// Creation writes the initial balance, so it must not race a first wager
	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := s.ledger.getOrCreate(ctx, uow, userID)
	if err != nil {
		return nil, persistenceError("get account", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit transaction", err)
	}
	return account, nil
}

func (s *accountService) History(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin transaction", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, persistenceError("get balance history", err)
	}
	return history, nil
}

func (s *accountService) Wagers(ctx context.Context, userID int64, limit int) ([]*models.Wager, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin transaction", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, persistenceError("get wagers", err)
	}
	return wagers, nil
}
