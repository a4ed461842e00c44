package service

import (
	"context"
	"fmt"

	"wagering/events"
	"wagering/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var premiumMultiplier = decimal.RequireFromString("1.5")

// ApplyPremiumBonus scales a payout by 1.5 for premium accounts, rounding down
func ApplyPremiumBonus(win int64, active bool) int64 {
	if !active || win <= 0 {
		return win
	}
	return decimal.NewFromInt(win).Mul(premiumMultiplier).Floor().IntPart()
}

// ledger performs every balance and progression mutation inside a caller's unit of work
type ledger struct {
	startingBalance int64
}

// getOrCreate returns the user's account, opening it with the starting balance on first contact
func (l ledger) getOrCreate(ctx context.Context, uow UnitOfWork, userID int64) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, err = uow.AccountRepository().Create(ctx, userID, l.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   0,
		BalanceAfter:    account.Balance,
		ChangeAmount:    account.Balance,
		TransactionType: models.TransactionTypeInitial,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}
	return account, nil
}

// debit takes the stake with a single conditional update
func (l ledger) debit(ctx context.Context, uow UnitOfWork, wager *models.Wager) (*models.Account, error) {
	account, err := uow.AccountRepository().Debit(ctx, wager.UserID, wager.Amount)
	if err != nil {
		return nil, err
	}

	wagerID := wager.ID
	history := &models.BalanceHistory{
		UserID:          wager.UserID,
		BalanceBefore:   account.Balance + wager.Amount,
		BalanceAfter:    account.Balance,
		ChangeAmount:    -wager.Amount,
		TransactionType: models.TransactionTypeStake,
		TransactionMetadata: map[string]any{
			"variant": wager.Variant,
		},
		WagerID: &wagerID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}
	return account, nil
}

// credit pays out a win. A zero amount leaves the ledger untouched.
func (l ledger) credit(ctx context.Context, uow UnitOfWork, userID int64, wagerID uuid.UUID, variant models.Variant, amount int64) (*models.Account, error) {
	if amount <= 0 {
		account, err := uow.AccountRepository().GetByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		return account, nil
	}

	account, err := uow.AccountRepository().Credit(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit payout: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   account.Balance - amount,
		BalanceAfter:    account.Balance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypePayout,
		TransactionMetadata: map[string]any{
			"variant": variant,
		},
		WagerID: &wagerID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}
	return account, nil
}

// addXP applies progression for a settled win and persists it when anything changed
func (l ledger) addXP(ctx context.Context, uow UnitOfWork, account *models.Account, win int64) (Progress, error) {
	progress := ApplyXP(account.Level, account.XP, win)
	if progress.Level == account.Level && progress.XP == account.XP && progress.Status == account.Status {
		return progress, nil
	}

	if err := uow.AccountRepository().UpdateProgress(ctx, account.UserID, progress.Level, progress.XP, progress.Status); err != nil {
		return progress, fmt.Errorf("failed to update progress: %w", err)
	}

	if progress.LevelsGained > 0 {
		uow.EventBus().Publish(events.LevelUpEvent{
			UserID:   account.UserID,
			OldLevel: account.Level,
			NewLevel: progress.Level,
			Status:   progress.Status,
		})
	}

	account.Level = progress.Level
	account.XP = progress.XP
	account.Status = progress.Status
	return progress, nil
}
