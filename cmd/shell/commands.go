package shell

import (
	"context"
	"fmt"
	"strconv"

	"wagering/locale"
	"wagering/models"
)

func (s *Shell) initializeCommands() {
	s.commands = map[string]Command{
		"help": {
			Handler:     s.handleHelp,
			Description: "Show available commands",
			Usage:       "help [command]",
			Category:    "utility",
		},
		"balance": {
			Handler:     s.handleBalance,
			Description: "Show balance, level and premium status",
			Usage:       "balance",
			Category:    "account",
		},
		"history": {
			Handler:     s.handleHistory,
			Description: "Show recent balance changes",
			Usage:       "history [limit]",
			Category:    "account",
		},
		"recent": {
			Handler:     s.handleRecent,
			Description: "Show the last players who placed a wager",
			Usage:       "recent",
			Category:    "account",
		},
		"slots": {
			Handler:     s.handleSingle(models.VariantSlots),
			Description: "Spin three reels",
			Usage:       "slots [amount]",
			Category:    "game",
		},
		"dice": {
			Handler:     s.handleSingle(models.VariantDice),
			Description: "Roll two dice against the house",
			Usage:       "dice [amount]",
			Category:    "game",
		},
		"roulette": {
			Handler:     s.handleRoulette,
			Description: "Spin the wheel on a color, dozen, parity or number",
			Usage:       "roulette <red|black|green|even|odd|1-12|13-24|25-36|0-36> [amount]",
			Category:    "game",
		},
		"bj": {
			Handler:     s.handleBlackjack,
			Description: "Play blackjack against the dealer",
			Usage:       "bj start [amount] | bj hit | bj stand",
			Category:    "game",
		},
		"crash": {
			Handler:     s.handleCrash,
			Description: "Ride the multiplier and cash out before it crashes",
			Usage:       "crash start [amount] | crash check | crash cashout",
			Category:    "game",
		},
	}
}

// parseStake reads an optional amount argument
func parseStake(args []string, index int) (int64, error) {
	if len(args) <= index {
		return DefaultStake, nil
	}
	amount, err := strconv.ParseInt(args[index], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", args[index])
	}
	return amount, nil
}

func (s *Shell) handleSingle(variant models.Variant) CommandHandler {
	return func(ctx context.Context, args []string) error {
		amount, err := parseStake(args, 0)
		if err != nil {
			return err
		}
		outcome, err := s.wagers.PlaceWager(ctx, models.WagerRequest{
			UserID:  s.userID,
			Variant: variant,
			Amount:  amount,
		})
		if err != nil {
			return err
		}
		s.renderOutcome(outcome)
		return nil
	}
}

func (s *Shell) handleRoulette(ctx context.Context, args []string) error {
	betType := ""
	if len(args) > 0 {
		betType = args[0]
	}
	amount, err := parseStake(args, 1)
	if err != nil {
		return err
	}
	outcome, err := s.wagers.PlaceWager(ctx, models.WagerRequest{
		UserID:  s.userID,
		Variant: models.VariantRoulette,
		Amount:  amount,
		BetType: betType,
	})
	if err != nil {
		return err
	}
	s.renderOutcome(outcome)
	return nil
}

func (s *Shell) handleBlackjack(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", s.commands["bj"].Usage)
	}

	var outcome *models.Outcome
	var err error
	switch args[0] {
	case "start":
		var amount int64
		if amount, err = parseStake(args, 1); err != nil {
			return err
		}
		outcome, err = s.wagers.PlaceWager(ctx, models.WagerRequest{
			UserID:  s.userID,
			Variant: models.VariantBlackjack,
			Amount:  amount,
		})
	case "hit":
		outcome, err = s.wagers.BlackjackHit(ctx, s.userID)
	case "stand":
		outcome, err = s.wagers.BlackjackStand(ctx, s.userID)
	default:
		return fmt.Errorf("usage: %s", s.commands["bj"].Usage)
	}
	if err != nil {
		return err
	}
	s.renderOutcome(outcome)
	return nil
}

func (s *Shell) handleCrash(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", s.commands["crash"].Usage)
	}

	var outcome *models.Outcome
	var err error
	switch args[0] {
	case "start":
		var amount int64
		if amount, err = parseStake(args, 1); err != nil {
			return err
		}
		outcome, err = s.wagers.PlaceWager(ctx, models.WagerRequest{
			UserID:  s.userID,
			Variant: models.VariantCrash,
			Amount:  amount,
		})
	case "check":
		outcome, err = s.wagers.CrashCheck(ctx, s.userID)
	case "cashout":
		outcome, err = s.wagers.CrashCashout(ctx, s.userID)
	default:
		return fmt.Errorf("usage: %s", s.commands["crash"].Usage)
	}
	if err != nil {
		return err
	}
	s.renderOutcome(outcome)
	return nil
}

func (s *Shell) handleBalance(ctx context.Context, args []string) error {
	account, err := s.accounts.GetAccount(ctx, s.userID)
	if err != nil {
		return err
	}
	s.printf("💰 %s\n", s.loc.Sprintf(locale.KeyBalance, account.Balance))
	s.printf("⭐ %s\n", s.loc.Level(account.Level, account.XP, account.Status))
	if account.PremiumExpiry != nil {
		s.printf("👑 Premium until %s\n", account.PremiumExpiry.Format("2006-01-02 15:04 MST"))
	}
	return nil
}

func (s *Shell) handleHistory(ctx context.Context, args []string) error {
	limit := 10
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid limit: %s", args[0])
		}
		limit = parsed
	}

	history, err := s.accounts.History(ctx, s.userID, limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		s.printf("No balance changes yet\n")
		return nil
	}

	for _, h := range history {
		color := colorGreen
		if h.ChangeAmount < 0 {
			color = colorRed
		}
		s.printf("%s  %-8s %s%+d%s  → %s\n",
			h.CreatedAt.Format("2006-01-02 15:04:05"),
			h.TransactionType,
			color, h.ChangeAmount, colorReset,
			s.loc.FormatAmount(h.BalanceAfter),
		)
	}
	return nil
}

func (s *Shell) handleRecent(ctx context.Context, args []string) error {
	if s.recent == nil {
		return fmt.Errorf("recent players are not tracked")
	}
	players, err := s.recent.List(ctx)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		s.printf("Nobody has played yet\n")
		return nil
	}
	for i, id := range players {
		s.printf("%2d. user %d\n", i+1, id)
	}
	return nil
}
