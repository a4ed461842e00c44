package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wagering/config"
	"wagering/events"
	"wagering/game"
	"wagering/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type wagerService struct {
	uowFactory UnitOfWorkFactory
	sessions   *SessionRegistry
	locks      *UserLocks
	src        game.Source
	clock      Clock
	ledger     ledger
	minBet     int64
}

// NewWagerService creates the wager coordinator. locks must be shared with
// every other service that mutates the same accounts.
func NewWagerService(uowFactory UnitOfWorkFactory, cfg *config.Config, sessions *SessionRegistry, locks *UserLocks, src game.Source, clock Clock) WagerService {
	return &wagerService{
		uowFactory: uowFactory,
		sessions:   sessions,
		locks:      locks,
		src:        src,
		clock:      clock,
		ledger:     ledger{startingBalance: cfg.StartingBalance},
		minBet:     cfg.MinBet,
	}
}

// PlaceWager validates, charges and resolves a bet, or opens a session for blackjack and crash
func (s *wagerService) PlaceWager(ctx context.Context, req models.WagerRequest) (*models.Outcome, error) {
	if _, ok := models.ParseVariant(string(req.Variant)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, req.Variant)
	}
	if req.Amount < s.minBet {
		return nil, &BetTooSmallError{Amount: req.Amount, Min: s.minBet}
	}

	var rouletteBet game.RouletteBet
	if req.Variant == models.VariantRoulette {
		bet, err := parseBetType(req.BetType)
		if err != nil {
			return nil, err
		}
		rouletteBet = bet
		req.BetType = bet.String()
	} else {
		req.BetType = ""
	}

	unlock, err := s.locks.Lock(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	defer unlock()

	if req.Variant.MultiStep() {
		return s.openSession(ctx, req)
	}
	return s.playSingle(ctx, req, rouletteBet)
}

func parseBetType(betType string) (game.RouletteBet, error) {
	bet, err := game.ParseRouletteBet(betType)
	switch {
	case errors.Is(err, game.ErrEmptyBetType):
		return bet, ErrMissingBetType
	case err != nil:
		return bet, &InvalidBetTypeError{Value: betType}
	}
	return bet, nil
}

// playSingle runs debit, resolution, payout and progression in one transaction
func (s *wagerService) playSingle(ctx context.Context, req models.WagerRequest, rouletteBet game.RouletteBet) (*models.Outcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin wager", err)
	}
	defer uow.Rollback() // No-op if already committed

	if outcome, err := s.replay(ctx, uow, req); outcome != nil || err != nil {
		return outcome, err
	}

	account, err := s.ledger.getOrCreate(ctx, uow, req.UserID)
	if err != nil {
		return nil, persistenceError("open account", err)
	}
	now := s.clock.Now()
	premium := account.PremiumActive(now)

	wager := newWager(req, now)
	if _, err := s.ledger.debit(ctx, uow, wager); err != nil {
		return nil, persistenceError("debit stake", err)
	}

	outcome := &models.Outcome{
		WagerID:  wager.ID,
		Variant:  req.Variant,
		Bet:      req.Amount,
		Premium:  premium,
		Finished: true,
	}
	engineWin := s.resolve(req, rouletteBet, outcome)

	win, err := s.payout(ctx, uow, wager, engineWin, premium, outcome)
	if err != nil {
		return nil, err
	}

	settledAt := s.clock.Now()
	wager.Status = models.StatusForWin(req.Amount, win)
	wager.Win = win
	wager.SettledAt = &settledAt
	if wager.Result, err = json.Marshal(outcome); err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}
	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		return nil, persistenceError("store wager", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		WagerID: wager.ID,
		UserID:  wager.UserID,
		Variant: wager.Variant,
		Amount:  wager.Amount,
	})
	uow.EventBus().Publish(events.WagerSettledEvent{
		WagerID: wager.ID,
		UserID:  wager.UserID,
		Variant: wager.Variant,
		Amount:  wager.Amount,
		Win:     win,
		Premium: premium,
		Status:  wager.Status,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit wager", err)
	}

	log.WithFields(log.Fields{
		"userID":  req.UserID,
		"wagerID": wager.ID,
		"variant": req.Variant,
		"amount":  req.Amount,
		"win":     win,
	}).Debug("Wager settled")

	return outcome, nil
}

// resolve runs a single-shot engine and records its detail on the outcome
func (s *wagerService) resolve(req models.WagerRequest, rouletteBet game.RouletteBet, outcome *models.Outcome) int64 {
	switch req.Variant {
	case models.VariantSlots:
		result := game.SpinSlots(s.src, req.Amount)
		outcome.Slots = &result
		return result.Win
	case models.VariantRoulette:
		result := game.SpinRoulette(s.src, rouletteBet, req.Amount)
		outcome.Roulette = &result
		return result.Win
	case models.VariantDice:
		result := game.RollDice(s.src, req.Amount)
		outcome.Dice = &result
		return result.Win
	}
	return 0
}

// openSession charges the stake for a multi-step game and registers its session.
// A finished session still waiting on its settlement is settled first.
func (s *wagerService) openSession(ctx context.Context, req models.WagerRequest) (*models.Outcome, error) {
	if existing, ok := s.sessions.Get(req.UserID, req.Variant); ok && existing.Terminal() {
		if _, err := s.settle(ctx, existing); err != nil && !errors.Is(err, ErrWagerClosed) {
			return nil, err
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin wager", err)
	}
	defer uow.Rollback()

	if outcome, err := s.replay(ctx, uow, req); outcome != nil || err != nil {
		return outcome, err
	}
	if _, active := s.sessions.Get(req.UserID, req.Variant); active {
		return nil, ErrSessionAlreadyActive
	}

	account, err := s.ledger.getOrCreate(ctx, uow, req.UserID)
	if err != nil {
		return nil, persistenceError("open account", err)
	}
	now := s.clock.Now()
	premium := account.PremiumActive(now)

	wager := newWager(req, now)
	account, err = s.ledger.debit(ctx, uow, wager)
	if err != nil {
		return nil, persistenceError("debit stake", err)
	}

	session := &Session{
		WagerID:   wager.ID,
		UserID:    req.UserID,
		Variant:   req.Variant,
		Bet:       req.Amount,
		Premium:   premium,
		StartedAt: now,
	}
	switch req.Variant {
	case models.VariantBlackjack:
		session.Blackjack = game.DealBlackjack(s.src, req.Amount)
	case models.VariantCrash:
		session.Crash = game.StartCrash(s.src, req.Amount)
	}

	outcome := newOutcome(session, account, 0)
	if wager.Result, err = json.Marshal(outcome); err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}
	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		return nil, persistenceError("store wager", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		WagerID: wager.ID,
		UserID:  wager.UserID,
		Variant: wager.Variant,
		Amount:  wager.Amount,
	})
	uow.EventBus().Publish(events.SessionOpenedEvent{
		WagerID: wager.ID,
		UserID:  wager.UserID,
		Variant: wager.Variant,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit wager", err)
	}

	// Only reachable by the lock holder, so the slot is still free
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	fields := log.Fields{
		"userID":  req.UserID,
		"wagerID": wager.ID,
		"variant": req.Variant,
		"amount":  req.Amount,
	}
	if session.Crash != nil {
		fields["crashPoint"] = session.Crash.CrashPoint().String()
	}
	log.WithFields(fields).Debug("Game session opened")

	return outcome, nil
}

// BlackjackHit draws a card for the player's open blackjack hand
func (s *wagerService) BlackjackHit(ctx context.Context, userID int64) (*models.Outcome, error) {
	return s.act(ctx, userID, models.VariantBlackjack, func(sess *Session) error {
		return sess.Blackjack.Hit(s.src)
	})
}

// BlackjackStand ends the player's turn and lets the dealer play out
func (s *wagerService) BlackjackStand(ctx context.Context, userID int64) (*models.Outcome, error) {
	return s.act(ctx, userID, models.VariantBlackjack, func(sess *Session) error {
		return sess.Blackjack.Stand(s.src)
	})
}

// CrashCheck advances the crash multiplier by one step
func (s *wagerService) CrashCheck(ctx context.Context, userID int64) (*models.Outcome, error) {
	return s.act(ctx, userID, models.VariantCrash, func(sess *Session) error {
		_, err := sess.Crash.Check()
		return err
	})
}

// CrashCashout takes the current crash multiplier before the round crashes
func (s *wagerService) CrashCashout(ctx context.Context, userID int64) (*models.Outcome, error) {
	return s.act(ctx, userID, models.VariantCrash, func(sess *Session) error {
		_, err := sess.Crash.Cashout()
		return err
	})
}

// act applies one player action to a live session under the user lock.
// A session already in a terminal state is settled without applying the action;
// that only happens when an earlier settlement failed to commit.
func (s *wagerService) act(ctx context.Context, userID int64, variant models.Variant, step func(*Session) error) (*models.Outcome, error) {
	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	defer unlock()

	sess, ok := s.sessions.Get(userID, variant)
	if !ok {
		return nil, ErrNoActiveSession
	}

	if !sess.Terminal() {
		if err := step(sess); err != nil {
			if errors.Is(err, game.ErrHandResolved) || errors.Is(err, game.ErrRoundOver) {
				return nil, ErrNoActiveSession
			}
			return nil, err
		}
		s.sessions.Touch(sess, s.clock.Now())
	}

	if sess.Terminal() {
		return s.settle(ctx, sess)
	}
	return s.snapshot(ctx, sess)
}

// snapshot records activity on the open wager and reports the session alongside the current balance
func (s *wagerService) snapshot(ctx context.Context, sess *Session) (*models.Outcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin touch", err)
	}
	defer uow.Rollback()

	if err := uow.WagerRepository().Touch(ctx, sess.WagerID, s.clock.Now()); err != nil {
		if errors.Is(err, ErrWagerClosed) {
			s.dropClosed(sess)
		}
		return nil, persistenceError("touch wager", err)
	}
	account, err := uow.AccountRepository().GetByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, persistenceError("get account", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit touch", err)
	}
	return newOutcome(sess, account, 0), nil
}

// settle pays out a terminal session in one transaction and then removes it
func (s *wagerService) settle(ctx context.Context, sess *Session) (*models.Outcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("begin settlement", err)
	}
	defer uow.Rollback()

	wager := &models.Wager{ID: sess.WagerID, UserID: sess.UserID, Variant: sess.Variant, Amount: sess.Bet}
	outcome := newOutcome(sess, &models.Account{}, 0)
	win, err := s.payout(ctx, uow, wager, sess.Payout(), sess.Premium, outcome)
	if err != nil {
		return nil, err
	}

	wagerStatus := sess.WagerStatus(win)
	result, err := json.Marshal(outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}
	if err := uow.WagerRepository().Settle(ctx, sess.WagerID, wagerStatus, win, result, s.clock.Now()); err != nil {
		if errors.Is(err, ErrWagerClosed) {
			s.dropClosed(sess)
		}
		return nil, persistenceError("settle wager", err)
	}

	uow.EventBus().Publish(events.WagerSettledEvent{
		WagerID: sess.WagerID,
		UserID:  sess.UserID,
		Variant: sess.Variant,
		Amount:  sess.Bet,
		Win:     win,
		Premium: sess.Premium,
		Status:  wagerStatus,
	})
	uow.EventBus().Publish(events.SessionClosedEvent{
		WagerID: sess.WagerID,
		UserID:  sess.UserID,
		Variant: sess.Variant,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("commit settlement", err)
	}
	s.sessions.Remove(sess.UserID, sess.Variant, sess.WagerID)

	log.WithFields(log.Fields{
		"userID":  sess.UserID,
		"wagerID": sess.WagerID,
		"variant": sess.Variant,
		"win":     win,
		"status":  wagerStatus,
	}).Debug("Game session settled")

	return outcome, nil
}

// dropClosed forgets a session whose wager was settled or abandoned by another process
func (s *wagerService) dropClosed(sess *Session) {
	s.sessions.Remove(sess.UserID, sess.Variant, sess.WagerID)

	log.WithFields(log.Fields{
		"userID":  sess.UserID,
		"wagerID": sess.WagerID,
		"variant": sess.Variant,
	}).Warn("Dropped game session, its wager was already closed")
}

// payout applies the premium bonus, credits the win and grants xp.
// The resulting balance and progression are written onto outcome.
func (s *wagerService) payout(ctx context.Context, uow UnitOfWork, wager *models.Wager, engineWin int64, premium bool, outcome *models.Outcome) (int64, error) {
	win := ApplyPremiumBonus(engineWin, premium)

	account, err := s.ledger.credit(ctx, uow, wager.UserID, wager.ID, wager.Variant, win)
	if err != nil {
		return 0, persistenceError("credit payout", err)
	}
	progress, err := s.ledger.addXP(ctx, uow, account, win)
	if err != nil {
		return 0, persistenceError("update progress", err)
	}

	outcome.Win = win
	outcome.Balance = account.Balance
	outcome.Level = progress.Level
	outcome.XP = progress.XP
	outcome.Status = progress.Status
	outcome.LevelUp = progress.LevelsGained > 0
	return win, nil
}

// replay returns the stored outcome of an earlier request with the same idempotency key
func (s *wagerService) replay(ctx context.Context, uow UnitOfWork, req models.WagerRequest) (*models.Outcome, error) {
	if req.IdempotencyKey == "" {
		return nil, nil
	}

	existing, err := uow.WagerRepository().GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		return nil, persistenceError("lookup idempotency key", err)
	}
	if existing == nil {
		return nil, nil
	}
	if existing.Variant != req.Variant || existing.Amount != req.Amount || existing.BetType != req.BetType {
		return nil, ErrIdempotencyConflict
	}

	var outcome models.Outcome
	if err := json.Unmarshal(existing.Result, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode stored outcome: %w", err)
	}
	outcome.Replayed = true

	log.WithFields(log.Fields{
		"userID":         req.UserID,
		"wagerID":        existing.ID,
		"idempotencyKey": req.IdempotencyKey,
	}).Info("Replaying stored wager outcome")

	return &outcome, nil
}

// AbandonStaleSessions forfeits every session idle since before idleSince.
// A failing session is logged and skipped, and the failures are returned together.
func (s *wagerService) AbandonStaleSessions(ctx context.Context, idleSince time.Time) (int, error) {
	abandoned := 0
	var errs []error
	for _, candidate := range s.sessions.IdleSince(idleSince) {
		done, err := s.abandonSession(ctx, candidate, idleSince)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userID":  candidate.UserID,
				"wagerID": candidate.WagerID,
				"variant": candidate.Variant,
			}).Error("Failed to abandon idle game session")
			errs = append(errs, err)
			continue
		}
		if done {
			abandoned++
		}
	}
	return abandoned, errors.Join(errs...)
}

func (s *wagerService) abandonSession(ctx context.Context, candidate *Session, idleSince time.Time) (bool, error) {
	unlock, err := s.locks.Lock(ctx, candidate.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	defer unlock()

	// The player may have acted between the scan and the lock
	sess, ok := s.sessions.Get(candidate.UserID, candidate.Variant)
	if !ok || sess.WagerID != candidate.WagerID || !s.sessions.LastActive(sess).Before(idleSince) {
		return false, nil
	}

	if sess.Terminal() {
		if _, err := s.settle(ctx, sess); err != nil && !errors.Is(err, ErrWagerClosed) {
			return false, err
		}
		return false, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, persistenceError("begin abandon", err)
	}
	defer uow.Rollback()

	outcome := &models.Outcome{
		WagerID:  sess.WagerID,
		Variant:  sess.Variant,
		Bet:      sess.Bet,
		Premium:  sess.Premium,
		Finished: true,
	}
	sess.describe(outcome)
	result, err := json.Marshal(outcome)
	if err != nil {
		return false, fmt.Errorf("failed to encode outcome: %w", err)
	}
	if err := uow.WagerRepository().Settle(ctx, sess.WagerID, models.WagerStatusAbandoned, 0, result, s.clock.Now()); err != nil {
		if errors.Is(err, ErrWagerClosed) {
			s.dropClosed(sess)
			return false, nil
		}
		return false, persistenceError("abandon wager", err)
	}
	publishAbandoned(uow, sess.WagerID, sess.UserID, sess.Variant, sess.Bet)

	if err := uow.Commit(); err != nil {
		return false, persistenceError("commit abandon", err)
	}
	s.sessions.Remove(sess.UserID, sess.Variant, sess.WagerID)

	log.WithFields(log.Fields{
		"userID":  sess.UserID,
		"wagerID": sess.WagerID,
		"variant": sess.Variant,
		"amount":  sess.Bet,
	}).Warn("Abandoned idle game session, stake forfeited")

	return true, nil
}

// AbandonOrphanedWagers forfeits open wagers nobody has played since idleSince.
// Live sessions refresh their wager on every action, so idleSince must lie
// further back than the session ttl for another process's sessions to be safe.
func (s *wagerService) AbandonOrphanedWagers(ctx context.Context, idleSince time.Time) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, persistenceError("begin abandon", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().AbandonOpen(ctx, idleSince, s.clock.Now())
	if err != nil {
		return 0, persistenceError("abandon open wagers", err)
	}
	for _, w := range wagers {
		publishAbandoned(uow, w.ID, w.UserID, w.Variant, w.Amount)
	}

	if err := uow.Commit(); err != nil {
		return 0, persistenceError("commit abandon", err)
	}

	for _, w := range wagers {
		log.WithFields(log.Fields{
			"userID":       w.UserID,
			"wagerID":      w.ID,
			"variant":      w.Variant,
			"amount":       w.Amount,
			"lastActiveAt": w.LastActiveAt,
		}).Warn("Abandoned orphaned open wager")
	}
	return len(wagers), nil
}

func publishAbandoned(uow UnitOfWork, wagerID uuid.UUID, userID int64, variant models.Variant, amount int64) {
	uow.EventBus().Publish(events.WagerSettledEvent{
		WagerID: wagerID,
		UserID:  userID,
		Variant: variant,
		Amount:  amount,
		Status:  models.WagerStatusAbandoned,
	})
	uow.EventBus().Publish(events.SessionClosedEvent{
		WagerID:   wagerID,
		UserID:    userID,
		Variant:   variant,
		Abandoned: true,
	})
}

func newWager(req models.WagerRequest, now time.Time) *models.Wager {
	wager := &models.Wager{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Variant:   req.Variant,
		Amount:    req.Amount,
		BetType:   req.BetType,
		Status:    models.WagerStatusOpen,
		CreatedAt: now,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		wager.IdempotencyKey = &key
	}
	return wager
}

func newOutcome(sess *Session, account *models.Account, win int64) *models.Outcome {
	outcome := &models.Outcome{
		WagerID:  sess.WagerID,
		Variant:  sess.Variant,
		Bet:      sess.Bet,
		Win:      win,
		Premium:  sess.Premium,
		Finished: sess.Terminal(),
		Balance:  account.Balance,
		Level:    account.Level,
		XP:       account.XP,
		Status:   account.Status,
	}
	sess.describe(outcome)
	return outcome
}
