package service

import (
	"sync"
	"time"

	"wagering/game"
	"wagering/models"

	"github.com/google/uuid"
)

// Session is a charged multi-step game waiting for player actions.
// Its game state is only mutated while the owner's user lock is held.
type Session struct {
	WagerID   uuid.UUID
	UserID    int64
	Variant   models.Variant
	Bet       int64
	Premium   bool // premium status captured when the stake was taken
	StartedAt time.Time

	Blackjack *game.BlackjackHand
	Crash     *game.CrashRound

	lastActive time.Time
}

// Terminal reports whether the game has reached a final state
func (s *Session) Terminal() bool {
	switch {
	case s.Blackjack != nil:
		return s.Blackjack.State == game.BlackjackResolved
	case s.Crash != nil:
		return s.Crash.State != game.CrashRunning
	}
	return false
}

// Payout is the engine payout before any premium bonus
func (s *Session) Payout() int64 {
	switch {
	case s.Blackjack != nil:
		return s.Blackjack.Payout()
	case s.Crash != nil:
		return s.Crash.Payout()
	}
	return 0
}

// WagerStatus maps the final game state onto the persisted status
func (s *Session) WagerStatus(win int64) models.WagerStatus {
	if s.Blackjack != nil && s.Blackjack.Result == game.BlackjackPush {
		return models.WagerStatusPush
	}
	return models.StatusForWin(s.Bet, win)
}

func (s *Session) describe(outcome *models.Outcome) {
	switch {
	case s.Blackjack != nil:
		outcome.Blackjack = s.Blackjack.View()
	case s.Crash != nil:
		outcome.Crash = s.Crash.View()
	}
}

type sessionKey struct {
	userID  int64
	variant models.Variant
}

// SessionRegistry holds at most one live session per user and game
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[sessionKey]*Session)}
}

// Get returns the live session for a user and game
func (r *SessionRegistry) Get(userID int64, variant models.Variant) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionKey{userID, variant}]
	return s, ok
}

// Create registers a session, failing with ErrSessionAlreadyActive if one exists
func (r *SessionRegistry) Create(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey{s.UserID, s.Variant}
	if _, exists := r.sessions[key]; exists {
		return ErrSessionAlreadyActive
	}
	if s.lastActive.IsZero() {
		s.lastActive = s.StartedAt
	}
	r.sessions[key] = s
	return nil
}

// Remove deletes the session only if it is still the one for the given wager
func (r *SessionRegistry) Remove(userID int64, variant models.Variant, wagerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey{userID, variant}
	if s, ok := r.sessions[key]; ok && s.WagerID == wagerID {
		delete(r.sessions, key)
		return true
	}
	return false
}

// Touch records player activity on a session
func (r *SessionRegistry) Touch(s *Session, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.lastActive = at
}

// LastActive returns the time of the last player action on a session
func (r *SessionRegistry) LastActive(s *Session) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return s.lastActive
}

// IdleSince lists sessions with no activity after the cutoff
func (r *SessionRegistry) IdleSince(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var idle []*Session
	for _, s := range r.sessions {
		if s.lastActive.Before(cutoff) {
			idle = append(idle, s)
		}
	}
	return idle
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
