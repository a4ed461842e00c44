package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// SessionJanitor periodically abandons multi-step sessions nobody is playing,
// along with open wagers whose owning process went away
type SessionJanitor struct {
	wagers   WagerService
	clock    Clock
	ttl      time.Duration
	interval time.Duration
}

// NewSessionJanitor creates a janitor that sweeps every interval for sessions idle longer than ttl
func NewSessionJanitor(wagers WagerService, clock Clock, ttl, interval time.Duration) *SessionJanitor {
	return &SessionJanitor{
		wagers:   wagers,
		clock:    clock,
		ttl:      ttl,
		interval: interval,
	}
}

// Run sweeps once immediately and then every interval until ctx is cancelled
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"ttl":      j.ttl,
		"interval": j.interval,
	}).Info("Session janitor started")

	j.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Session janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep abandons idle sessions and orphaned wagers once and returns how many it abandoned
func (j *SessionJanitor) Sweep(ctx context.Context) int {
	now := j.clock.Now()

	count, err := j.wagers.AbandonStaleSessions(ctx, now.Add(-j.ttl))
	if err != nil {
		log.WithError(err).Error("Failed to abandon idle sessions")
	}
	if count > 0 {
		log.WithField("count", count).Info("Abandoned idle sessions")
	}

	orphans, err := j.wagers.AbandonOrphanedWagers(ctx, now.Add(-j.OrphanAfter()))
	if err != nil {
		log.WithError(err).Error("Failed to abandon orphaned wagers")
	}
	if orphans > 0 {
		log.WithField("count", orphans).Info("Abandoned orphaned wagers")
	}
	return count + orphans
}

// OrphanAfter is how long an open wager must go without activity before any
// process may abandon it. It stays two intervals past ttl so an owner's own sweep runs first.
func (j *SessionJanitor) OrphanAfter() time.Duration {
	return j.ttl + 2*j.interval
}
