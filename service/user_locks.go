package service

import (
	"context"
	"sync"
)

// UserLocks serialises every ledger and session mutation for one user
// while leaving other users free to proceed in parallel
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	sem  chan struct{}
	refs int
}

// NewUserLocks creates an empty lock table
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*userLock)}
}

// Lock blocks until the user's lock is held or ctx is done.
// The returned func releases the lock and must be called exactly once.
func (l *UserLocks) Lock(ctx context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	select {
	case ul.sem <- struct{}{}:
		return func() {
			<-ul.sem
			l.release(userID, ul)
		}, nil
	case <-ctx.Done():
		l.release(userID, ul)
		return nil, ctx.Err()
	}
}

func (l *UserLocks) release(userID int64, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
}

// Len reports how many users currently hold or wait for a lock
func (l *UserLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
