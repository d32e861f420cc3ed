package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Locker grants exclusive access to one tournament for the lifetime of a
// transaction. Acquiring again from the same transaction does not block. The
// returned release func must be called once the transaction has ended.
type Locker interface {
	Lock(ctx context.Context, tx *sqlx.Tx, tournamentID int64) (release func(), err error)
}

// NewLocker picks the lock for the driver: a Postgres advisory lock, which
// also holds across service instances, or an in-process lock for SQLite.
func NewLocker(driverName string) Locker {
	if driverName == "postgres" {
		return AdvisoryLocker{}
	}
	return NewMemoryLocker()
}

// AdvisoryLocker uses pg_advisory_xact_lock. Postgres releases it on commit or
// rollback, including when the session dies.
type AdvisoryLocker struct{}

func (AdvisoryLocker) Lock(ctx context.Context, tx *sqlx.Tx, tournamentID int64) (func(), error) {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, tournamentID); err != nil {
		return nil, fmt.Errorf("advisory lock for tournament %d: %w", tournamentID, err)
	}
	return func() {}, nil
}

// MemoryLocker is a per-tournament mutex keyed by id. It only serializes
// callers inside this process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*tournamentLock
}

type tournamentLock struct {
	sem   chan struct{}
	owner *sqlx.Tx
	// holders and waiters; the entry is dropped when it reaches zero
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*tournamentLock)}
}

func (l *MemoryLocker) Lock(ctx context.Context, tx *sqlx.Tx, tournamentID int64) (func(), error) {
	l.mu.Lock()
	tl, ok := l.locks[tournamentID]
	if !ok {
		tl = &tournamentLock{sem: make(chan struct{}, 1)}
		l.locks[tournamentID] = tl
	}
	if tx != nil && tl.owner == tx {
		l.mu.Unlock()
		return func() {}, nil
	}
	tl.refs++
	l.mu.Unlock()

	select {
	case tl.sem <- struct{}{}:
	case <-ctx.Done():
		l.drop(tournamentID, tl)
		return nil, fmt.Errorf("lock for tournament %d: %w", tournamentID, ctx.Err())
	}

	l.mu.Lock()
	tl.owner = tx
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			tl.owner = nil
			l.mu.Unlock()
			<-tl.sem
			l.drop(tournamentID, tl)
		})
	}, nil
}

func (l *MemoryLocker) drop(tournamentID int64, tl *tournamentLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tl.refs--
	if tl.refs == 0 && l.locks[tournamentID] == tl {
		delete(l.locks, tournamentID)
	}
}

// WithTournamentLock runs fn in a transaction that holds the tournament's lock
// from before the first read until commit or rollback. Any error from fn rolls
// the whole transaction back.
func (s *FixtureStore) WithTournamentLock(ctx context.Context, tournamentID int64, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	release, err := s.locker.Lock(ctx, tx, tournamentID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	// Deferred calls run last-in first-out, so the rollback happens before release.
	defer release()
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithLocker replaces the store's lock implementation.
func (s *FixtureStore) WithLocker(l Locker) *FixtureStore {
	s.locker = l
	return s
}
