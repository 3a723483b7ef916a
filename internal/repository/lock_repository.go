package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresLockRepository implements LockRepository using Postgres advisory
// locks. The lock key is derived from season and week, so overlapping
// pipeline runs for the same slate exclude each other while runs for
// different slates proceed freely.
//
// Advisory locks belong to the session that took them, not to the pool.
// Unlocking through the pool would land on an arbitrary connection and
// silently fail, and a try-lock routed to the holding connection would
// re-enter. Acquire therefore checks a connection out of the pool and
// pins it inside the returned handle until Release.
type PostgresLockRepository struct {
	db *database.DB
}

// NewPostgresLockRepository creates a new lock repository
func NewPostgresLockRepository(db *database.DB) LockRepository {
	return &PostgresLockRepository{db: db}
}

// slateLockKey packs season and week into one advisory lock key.
func slateLockKey(season, week int) int64 {
	return int64(season)*100 + int64(week)
}

// postgresSlateLock holds the connection whose session owns the lock.
type postgresSlateLock struct {
	conn *pgxpool.Conn
	key  int64
}

// Release unlocks on the owning session and returns its connection to the
// pool. An unlock reporting false means the session no longer held the
// lock, which is surfaced rather than swallowed.
func (l *postgresSlateLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	var released bool
	if err := l.conn.QueryRow(ctx,
		`SELECT pg_advisory_unlock($1)`, l.key,
	).Scan(&released); err != nil {
		return fmt.Errorf("failed to release slate lock: %w", err)
	}
	if !released {
		return fmt.Errorf("slate lock %d was not held by this session", l.key)
	}
	return nil
}

// AcquireSlateLock attempts a non-blocking advisory lock for the slate on
// a dedicated connection. Returns models.ErrSlateLocked when another run
// holds it.
func (r *PostgresLockRepository) AcquireSlateLock(ctx context.Context, season, week int) (SlateLock, error) {
	conn, err := r.db.GetPool().Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock connection: %w", err)
	}

	key := slateLockKey(season, week)
	var acquired bool
	if err := conn.QueryRow(ctx,
		`SELECT pg_try_advisory_lock($1)`, key,
	).Scan(&acquired); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to acquire slate lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, models.ErrSlateLocked
	}

	return &postgresSlateLock{conn: conn, key: key}, nil
}
