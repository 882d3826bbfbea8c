// Package postgres provides the PostgreSQL record store.
//
// Two handles share the schema: New returns a user-scoped store that tags
// every statement with app.user_id for row-level security, and NewElevated
// returns a store for a role that bypasses those policies.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeio/lifeio/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.Store on a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	tx     pgx.Tx // set inside Atomic
	scoped bool
}

var _ domain.Store = (*Store)(nil)

// New returns the user-scoped store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, scoped: true}
}

// NewElevated returns a store whose statements carry no user scope.
// Use it with a role that has BYPASSRLS or owns the tables.
func NewElevated(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens and pings a pool for dsn.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Close releases the pool. Transaction-bound stores do not own it.
func (s *Store) Close() error {
	if s.tx == nil {
		s.pool.Close()
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Atomic runs fn inside a transaction. Nested calls reuse the outer one.
func (s *Store) Atomic(ctx context.Context, fn func(domain.Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&Store{pool: s.pool, tx: tx, scoped: s.scoped}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// run executes fn with userID's row-level scope applied. Outside Atomic a
// scoped store opens a short transaction so set_config stays local to it.
func (s *Store) run(ctx context.Context, userID string, fn func(q querier) error) (err error) {
	if s.tx != nil {
		if s.scoped {
			if err := setUser(ctx, s.tx, userID); err != nil {
				return err
			}
		}
		return fn(s.tx)
	}
	if !s.scoped {
		return fn(s.pool)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = setUser(ctx, tx, userID); err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func setUser(ctx context.Context, q querier, userID string) error {
	if _, err := q.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return fmt.Errorf("set user scope: %w", err)
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// offset returns t's UTC offset in seconds.
func offset(t time.Time) int {
	_, off := t.Zone()
	return off
}

// withOffset moves a scanned instant back into the zone it was written in.
func withOffset(t time.Time, off int) time.Time {
	if off == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", off))
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
