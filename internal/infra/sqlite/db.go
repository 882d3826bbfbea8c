// Package sqlite provides SQLite-based persistent storage for LifeIO.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/lifeio/lifeio/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.Store.
type DB struct {
	db   *sql.DB
	q    querier
	inTx bool
}

var _ domain.Store = (*DB)(nil)

// Open creates or opens the SQLite database at dir/lifeio.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "lifeio.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := wrap(db)
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// wrap builds a DB around an already opened handle without migrating.
func wrap(db *sql.DB) *DB {
	return &DB{db: db, q: db}
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Atomic runs fn inside a transaction. Nested calls reuse the outer one.
func (d *DB) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	if d.inTx {
		return fn(d)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&DB{db: d.db, q: tx, inTx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Activity intervals. Instants are UTC microseconds plus the
		// caller's UTC offset so responses echo the original offset.
		`CREATE TABLE IF NOT EXISTS activities (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			category   TEXT NOT NULL,
			start_us   INTEGER NOT NULL,
			start_off  INTEGER NOT NULL DEFAULT 0,
			end_us     INTEGER NOT NULL,
			end_off    INTEGER NOT NULL DEFAULT 0,
			xp_earned  REAL NOT NULL,
			created_us INTEGER NOT NULL,
			CHECK (end_us > start_us)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_start ON activities(user_id, start_us)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_end ON activities(user_id, end_us)`,

		// Per-user category multipliers
		`CREATE TABLE IF NOT EXISTS categories (
			user_id       TEXT NOT NULL,
			name          TEXT NOT NULL,
			xp_multiplier REAL NOT NULL,
			PRIMARY KEY (user_id, name)
		)`,

		// Sleep sessions
		`CREATE TABLE IF NOT EXISTS sleep_logs (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			sleep_us   INTEGER NOT NULL,
			sleep_off  INTEGER NOT NULL DEFAULT 0,
			wake_us    INTEGER NOT NULL,
			wake_off   INTEGER NOT NULL DEFAULT 0,
			quality    INTEGER NOT NULL CHECK (quality BETWEEN 1 AND 5),
			created_us INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sleep_user ON sleep_logs(user_id, sleep_us)`,

		// Daily finance, one row per (user, date)
		`CREATE TABLE IF NOT EXISTS daily_finance (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			date       TEXT NOT NULL,
			income     REAL NOT NULL DEFAULT 0,
			expense    REAL NOT NULL DEFAULT 0,
			created_us INTEGER NOT NULL,
			UNIQUE (user_id, date)
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// splitTime returns t as UTC microseconds and its UTC offset in seconds.
func splitTime(t time.Time) (int64, int) {
	_, off := t.Zone()
	return t.UnixMicro(), off
}

// joinTime rebuilds an instant in a fixed zone with the stored offset.
func joinTime(us int64, off int) time.Time {
	t := time.UnixMicro(us)
	if off == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", off))
}

func nowMicros() int64 {
	return time.Now().UnixMicro()
}
