package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.
// Every method is scoped to a single user id.

// ActivityStore persists activity intervals.
type ActivityStore interface {
	InsertActivity(ctx context.Context, a Activity) error
	// DeleteOverlapping removes every interval of userID with
	// start < end AND end > start, returning the number of rows removed.
	DeleteOverlapping(ctx context.Context, userID string, start, end time.Time) (int64, error)
	DeleteActivity(ctx context.Context, userID, id string) error
	ListActivities(ctx context.Context, userID string) ([]Activity, error)
	// SumXP sums xp_earned of intervals starting at or after since.
	// A zero since means lifetime.
	SumXP(ctx context.Context, userID string, since time.Time) (float64, error)
	XPByCategory(ctx context.Context, userID string) ([]CategoryXP, error)
}

// CategoryStore persists per-user category multipliers.
type CategoryStore interface {
	// GetCategory returns nil, nil when the category does not exist.
	GetCategory(ctx context.Context, userID, name string) (*Category, error)
	// CreateCategory inserts c unless (UserID, Name) already exists.
	CreateCategory(ctx context.Context, c Category) error
}

// SleepStore persists sleep logs.
type SleepStore interface {
	InsertSleep(ctx context.Context, s SleepLog) error
	ListSleep(ctx context.Context, userID string) ([]SleepLog, error)
	DeleteSleep(ctx context.Context, userID, id string) error
}

// FinanceStore persists daily finance records.
type FinanceStore interface {
	// UpsertFinance inserts or replaces the record of (UserID, Date) and
	// returns the stored row.
	UpsertFinance(ctx context.Context, f FinanceRecord) (FinanceRecord, error)
	ListFinance(ctx context.Context, userID string) ([]FinanceRecord, error)
	// FinanceSince returns records dated on or after date (YYYY-MM-DD).
	FinanceSince(ctx context.Context, userID, date string) ([]FinanceRecord, error)
	DeleteFinance(ctx context.Context, userID, id string) error
}

// Store is the full record store.
type Store interface {
	ActivityStore
	CategoryStore
	SleepStore
	FinanceStore

	// Atomic runs fn against a transaction-bound Store. fn's error rolls
	// the transaction back.
	Atomic(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
