package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ownedTables carry a user_id column and an owner-only policy.
var ownedTables = []string{"activities", "categories", "sleep_logs", "daily_finance"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		id          TEXT PRIMARY KEY,
		seq         BIGINT GENERATED ALWAYS AS IDENTITY,
		user_id     TEXT NOT NULL,
		category    TEXT NOT NULL,
		start_time  TIMESTAMPTZ NOT NULL,
		start_off   INTEGER NOT NULL DEFAULT 0,
		end_time    TIMESTAMPTZ NOT NULL,
		end_off     INTEGER NOT NULL DEFAULT 0,
		xp_earned   DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_start ON activities(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_end ON activities(user_id, end_time)`,

	`CREATE TABLE IF NOT EXISTS categories (
		user_id       TEXT NOT NULL,
		name          TEXT NOT NULL,
		xp_multiplier DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS sleep_logs (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		sleep_time  TIMESTAMPTZ NOT NULL,
		sleep_off   INTEGER NOT NULL DEFAULT 0,
		wake_time   TIMESTAMPTZ NOT NULL,
		wake_off    INTEGER NOT NULL DEFAULT 0,
		quality     INTEGER NOT NULL CHECK (quality BETWEEN 1 AND 5),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sleep_user ON sleep_logs(user_id, sleep_time)`,

	`CREATE TABLE IF NOT EXISTS daily_finance (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		date        DATE NOT NULL,
		income      DOUBLE PRECISION NOT NULL DEFAULT 0,
		expense     DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, date)
	)`,
}

// policySQL enables row-level security on table with a single owner policy.
func policySQL(table string) []string {
	return []string{
		fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY`, table),
		fmt.Sprintf(`DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_policies WHERE tablename = '%[1]s' AND policyname = '%[1]s_owner') THEN
				CREATE POLICY %[1]s_owner ON %[1]s
					USING (user_id = current_setting('app.user_id', true))
					WITH CHECK (user_id = current_setting('app.user_id', true));
			END IF;
		END $$`, table),
	}
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := append([]string{}, schema...)
	for _, t := range ownedTables {
		stmts = append(stmts, policySQL(t)...)
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
