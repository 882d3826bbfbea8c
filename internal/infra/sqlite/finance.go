package sqlite

import (
	"context"
	"time"

	"github.com/lifeio/lifeio/internal/domain"
)

// ─── Finance Repository ─────────────────────────────────────────────────────

const financeColumns = `id, user_id, date, income, expense, created_us`

// UpsertFinance writes the record of (UserID, Date), replacing income and
// expense of an existing row. The stored row keeps its original id.
func (d *DB) UpsertFinance(ctx context.Context, f domain.FinanceRecord) (domain.FinanceRecord, error) {
	createdUS := f.CreatedAt.UnixMicro()
	if f.CreatedAt.IsZero() {
		createdUS = nowMicros()
	}

	row := d.q.QueryRowContext(ctx,
		`INSERT INTO daily_finance (id, user_id, date, income, expense, created_us)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET
			income=excluded.income,
			expense=excluded.expense
		 RETURNING `+financeColumns,
		f.ID, f.UserID, f.Date, f.Income, f.Expense, createdUS,
	)
	return scanFinance(row)
}

// ListFinance returns the user's records, latest date first.
func (d *DB) ListFinance(ctx context.Context, userID string) ([]domain.FinanceRecord, error) {
	return d.queryFinance(ctx,
		`SELECT `+financeColumns+` FROM daily_finance WHERE user_id = ? ORDER BY date DESC`, userID)
}

// FinanceSince returns records dated on or after date.
// ISO dates compare correctly as text.
func (d *DB) FinanceSince(ctx context.Context, userID, date string) ([]domain.FinanceRecord, error) {
	return d.queryFinance(ctx,
		`SELECT `+financeColumns+` FROM daily_finance WHERE user_id = ? AND date >= ? ORDER BY date DESC`,
		userID, date)
}

// DeleteFinance removes one record. A missing id is not an error.
func (d *DB) DeleteFinance(ctx context.Context, userID, id string) error {
	_, err := d.q.ExecContext(ctx,
		`DELETE FROM daily_finance WHERE id = ? AND user_id = ?`, id, userID,
	)
	return err
}

func (d *DB) queryFinance(ctx context.Context, query string, args ...any) ([]domain.FinanceRecord, error) {
	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.FinanceRecord{}
	for rows.Next() {
		f, err := scanFinance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, f)
	}
	return records, rows.Err()
}

func scanFinance(s scanner) (domain.FinanceRecord, error) {
	var f domain.FinanceRecord
	var createdUS int64
	if err := s.Scan(&f.ID, &f.UserID, &f.Date, &f.Income, &f.Expense, &createdUS); err != nil {
		return f, err
	}
	f.CreatedAt = time.UnixMicro(createdUS).UTC()
	return f, nil
}
