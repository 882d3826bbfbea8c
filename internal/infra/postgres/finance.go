package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lifeio/lifeio/internal/domain"
)

const financeColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), income, expense, created_at`

// UpsertFinance writes the record of (UserID, Date), replacing income and
// expense of an existing row. The stored row keeps its original id.
func (s *Store) UpsertFinance(ctx context.Context, f domain.FinanceRecord) (domain.FinanceRecord, error) {
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	var out domain.FinanceRecord
	err := s.run(ctx, f.UserID, func(q querier) error {
		var err error
		out, err = scanFinance(q.QueryRow(ctx,
			`INSERT INTO daily_finance (id, user_id, date, income, expense, created_at)
			 VALUES ($1, $2, $3::date, $4, $5, $6)
			 ON CONFLICT (user_id, date) DO UPDATE SET
				income = EXCLUDED.income,
				expense = EXCLUDED.expense
			 RETURNING `+financeColumns,
			f.ID, f.UserID, f.Date, f.Income, f.Expense, created,
		))
		return err
	})
	return out, err
}

// ListFinance returns the user's records, latest date first.
func (s *Store) ListFinance(ctx context.Context, userID string) ([]domain.FinanceRecord, error) {
	return s.queryFinance(ctx, userID,
		`SELECT `+financeColumns+` FROM daily_finance WHERE user_id = $1 ORDER BY date DESC`, userID)
}

// FinanceSince returns records dated on or after date.
func (s *Store) FinanceSince(ctx context.Context, userID, date string) ([]domain.FinanceRecord, error) {
	return s.queryFinance(ctx, userID,
		`SELECT `+financeColumns+` FROM daily_finance WHERE user_id = $1 AND date >= $2::date ORDER BY date DESC`,
		userID, date)
}

// DeleteFinance removes one record. A missing id is not an error.
func (s *Store) DeleteFinance(ctx context.Context, userID, id string) error {
	return s.run(ctx, userID, func(q querier) error {
		_, err := q.Exec(ctx, `DELETE FROM daily_finance WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
}

func (s *Store) queryFinance(ctx context.Context, userID, query string, args ...any) ([]domain.FinanceRecord, error) {
	out := []domain.FinanceRecord{}
	err := s.run(ctx, userID, func(q querier) error {
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			f, err := scanFinance(rows)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanFinance(row pgx.Row) (domain.FinanceRecord, error) {
	var f domain.FinanceRecord
	if err := row.Scan(&f.ID, &f.UserID, &f.Date, &f.Income, &f.Expense, &f.CreatedAt); err != nil {
		return domain.FinanceRecord{}, err
	}
	f.CreatedAt = f.CreatedAt.UTC()
	return f, nil
}
