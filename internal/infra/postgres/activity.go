package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lifeio/lifeio/internal/domain"
)

const activityColumns = `id, user_id, category, start_time, start_off, end_time, end_off, xp_earned, created_at`

// InsertActivity stores a new interval.
func (s *Store) InsertActivity(ctx context.Context, a domain.Activity) error {
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return s.run(ctx, a.UserID, func(q querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO activities (`+activityColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			a.ID, a.UserID, a.Category,
			a.StartTime, offset(a.StartTime),
			a.EndTime, offset(a.EndTime),
			a.XPEarned, created,
		)
		return err
	})
}

// DeleteOverlapping removes every interval of userID intersecting [start, end).
func (s *Store) DeleteOverlapping(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	var n int64
	err := s.run(ctx, userID, func(q querier) error {
		tag, err := q.Exec(ctx,
			`DELETE FROM activities WHERE user_id = $1 AND start_time < $2 AND end_time > $3`,
			userID, end, start,
		)
		n = tag.RowsAffected()
		return err
	})
	return n, err
}

// DeleteActivity removes one interval. A missing id is not an error.
func (s *Store) DeleteActivity(ctx context.Context, userID, id string) error {
	return s.run(ctx, userID, func(q querier) error {
		_, err := q.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
}

// ListActivities returns the user's intervals, newest start first.
func (s *Store) ListActivities(ctx context.Context, userID string) ([]domain.Activity, error) {
	out := []domain.Activity{}
	err := s.run(ctx, userID, func(q querier) error {
		rows, err := q.Query(ctx,
			`SELECT `+activityColumns+` FROM activities WHERE user_id = $1 ORDER BY start_time DESC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			a, err := scanActivity(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SumXP totals xp_earned for intervals starting at or after since.
func (s *Store) SumXP(ctx context.Context, userID string, since time.Time) (float64, error) {
	var total float64
	err := s.run(ctx, userID, func(q querier) error {
		if since.IsZero() {
			return q.QueryRow(ctx,
				`SELECT COALESCE(SUM(xp_earned), 0) FROM activities WHERE user_id = $1`, userID,
			).Scan(&total)
		}
		return q.QueryRow(ctx,
			`SELECT COALESCE(SUM(xp_earned), 0) FROM activities WHERE user_id = $1 AND start_time >= $2`,
			userID, since,
		).Scan(&total)
	})
	return total, err
}

// XPByCategory sums xp_earned per category in order of first appearance.
func (s *Store) XPByCategory(ctx context.Context, userID string) ([]domain.CategoryXP, error) {
	out := []domain.CategoryXP{}
	err := s.run(ctx, userID, func(q querier) error {
		rows, err := q.Query(ctx,
			`SELECT category, SUM(xp_earned) FROM activities
			 WHERE user_id = $1 GROUP BY category ORDER BY MIN(seq)`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c domain.CategoryXP
			if err := rows.Scan(&c.Category, &c.XP); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	var startOff, endOff int
	err := row.Scan(&a.ID, &a.UserID, &a.Category, &a.StartTime, &startOff, &a.EndTime, &endOff, &a.XPEarned, &a.CreatedAt)
	if err != nil {
		return domain.Activity{}, err
	}
	a.StartTime = withOffset(a.StartTime, startOff)
	a.EndTime = withOffset(a.EndTime, endOff)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
