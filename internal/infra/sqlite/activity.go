package sqlite

import (
	"context"
	"time"

	"github.com/lifeio/lifeio/internal/domain"
)

// ─── Activity Repository ────────────────────────────────────────────────────

// InsertActivity stores a new interval.
func (d *DB) InsertActivity(ctx context.Context, a domain.Activity) error {
	startUS, startOff := splitTime(a.StartTime)
	endUS, endOff := splitTime(a.EndTime)
	createdUS := a.CreatedAt.UnixMicro()
	if a.CreatedAt.IsZero() {
		createdUS = nowMicros()
	}

	_, err := d.q.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, category, start_us, start_off, end_us, end_off, xp_earned, created_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Category, startUS, startOff, endUS, endOff, a.XPEarned, createdUS,
	)
	return err
}

// DeleteOverlapping removes every interval of userID intersecting [start, end).
func (d *DB) DeleteOverlapping(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	result, err := d.q.ExecContext(ctx,
		`DELETE FROM activities WHERE user_id = ? AND start_us < ? AND end_us > ?`,
		userID, end.UnixMicro(), start.UnixMicro(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteActivity removes one interval. A missing id is not an error.
func (d *DB) DeleteActivity(ctx context.Context, userID, id string) error {
	_, err := d.q.ExecContext(ctx,
		`DELETE FROM activities WHERE id = ? AND user_id = ?`, id, userID,
	)
	return err
}

// ListActivities returns the user's intervals, newest start first.
func (d *DB) ListActivities(ctx context.Context, userID string) ([]domain.Activity, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT id, user_id, category, start_us, start_off, end_us, end_off, xp_earned, created_us
		 FROM activities WHERE user_id = ? ORDER BY start_us DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// SumXP totals xp_earned for intervals starting at or after since.
func (d *DB) SumXP(ctx context.Context, userID string, since time.Time) (float64, error) {
	var total float64
	var err error
	if since.IsZero() {
		err = d.q.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(xp_earned), 0) FROM activities WHERE user_id = ?`, userID,
		).Scan(&total)
	} else {
		err = d.q.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(xp_earned), 0) FROM activities WHERE user_id = ? AND start_us >= ?`,
			userID, since.UnixMicro(),
		).Scan(&total)
	}
	return total, err
}

// XPByCategory sums xp_earned per category in order of first appearance.
func (d *DB) XPByCategory(ctx context.Context, userID string) ([]domain.CategoryXP, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT category, SUM(xp_earned) FROM activities
		 WHERE user_id = ? GROUP BY category ORDER BY MIN(rowid)`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryXP
	for rows.Next() {
		var c domain.CategoryXP
		if err := rows.Scan(&c.Category, &c.XP); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanActivity(s scanner) (domain.Activity, error) {
	var a domain.Activity
	var startUS, endUS, createdUS int64
	var startOff, endOff int

	err := s.Scan(&a.ID, &a.UserID, &a.Category, &startUS, &startOff,
		&endUS, &endOff, &a.XPEarned, &createdUS)
	if err != nil {
		return a, err
	}
	a.StartTime = joinTime(startUS, startOff)
	a.EndTime = joinTime(endUS, endOff)
	a.CreatedAt = time.UnixMicro(createdUS).UTC()
	return a, nil
}
