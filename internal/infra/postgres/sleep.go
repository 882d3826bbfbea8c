package postgres

import (
	"context"
	"time"

	"github.com/lifeio/lifeio/internal/domain"
)

const sleepColumns = `id, user_id, sleep_time, sleep_off, wake_time, wake_off, quality, created_at`

// InsertSleep stores a sleep log.
func (s *Store) InsertSleep(ctx context.Context, l domain.SleepLog) error {
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return s.run(ctx, l.UserID, func(q querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO sleep_logs (`+sleepColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			l.ID, l.UserID,
			l.SleepTime, offset(l.SleepTime),
			l.WakeTime, offset(l.WakeTime),
			l.Quality, created,
		)
		return err
	})
}

// ListSleep returns the user's logs, latest sleep first.
func (s *Store) ListSleep(ctx context.Context, userID string) ([]domain.SleepLog, error) {
	out := []domain.SleepLog{}
	err := s.run(ctx, userID, func(q querier) error {
		rows, err := q.Query(ctx,
			`SELECT `+sleepColumns+` FROM sleep_logs WHERE user_id = $1 ORDER BY sleep_time DESC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var l domain.SleepLog
			var sleepOff, wakeOff int
			if err := rows.Scan(&l.ID, &l.UserID, &l.SleepTime, &sleepOff, &l.WakeTime, &wakeOff, &l.Quality, &l.CreatedAt); err != nil {
				return err
			}
			l.SleepTime = withOffset(l.SleepTime, sleepOff)
			l.WakeTime = withOffset(l.WakeTime, wakeOff)
			l.CreatedAt = l.CreatedAt.UTC()
			out = append(out, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSleep removes one log. A missing id is not an error.
func (s *Store) DeleteSleep(ctx context.Context, userID, id string) error {
	return s.run(ctx, userID, func(q querier) error {
		_, err := q.Exec(ctx, `DELETE FROM sleep_logs WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
}
