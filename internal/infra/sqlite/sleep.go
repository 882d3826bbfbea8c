package sqlite

import (
	"context"
	"time"

	"github.com/lifeio/lifeio/internal/domain"
)

// ─── Sleep Repository ───────────────────────────────────────────────────────

// InsertSleep stores a sleep session.
func (d *DB) InsertSleep(ctx context.Context, s domain.SleepLog) error {
	sleepUS, sleepOff := splitTime(s.SleepTime)
	wakeUS, wakeOff := splitTime(s.WakeTime)
	createdUS := s.CreatedAt.UnixMicro()
	if s.CreatedAt.IsZero() {
		createdUS = nowMicros()
	}

	_, err := d.q.ExecContext(ctx,
		`INSERT INTO sleep_logs (id, user_id, sleep_us, sleep_off, wake_us, wake_off, quality, created_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, sleepUS, sleepOff, wakeUS, wakeOff, s.Quality, createdUS,
	)
	return err
}

// ListSleep returns the user's sleep logs, latest first.
func (d *DB) ListSleep(ctx context.Context, userID string) ([]domain.SleepLog, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT id, user_id, sleep_us, sleep_off, wake_us, wake_off, quality, created_us
		 FROM sleep_logs WHERE user_id = ? ORDER BY sleep_us DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []domain.SleepLog{}
	for rows.Next() {
		var s domain.SleepLog
		var sleepUS, wakeUS, createdUS int64
		var sleepOff, wakeOff int
		if err := rows.Scan(&s.ID, &s.UserID, &sleepUS, &sleepOff,
			&wakeUS, &wakeOff, &s.Quality, &createdUS); err != nil {
			return nil, err
		}
		s.SleepTime = joinTime(sleepUS, sleepOff)
		s.WakeTime = joinTime(wakeUS, wakeOff)
		s.CreatedAt = time.UnixMicro(createdUS).UTC()
		logs = append(logs, s)
	}
	return logs, rows.Err()
}

// DeleteSleep removes one sleep log. A missing id is not an error.
func (d *DB) DeleteSleep(ctx context.Context, userID, id string) error {
	_, err := d.q.ExecContext(ctx,
		`DELETE FROM sleep_logs WHERE id = ? AND user_id = ?`, id, userID,
	)
	return err
}
