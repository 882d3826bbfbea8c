// Package sleep validates and stores sleep logs.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifeio/lifeio/internal/app/activity"
	"github.com/lifeio/lifeio/internal/domain"
)

// Quality bounds.
const (
	MinQuality = 1
	MaxQuality = 5
)

// Input is an unparsed sleep submission. Every field is required.
type Input struct {
	UserID    string
	SleepTime string
	WakeTime  string
	Quality   *int
}

// Service owns the sleep log.
type Service struct {
	store domain.SleepStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a Service.
func NewService(store domain.SleepStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "sleep").Logger(),
		now:   time.Now,
	}
}

// Add validates in and stores it.
func (s *Service) Add(ctx context.Context, in Input) (domain.SleepLog, error) {
	if in.UserID == "" {
		return domain.SleepLog{}, domain.Invalid("user_id", "is required")
	}
	if in.SleepTime == "" || in.WakeTime == "" || in.Quality == nil {
		return domain.SleepLog{}, domain.Invalid("", "sleep_time, wake_time, and quality are required")
	}
	sleepAt, err := activity.ParseTimestamp("sleep_time", in.SleepTime)
	if err != nil {
		return domain.SleepLog{}, err
	}
	wakeAt, err := activity.ParseTimestamp("wake_time", in.WakeTime)
	if err != nil {
		return domain.SleepLog{}, err
	}
	if !wakeAt.After(sleepAt) {
		return domain.SleepLog{}, domain.Invalid("wake_time", "must be after sleep_time")
	}
	q := *in.Quality
	if q < MinQuality || q > MaxQuality {
		return domain.SleepLog{}, domain.Invalid("quality", "must be between %d and %d", MinQuality, MaxQuality)
	}

	rec := domain.SleepLog{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		SleepTime: sleepAt,
		WakeTime:  wakeAt,
		Quality:   q,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertSleep(ctx, rec); err != nil {
		return domain.SleepLog{}, fmt.Errorf("insert sleep: %w", err)
	}
	s.log.Info().Str("user", in.UserID).Str("id", rec.ID).Dur("slept", wakeAt.Sub(sleepAt)).Msg("sleep logged")
	return rec, nil
}

// List returns the user's logs, latest sleep first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.SleepLog, error) {
	logs, err := s.store.ListSleep(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sleep: %w", err)
	}
	return logs, nil
}

// Delete removes one log of userID. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteSleep(ctx, userID, id); err != nil {
		return fmt.Errorf("delete sleep: %w", err)
	}
	return nil
}
