// Package finance validates and stores daily income/expense records.
package finance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifeio/lifeio/internal/domain"
)

// Input is an unparsed finance submission. Income and Expense default to 0.
type Input struct {
	UserID  string
	Date    string
	Income  *float64
	Expense *float64
}

// Service owns the daily finance log.
type Service struct {
	store domain.FinanceStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a Service.
func NewService(store domain.FinanceStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "finance").Logger(),
		now:   time.Now,
	}
}

// Upsert stores the totals of one day, replacing any earlier record of the
// same (user, date). The stored record is returned.
func (s *Service) Upsert(ctx context.Context, in Input) (domain.FinanceRecord, error) {
	if in.UserID == "" {
		return domain.FinanceRecord{}, domain.Invalid("user_id", "is required")
	}
	if in.Date == "" {
		return domain.FinanceRecord{}, domain.Invalid("date", "is required")
	}
	if _, err := time.Parse(domain.DateLayout, in.Date); err != nil {
		return domain.FinanceRecord{}, domain.Invalid("date", "invalid date format, use YYYY-MM-DD")
	}
	income, err := amount("income", in.Income)
	if err != nil {
		return domain.FinanceRecord{}, err
	}
	expense, err := amount("expense", in.Expense)
	if err != nil {
		return domain.FinanceRecord{}, err
	}

	rec, err := s.store.UpsertFinance(ctx, domain.FinanceRecord{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Date:      in.Date,
		Income:    income,
		Expense:   expense,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.FinanceRecord{}, fmt.Errorf("upsert finance: %w", err)
	}
	s.log.Info().Str("user", in.UserID).Str("date", in.Date).Msg("finance recorded")
	return rec, nil
}

func amount(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, domain.Invalid(field, "must be a finite number")
	}
	return *v, nil
}

// List returns the user's records, latest date first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.FinanceRecord, error) {
	recs, err := s.store.ListFinance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list finance: %w", err)
	}
	return recs, nil
}

// Delete removes one record of userID. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteFinance(ctx, userID, id); err != nil {
		return fmt.Errorf("delete finance: %w", err)
	}
	return nil
}
