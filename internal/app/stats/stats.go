// Package stats derives XP and finance aggregates from the stored logs.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeio/lifeio/internal/app/activity"
	"github.com/lifeio/lifeio/internal/app/engagement"
	"github.com/lifeio/lifeio/internal/domain"
)

// FinancePeriod labels the finance summary window.
const FinancePeriod = "Last 30 days"

// financeWindowDays is the length of the finance summary window.
const financeWindowDays = 30

// Source is the read side of the store that aggregation needs.
type Source interface {
	SumXP(ctx context.Context, userID string, since time.Time) (float64, error)
	XPByCategory(ctx context.Context, userID string) ([]domain.CategoryXP, error)
	FinanceSince(ctx context.Context, userID, date string) ([]domain.FinanceRecord, error)
}

// XPStats is the xp_stats block of a summary.
type XPStats struct {
	Total                float64 `json:"total"`
	CurrentLevelProgress float64 `json:"current_level_progress"`
	NeededForNext        int     `json:"needed_for_next"`
	Monthly              float64 `json:"monthly"`
	Today                float64 `json:"today"`
}

// Summary is the level and XP overview of one user.
type Summary struct {
	Level   int     `json:"level"`
	XPStats XPStats `json:"xp_stats"`
}

// FinanceSummary totals the finance records of the recent window.
type FinanceSummary struct {
	Period       string  `json:"period"`
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Net          float64 `json:"net"`
}

// Service computes aggregates. Windows are evaluated in loc.
type Service struct {
	src Source
	loc *time.Location
	now func() time.Time
}

// NewService creates a Service. A nil loc means UTC.
func NewService(src Source, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{src: src, loc: loc, now: time.Now}
}

// Now returns the current instant in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Summary returns the lifetime level state plus the month and day XP sums
// relative to now. Windows start at StartOfMonth(now) and StartOfDay(now).
func (s *Service) Summary(ctx context.Context, userID string, now time.Time) (Summary, error) {
	total, err := s.src.SumXP(ctx, userID, time.Time{})
	if err != nil {
		return Summary{}, fmt.Errorf("lifetime xp: %w", err)
	}
	monthly, err := s.src.SumXP(ctx, userID, activity.StartOfMonth(now))
	if err != nil {
		return Summary{}, fmt.Errorf("monthly xp: %w", err)
	}
	today, err := s.src.SumXP(ctx, userID, activity.StartOfDay(now))
	if err != nil {
		return Summary{}, fmt.Errorf("today xp: %w", err)
	}

	lp := engagement.LevelProgress(total)
	return Summary{
		Level: lp.Level,
		XPStats: XPStats{
			Total:                engagement.Round2(lp.TotalXP),
			CurrentLevelProgress: engagement.Round2(lp.XPCurrent),
			NeededForNext:        lp.XPNeeded,
			Monthly:              engagement.Round2(monthly),
			Today:                engagement.Round2(today),
		},
	}, nil
}

// Skills returns lifetime XP per category, rounded to two places.
func (s *Service) Skills(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := s.src.XPByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("xp by category: %w", err)
	}
	skills := make(map[string]float64, len(rows))
	for _, r := range rows {
		skills[r.Category] = engagement.Round2(r.XP)
	}
	return skills, nil
}

// Finance totals records dated on or after now minus 30 days.
// Sums are returned at full precision.
func (s *Service) Finance(ctx context.Context, userID string, now time.Time) (FinanceSummary, error) {
	since := now.AddDate(0, 0, -financeWindowDays).Format(domain.DateLayout)
	recs, err := s.src.FinanceSince(ctx, userID, since)
	if err != nil {
		return FinanceSummary{}, fmt.Errorf("finance since %s: %w", since, err)
	}

	out := FinanceSummary{Period: FinancePeriod}
	for _, r := range recs {
		out.TotalIncome += r.Income
		out.TotalExpense += r.Expense
	}
	out.Net = out.TotalIncome - out.TotalExpense
	return out, nil
}
