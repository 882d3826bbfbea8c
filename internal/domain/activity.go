// Package domain holds the LifeIO entities and the store boundary.
// Activities, category multipliers, sleep logs and finance records are
// always owned by exactly one user id.
package domain

import "time"

// ─── Activity Types ─────────────────────────────────────────────────────────

// Activity is one tracked, half-open block of time [StartTime, EndTime).
// Stored intervals of a user never overlap and never cross midnight of
// their start day. Never mutated in place.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	XPEarned  float64   `json:"xp_earned"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports whether a and the range [start, end) intersect.
// Touching endpoints do not overlap.
func (a Activity) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// Duration returns the length of the interval.
func (a Activity) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// ─── Category Types ─────────────────────────────────────────────────────────

// Category carries the per-user XP multiplier for a category name.
type Category struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	XPMultiplier float64 `json:"xp_multiplier"`
}

// DefaultMultipliers seeds a category the first time a user logs it.
// Lookups are exact and case-sensitive; unknown names get 1.0.
var DefaultMultipliers = map[string]float64{
	"Work":        1.2,
	"Study":       1.1,
	"Workout":     1.3,
	"Cooking":     1.0,
	"Wasted Time": -1.0,
}

// DefaultMultiplier returns the seed multiplier for name.
func DefaultMultiplier(name string) float64 {
	if m, ok := DefaultMultipliers[name]; ok {
		return m
	}
	return 1.0
}

// ─── Level / XP Types ───────────────────────────────────────────────────────

// XPPerLevel is the flat size of every level.
const XPPerLevel = 500

// LevelProgress is the derived level state for a cumulative XP total.
type LevelProgress struct {
	Level     int     `json:"level"`
	XPCurrent float64 `json:"xp_current"`
	XPNeeded  int     `json:"xp_needed"`
	TotalXP   float64 `json:"total_xp"`
}

// CategoryXP is one row of the per-category XP breakdown.
type CategoryXP struct {
	Category string
	XP       float64
}

// ─── Sleep / Finance Types ──────────────────────────────────────────────────

// SleepLog records one night. WakeTime is always after SleepTime and
// Quality is within [1,5].
type SleepLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SleepTime time.Time `json:"sleep_time"`
	WakeTime  time.Time `json:"wake_time"`
	Quality   int       `json:"quality"`
	CreatedAt time.Time `json:"created_at"`
}

// FinanceRecord is the income/expense total of one calendar day.
// Unique per (UserID, Date).
type FinanceRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Income    float64   `json:"income"`
	Expense   float64   `json:"expense"`
	CreatedAt time.Time `json:"created_at"`
}

// DateLayout is the wire and storage format of FinanceRecord.Date.
const DateLayout = "2006-01-02"
