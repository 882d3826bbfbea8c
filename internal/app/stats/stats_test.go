package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeio/lifeio/internal/domain"
	"github.com/lifeio/lifeio/internal/infra/sqlite"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *sqlite.DB, user, category string, start time.Time, xp float64) {
	t.Helper()
	require.NoError(t, db.InsertActivity(context.Background(), domain.Activity{
		ID:        uuid.NewString(),
		UserID:    user,
		Category:  category,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		XPEarned:  xp,
	}))
}

func TestSummary(t *testing.T) {
	db := newTestStore(t)
	seed(t, db, "u1", "Work", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), 1000)
	seed(t, db, "u1", "Study", time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC), 200.123)
	seed(t, db, "u1", "Workout", time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC), 50.006)
	seed(t, db, "u2", "Work", time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC), 9999)

	svc := NewService(db, time.UTC)
	got, err := svc.Summary(context.Background(), "u1", now)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Level)
	assert.InDelta(t, 1250.13, got.XPStats.Total, 1e-9)
	assert.InDelta(t, 250.13, got.XPStats.CurrentLevelProgress, 1e-9)
	assert.Equal(t, 500, got.XPStats.NeededForNext)
	assert.InDelta(t, 250.13, got.XPStats.Monthly, 1e-9)
	assert.InDelta(t, 50.01, got.XPStats.Today, 1e-9)
}

func TestSummary_Empty(t *testing.T) {
	svc := NewService(newTestStore(t), nil)
	got, err := svc.Summary(context.Background(), "nobody", now)
	require.NoError(t, err)
	assert.Equal(t, Summary{XPStats: XPStats{NeededForNext: 500}}, got)
}

func TestSummary_WindowsFollowLocation(t *testing.T) {
	db := newTestStore(t)
	// 23:30 UTC on the 14th is already the 15th in UTC+2.
	seed(t, db, "u1", "Work", time.Date(2024, 5, 14, 23, 30, 0, 0, time.UTC), 10)

	plus2 := time.FixedZone("", 2*60*60)
	svc := NewService(db, plus2)

	got, err := svc.Summary(context.Background(), "u1", now.In(plus2))
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.XPStats.Today)

	got, err = svc.Summary(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.Zero(t, got.XPStats.Today)
}

func TestSkills(t *testing.T) {
	db := newTestStore(t)
	seed(t, db, "u1", "Work", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), 72)
	seed(t, db, "u1", "Work", time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), 36.004)
	seed(t, db, "u1", "Wasted Time", time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC), -30)

	skills, err := NewService(db, nil).Skills(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Work": 108.0, "Wasted Time": -30.0}, skills)
}

func TestFinance(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()
	for _, f := range []domain.FinanceRecord{
		{Date: "2024-04-14", Income: 1000, Expense: 1000}, // outside window
		{Date: "2024-04-15", Income: 100.5, Expense: 20.25},
		{Date: "2024-05-15", Income: 0, Expense: 10.1},
	} {
		f.ID = uuid.NewString()
		f.UserID = "u1"
		_, err := db.UpsertFinance(ctx, f)
		require.NoError(t, err)
	}

	got, err := NewService(db, nil).Finance(ctx, "u1", now)
	require.NoError(t, err)
	assert.Equal(t, FinancePeriod, got.Period)
	assert.InDelta(t, 100.5, got.TotalIncome, 1e-9)
	assert.InDelta(t, 30.35, got.TotalExpense, 1e-9)
	assert.InDelta(t, 70.15, got.Net, 1e-9)
}

type failingSource struct{ err error }

func (f failingSource) SumXP(context.Context, string, time.Time) (float64, error) { return 0, f.err }
func (f failingSource) XPByCategory(context.Context, string) ([]domain.CategoryXP, error) {
	return nil, f.err
}
func (f failingSource) FinanceSince(context.Context, string, string) ([]domain.FinanceRecord, error) {
	return nil, f.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(failingSource{err: boom}, nil)
	ctx := context.Background()

	_, err := svc.Summary(ctx, "u1", now)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Skills(ctx, "u1")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Finance(ctx, "u1", now)
	assert.ErrorIs(t, err, boom)
}
