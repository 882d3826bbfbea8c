//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeio/lifeio/internal/domain"
)

// newIntegrationStore connects to LIFEIO_TEST_POSTGRES_DSN, migrates, and
// returns a user-scoped store. Each test uses fresh user ids.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("LIFEIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LIFEIO_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return New(pool)
}

func TestPostgres_ActivityRoundTrip(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	user := uuid.NewString()
	zone := time.FixedZone("", -5*60*60)

	a := domain.Activity{
		ID:        uuid.NewString(),
		UserID:    user,
		Category:  "Work",
		StartTime: time.Date(2024, 5, 10, 9, 0, 0, 123456000, zone),
		EndTime:   time.Date(2024, 5, 10, 10, 0, 0, 0, zone),
		XPEarned:  72.0001,
	}
	require.NoError(t, s.InsertActivity(ctx, a))

	acts, err := s.ListActivities(ctx, user)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.True(t, a.StartTime.Equal(acts[0].StartTime))
	_, off := acts[0].StartTime.Zone()
	assert.Equal(t, -18000, off)
	assert.Equal(t, 72.0001, acts[0].XPEarned)
}

func TestPostgres_AtomicPurgeAndInsert(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	user := uuid.NewString()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	old := domain.Activity{ID: uuid.NewString(), UserID: user, Category: "Work", StartTime: base, EndTime: base.Add(time.Hour), XPEarned: 72}
	keep := domain.Activity{ID: uuid.NewString(), UserID: user, Category: "Work", StartTime: base.Add(2 * time.Hour), EndTime: base.Add(3 * time.Hour), XPEarned: 72}
	require.NoError(t, s.InsertActivity(ctx, old))
	require.NoError(t, s.InsertActivity(ctx, keep))

	next := domain.Activity{ID: uuid.NewString(), UserID: user, Category: "Work", StartTime: base.Add(30 * time.Minute), EndTime: base.Add(2 * time.Hour), XPEarned: 108}
	err := s.Atomic(ctx, func(tx domain.Store) error {
		n, err := tx.DeleteOverlapping(ctx, user, next.StartTime, next.EndTime)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return tx.InsertActivity(ctx, next)
	})
	require.NoError(t, err)

	total, err := s.SumXP(ctx, user, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 180.0, total, 1e-9)

	byCat, err := s.XPByCategory(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryXP{{Category: "Work", XP: 180}}, byCat)
}

func TestPostgres_CategoryAndFinance(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	user := uuid.NewString()

	require.NoError(t, s.CreateCategory(ctx, domain.Category{UserID: user, Name: "Gaming", XPMultiplier: 1}))
	require.NoError(t, s.CreateCategory(ctx, domain.Category{UserID: user, Name: "Gaming", XPMultiplier: 9}))
	c, err := s.GetCategory(ctx, user, "Gaming")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 1.0, c.XPMultiplier)

	missing, err := s.GetCategory(ctx, user, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := s.UpsertFinance(ctx, domain.FinanceRecord{ID: uuid.NewString(), UserID: user, Date: "2024-05-10", Income: 10})
	require.NoError(t, err)
	second, err := s.UpsertFinance(ctx, domain.FinanceRecord{ID: uuid.NewString(), UserID: user, Date: "2024-05-10", Expense: 4})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "2024-05-10", second.Date)

	recs, err := s.FinanceSince(ctx, user, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Zero(t, recs[0].Income)
	assert.Equal(t, 4.0, recs[0].Expense)
}
