package engagement_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeio/lifeio/internal/app/engagement"
	"github.com/lifeio/lifeio/internal/domain"
	"github.com/lifeio/lifeio/internal/infra/sqlite"
)

// memCategories is an in-memory CategoryStore with injectable failures.
type memCategories struct {
	mu        sync.Mutex
	rows      map[string]domain.Category
	createErr error
	creates   int
}

func newMem() *memCategories {
	return &memCategories{rows: make(map[string]domain.Category)}
}

func (m *memCategories) GetCategory(_ context.Context, userID, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[userID+"/"+name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCategories) CreateCategory(_ context.Context, c domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	key := c.UserID + "/" + c.Name
	if _, ok := m.rows[key]; !ok {
		m.rows[key] = c
	}
	return nil
}

func TestResolve_Defaults(t *testing.T) {
	store := newMem()
	r := engagement.NewMultiplierResolver(store, nil, zerolog.Nop())

	tests := map[string]float64{
		"Work":        1.2,
		"Study":       1.1,
		"Workout":     1.3,
		"Cooking":     1.0,
		"Wasted Time": -1.0,
		"Gaming":      1.0,
		"work":        1.0, // case-sensitive
	}
	for name, want := range tests {
		got, err := r.Resolve(context.Background(), "u1", name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	assert.Len(t, store.rows, len(tests))
}

func TestResolve_ExistingWins(t *testing.T) {
	store := newMem()
	store.rows["u1/Work"] = domain.Category{UserID: "u1", Name: "Work", XPMultiplier: 2.5}
	r := engagement.NewMultiplierResolver(store, nil, zerolog.Nop())

	got, err := r.Resolve(context.Background(), "u1", "Work")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
	assert.Zero(t, store.creates)
}

func TestResolve_PrefersElevated(t *testing.T) {
	user, elevated := newMem(), newMem()
	// Both handles see the same rows.
	elevated.rows = user.rows
	r := engagement.NewMultiplierResolver(user, elevated, zerolog.Nop())

	got, err := r.Resolve(context.Background(), "u1", "Study")
	require.NoError(t, err)
	assert.Equal(t, 1.1, got)
	assert.Equal(t, 1, elevated.creates)
	assert.Zero(t, user.creates)
}

func TestResolve_FallsBackToUserStore(t *testing.T) {
	user, elevated := newMem(), newMem()
	elevated.createErr = errors.New("permission denied")
	r := engagement.NewMultiplierResolver(user, elevated, zerolog.Nop())

	got, err := r.Resolve(context.Background(), "u1", "Workout")
	require.NoError(t, err)
	assert.Equal(t, 1.3, got)
	assert.Equal(t, 1, user.creates)
}

func TestResolve_AllWritesFail(t *testing.T) {
	user, elevated := newMem(), newMem()
	elevated.createErr = errors.New("permission denied")
	user.createErr = errors.New("disk full")
	r := engagement.NewMultiplierResolver(user, elevated, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "u1", "Work")
	require.Error(t, err)
	assert.ErrorIs(t, err, elevated.createErr)
	assert.ErrorIs(t, err, user.createErr)
}

func TestResolve_ConcurrentFirstUseConverges(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	r := engagement.NewMultiplierResolver(db, nil, zerolog.Nop())

	const n = 16
	results := make([]float64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := r.Resolve(context.Background(), "u1", "Gaming")
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		assert.Equal(t, 1.0, m)
	}
	c, err := db.GetCategory(context.Background(), "u1", "Gaming")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 1.0, c.XPMultiplier)
}
