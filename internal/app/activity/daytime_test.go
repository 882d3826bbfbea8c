package activity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeio/lifeio/internal/domain"
)

var plus2 = time.FixedZone("", 2*60*60)

func TestDayBoundary(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, plus2)
	got := DayBoundary(start)

	assert.Equal(t, time.Date(2024, 5, 10, 23, 59, 59, 999999000, plus2), got)
	assert.Equal(t, plus2, got.Location(), "boundary stays in the start's location")
}

func TestClipToDayBoundary(t *testing.T) {
	start := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want time.Time
	}{
		{"same day", time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC), time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC)},
		{"exactly boundary", DayBoundary(start), DayBoundary(start)},
		{"next day", time.Date(2024, 5, 11, 2, 0, 0, 0, time.UTC), DayBoundary(start)},
		{"days later", time.Date(2024, 5, 14, 2, 0, 0, 0, time.UTC), DayBoundary(start)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ClipToDayBoundary(start, tt.end)))
		})
	}
}

func TestClipToDayBoundary_Minutes(t *testing.T) {
	start := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	end := ClipToDayBoundary(start, time.Date(2024, 5, 11, 2, 0, 0, 0, time.UTC))

	assert.InDelta(t, 59.999983, end.Sub(start).Minutes(), 1e-5)
}

func TestStartOfDayAndMonth(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 4, 5, 6, plus2)

	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, plus2), StartOfDay(now))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, plus2), StartOfMonth(now))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		offset int
	}{
		{"2024-05-10T09:00:00Z", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), 0},
		{"2024-05-10T09:00:00+02:00", time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC), 7200},
		{"2024-05-10T09:00:00.123456-05:00", time.Date(2024, 5, 10, 14, 0, 0, 123456000, time.UTC), -18000},
		{"2024-05-10T09:00:00", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), 0},
		{"2024-05-10 09:00:00+01:00", time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC), 3600},
		{"2024-05-10T09:00", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), 0},
		{"2024-05-10", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp("start_time", tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			_, off := got.Zone()
			assert.Equal(t, tt.offset, off)
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2024-13-01T00:00:00Z", "10/05/2024"} {
		_, err := ParseTimestamp("start_time", in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, domain.ErrValidation), in)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "start_time", verr.Field)
	}
}
