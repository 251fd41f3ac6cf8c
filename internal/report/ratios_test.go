package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMarginPct(t *testing.T) {
	assert.Equal(t, "25", MarginPct(d("250"), d("1000")).String())
	assert.Equal(t, "33.33", MarginPct(d("1"), d("3")).String())
	assert.True(t, MarginPct(d("10"), decimal.Zero).IsZero())
}

func TestAttainmentPct(t *testing.T) {
	got := AttainmentPct(d("4500"), d("6000"))
	require.NotNil(t, got)
	assert.Equal(t, "75", got.String())

	assert.Nil(t, AttainmentPct(d("4500"), decimal.Zero))
}

func TestGrowthPct(t *testing.T) {
	tests := []struct {
		name string
		cur  string
		prev string
		want string
	}{
		{"growth", "1200", "1000", "20"},
		{"decline", "500", "1000", "-50"},
		{"recovering from a negative period", "100", "-200", "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthPct(d(tt.cur), d(tt.prev))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}

	assert.Nil(t, GrowthPct(d("100"), decimal.Zero))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 45, DaysSince(now.AddDate(0, 0, -45), now))
	assert.Equal(t, 0, DaysSince(now.Add(time.Hour), now))
	assert.Equal(t, 0, DaysSince(time.Time{}, now))
}

func TestPreviousPeriod(t *testing.T) {
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

	ps, pe := PreviousPeriod(start, end)

	assert.Equal(t, start.AddDate(0, 0, -30), ps)
	assert.Equal(t, start, pe)
}
