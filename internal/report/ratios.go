// Package report holds the arithmetic shared by the sales report shells.
// Every ratio guards its denominator; none of them return an error.
package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MarginPct is margin / net x 100, rounded to two places. Zero net gives 0.
func MarginPct(margin, net decimal.Decimal) decimal.Decimal {
	if net.IsZero() {
		return decimal.Zero
	}
	return margin.Div(net).Mul(hundred).Round(2)
}

// AttainmentPct is actual / target x 100. A missing or zero target has no
// meaningful attainment, so nil is returned.
func AttainmentPct(actual, target decimal.Decimal) *decimal.Decimal {
	if target.IsZero() {
		return nil
	}
	pct := actual.Div(target).Mul(hundred).Round(2)
	return &pct
}

// GrowthPct is (cur - prev) / |prev| x 100. Growth from nothing is undefined
// and returned as nil.
func GrowthPct(cur, prev decimal.Decimal) *decimal.Decimal {
	if prev.IsZero() {
		return nil
	}
	pct := cur.Sub(prev).Div(prev.Abs()).Mul(hundred).Round(2)
	return &pct
}

// DaysSince counts whole days between then and now, never negative.
func DaysSince(then, now time.Time) int {
	if then.IsZero() || now.Before(then) {
		return 0
	}
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

// PreviousPeriod returns the period of equal length ending where start
// begins.
func PreviousPeriod(start, end time.Time) (time.Time, time.Time) {
	return start.Add(-end.Sub(start)), start
}
