package forecast

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

// DaysPerMonth is the month length used to convert between daily and monthly
// rates. Rates are always normalised per day; months are a display unit.
const DaysPerMonth = 30.0

// Timeframe selects how a consumption window is anchored to "now".
type Timeframe string

const (
	MonthToDate Timeframe = "month_to_date"
	LastMonth   Timeframe = "last_month"
	LastNMonths Timeframe = "last_n_months"
	CustomDays  Timeframe = "custom_days"
)

// ErrInvalidTimeframe is returned for unknown timeframe tokens.
var ErrInvalidTimeframe = fmt.Errorf("%w: unknown timeframe", domain.ErrInvalidArgument)

var timeframeAliases = map[string]Timeframe{
	"month_to_date":        MonthToDate,
	"month-to-date":        MonthToDate,
	"mtd":                  MonthToDate,
	"last_month":           LastMonth,
	"last-month":           LastMonth,
	"last_n_months":        LastNMonths,
	"last-n-months":        LastNMonths,
	"months":               LastNMonths,
	"custom_days":          CustomDays,
	"custom-days":          CustomDays,
	"custom":               CustomDays,
	"custom-lookback-days": CustomDays,
	"days":                 CustomDays,
}

// ParseTimeframe accepts the canonical tokens plus the dashed spellings used
// by the report forms.
func ParseTimeframe(token string) (Timeframe, error) {
	tf, ok := timeframeAliases[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, token)
	}
	return tf, nil
}

// Selection is a timeframe plus its size parameter. Months is read for
// LastNMonths, Days for CustomDays.
type Selection struct {
	Timeframe Timeframe
	Months    int
	Days      int
}

// Window is a concrete consumption window. End is exclusive.
//
// PeriodScale is the fraction of the selected period that has elapsed: 1 for
// complete periods, daysElapsed/daysInMonth for month to date. Months is the
// window length expressed in months for display. Days is the denominator used
// when normalising units to a daily rate.
type Window struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Days        int       `json:"days"`
	PeriodScale float64   `json:"period_scale"`
	Months      float64   `json:"months"`
}

// ResolveWindow turns a selection into a concrete window relative to now.
// It never reads the wall clock.
func ResolveWindow(sel Selection, now time.Time) (Window, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch sel.Timeframe {
	case MonthToDate:
		// Today counts as elapsed, so the first of the month is day 1, not 0.
		elapsed := now.Day()
		scale := float64(elapsed) / float64(daysInMonth(now))
		return Window{
			Start:       monthStart,
			End:         now,
			Days:        elapsed,
			PeriodScale: scale,
			Months:      scale,
		}, nil

	case LastMonth:
		start := monthStart.AddDate(0, -1, 0)
		return Window{
			Start:       start,
			End:         monthStart,
			Days:        daysBetween(start, monthStart),
			PeriodScale: 1,
			Months:      1,
		}, nil

	case LastNMonths:
		n := sel.Months
		if n < 1 {
			n = 1
		}
		start := monthStart.AddDate(0, -n, 0)
		return Window{
			Start:       start,
			End:         monthStart,
			Days:        daysBetween(start, monthStart),
			PeriodScale: 1,
			Months:      float64(n),
		}, nil

	case CustomDays:
		n := sel.Days
		if n < 1 {
			n = 1
		}
		return Window{
			Start:       now.AddDate(0, 0, -n),
			End:         now,
			Days:        n,
			PeriodScale: 1,
			Months:      float64(n) / DaysPerMonth,
		}, nil
	}

	return Window{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, sel.Timeframe)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// daysBetween counts calendar days, absorbing DST hour shifts.
func daysBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours() / 24))
}
