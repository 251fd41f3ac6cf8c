package forecast

import "math"

// BlendBoundaryDays splits lookbacks between the 30 and 60 day buckets.
// Lookbacks of 45 days or more read the 60 day bucket.
const BlendBoundaryDays = 45

// Observation is the units consumed over a window of WindowDays, of which
// OutOfStockDays the item could not be bought.
type Observation struct {
	Units          float64 `json:"units"`
	WindowDays     float64 `json:"window_days"`
	OutOfStockDays float64 `json:"out_of_stock_days"`
}

// EffectiveDays excludes stock-out days from the window: demand on those days
// is unobserved, not zero. The result is at least 1.
func (o Observation) EffectiveDays() float64 {
	window := math.Max(0, o.WindowDays)
	oos := math.Min(math.Max(0, o.OutOfStockDays), window)
	return math.Max(1, window-oos)
}

// DailyRate is units per effective day. Negative units clamp to zero.
func (o Observation) DailyRate() float64 {
	units := o.Units
	if units < 0 || math.IsNaN(units) {
		units = 0
	}
	return units / o.EffectiveDays()
}

// History is everything known about an item's consumption. Exact is a count
// over the caller's precise window; Sold30 and Sold60 are trailing buckets
// kept by the warehouse system. Any of them may be missing.
type History struct {
	Exact            *Observation
	Sold30           *float64
	Sold60           *float64
	OutOfStockDays30 float64
	OutOfStockDays60 float64
}

// Observation picks the observation a lookback should be measured on.
// The exact window wins. Otherwise a lookback of BlendBoundaryDays or more
// uses the 60 day bucket, doubling a 30 day figure when that is all there is,
// and a shorter lookback uses the 30 day bucket, halving a 60 day figure.
// ok is false when no data exists at all.
func (h History) Observation(lookbackDays int) (obs Observation, ok bool) {
	if h.Exact != nil {
		return *h.Exact, true
	}

	if lookbackDays >= BlendBoundaryDays {
		switch {
		case h.Sold60 != nil:
			return Observation{Units: *h.Sold60, WindowDays: 60, OutOfStockDays: h.OutOfStockDays60}, true
		case h.Sold30 != nil:
			return Observation{Units: *h.Sold30 * 2, WindowDays: 60, OutOfStockDays: h.OutOfStockDays30 * 2}, true
		}
		return Observation{}, false
	}

	switch {
	case h.Sold30 != nil:
		return Observation{Units: *h.Sold30, WindowDays: 30, OutOfStockDays: h.OutOfStockDays30}, true
	case h.Sold60 != nil:
		return Observation{Units: *h.Sold60 / 2, WindowDays: 30, OutOfStockDays: h.OutOfStockDays60 / 2}, true
	}
	return Observation{}, false
}

// OutOfStockDaysFor scales the stock-out counter of the bucket nearest to
// windowDays (30 below BlendBoundaryDays, 60 otherwise) onto a window of that
// length. A bucket without a counter falls back to the other one.
func (h History) OutOfStockDaysFor(windowDays int) float64 {
	if windowDays <= 0 {
		return 0
	}
	bucket, oos := 30.0, h.OutOfStockDays30
	if windowDays >= BlendBoundaryDays {
		bucket, oos = 60.0, h.OutOfStockDays60
	}
	if oos <= 0 {
		if bucket == 30 {
			bucket, oos = 60, h.OutOfStockDays60
		} else {
			bucket, oos = 30, h.OutOfStockDays30
		}
	}
	if oos <= 0 {
		return 0
	}
	window := float64(windowDays)
	return math.Min(window, oos*window/bucket)
}

// DailyRate returns the average daily consumption for the lookback, or 0 when
// there is no sales history.
func (h History) DailyRate(lookbackDays int) float64 {
	obs, ok := h.Observation(lookbackDays)
	if !ok {
		return 0
	}
	return obs.DailyRate()
}

// MonthlyRate converts a daily rate to the monthly display unit.
func MonthlyRate(daily float64) float64 {
	return daily * DaysPerMonth
}
