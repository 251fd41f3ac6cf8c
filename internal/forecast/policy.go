package forecast

import (
	"math"

	"github.com/shopspring/decimal"
)

// MinimumOrder controls the smallest non-zero suggestion a policy allows.
type MinimumOrder int

const (
	// MinimumNone lets a suggestion fall to zero.
	MinimumNone MinimumOrder = iota
	// MinimumOnePack never suggests less than one full pack while there is
	// demand.
	MinimumOnePack
)

// ReplenishmentPolicy describes how projected demand becomes an order
// quantity. Rounding is always upward, to whole units and then to packs.
type ReplenishmentPolicy struct {
	Name    string
	Minimum MinimumOrder
	// StockAware subtracts on-hand stock from the projection.
	StockAware bool
	// NetIncoming also subtracts stock in the order book and stock due.
	NetIncoming bool
	// FloorZeroDemand applies the minimum even when there is no demand.
	FloorZeroDemand bool
}

var (
	// PARPolicy is used by the Demand & PAR report: live stock is ignored,
	// anything with demand gets at least one pack, zero demand stays zero.
	PARPolicy = ReplenishmentPolicy{
		Name:    "par",
		Minimum: MinimumOnePack,
	}

	// PurchaseOrderPolicy is used by the purchase ordering planner: stock on
	// hand and incoming stock are netted off and the result may be zero.
	PurchaseOrderPolicy = ReplenishmentPolicy{
		Name:        "purchase_order",
		Minimum:     MinimumNone,
		StockAware:  true,
		NetIncoming: true,
	}
)

// SuggestionInput holds the per-item numbers fed to Suggest. HorizonDays is
// the coverage horizon in days; PAR callers convert coverage months with
// DaysFromMonths.
type SuggestionInput struct {
	AvgDailyRate float64
	SafetyMargin float64
	HorizonDays  float64
	OnHand       float64
	InOrderBook  float64
	Due          float64
	PackSize     int
	MOQ          int
}

// Suggestion is the outcome for one item. RawQty is the whole-unit shortfall
// before pack and MOQ rounding.
type Suggestion struct {
	AvgDailyRate    float64 `json:"avg_daily_rate"`
	ProjectedDemand float64 `json:"projected_demand"`
	RawQty          int     `json:"raw_qty"`
	SuggestedQty    int     `json:"suggested_qty"`
	PackSize        int     `json:"pack_size"`
}

// Suggest applies the policy to one item. It is pure: equal inputs always
// give equal outputs. The suggested quantity is a non-negative multiple of
// the (clamped) pack size.
func Suggest(in SuggestionInput, p ReplenishmentPolicy) Suggestion {
	pack := ClampPackSize(in.PackSize)
	rate := nonNegative(in.AvgDailyRate)
	projected := rate * nonNegative(in.HorizonDays) * (1 + nonNegative(in.SafetyMargin))

	need := projected
	if p.StockAware {
		need -= in.OnHand
		if p.NetIncoming {
			need -= nonNegative(in.InOrderBook) + nonNegative(in.Due)
		}
	}

	raw := 0
	if need > 0 {
		raw = ceilQty(need)
	}

	qty := 0
	if raw > 0 {
		qty = roundUpToPack(raw, pack)
		if in.MOQ > 0 {
			if moq := roundUpToPack(in.MOQ, pack); qty < moq {
				qty = moq
			}
		}
	}

	if p.Minimum == MinimumOnePack && qty < pack && (rate > 0 || p.FloorZeroDemand) {
		qty = pack
	}

	return Suggestion{
		AvgDailyRate:    rate,
		ProjectedDemand: projected,
		RawQty:          raw,
		SuggestedQty:    qty,
		PackSize:        pack,
	}
}

// ClampPackSize treats anything below 1 as "no packaging constraint".
func ClampPackSize(pack int) int {
	if pack < 1 {
		return 1
	}
	return pack
}

// DaysFromMonths converts a coverage horizon in months to days.
func DaysFromMonths(months float64) float64 {
	return nonNegative(months) * DaysPerMonth
}

// ExtendCost prices the rounded quantity.
func ExtendCost(unitCost decimal.Decimal, qty int) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(int64(qty)))
}

func roundUpToPack(qty, pack int) int {
	pack = ClampPackSize(pack)
	return ((qty + pack - 1) / pack) * pack
}

// ceilQty rounds up, ignoring float noise just above an integer
// (10 * 1.1 = 11.000000000000002 must give 11).
func ceilQty(v float64) int {
	tolerance := 1e-9 * math.Max(1, math.Abs(v))
	return int(math.Ceil(v - tolerance))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
