package forecast

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one line of a forecast result as returned to callers.
type Row struct {
	ItemKey         string           `json:"item_key"`
	DisplayName     string           `json:"display_name"`
	SKU             string           `json:"sku"`
	UnitsInWindow   float64          `json:"units_in_window"`
	AvgRate         float64          `json:"avg_rate"`
	MonthlyRate     float64          `json:"monthly_rate"`
	ProjectedDemand float64          `json:"projected_demand"`
	OnHand          float64          `json:"on_hand"`
	Incoming        float64          `json:"incoming"`
	PackSize        int              `json:"pack_size"`
	SuggestedQty    int              `json:"suggested_qty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ExtendedCost    *decimal.Decimal `json:"extended_cost,omitempty"`
	CurrentPAR      *int             `json:"current_par,omitempty"`
}

// NewRow builds a row from a suggestion. unitCost is optional; when present
// the extended cost uses the rounded quantity.
func NewRow(itemKey, name, sku string, units float64, s Suggestion, unitCost *decimal.Decimal) Row {
	row := Row{
		ItemKey:         itemKey,
		DisplayName:     name,
		SKU:             sku,
		UnitsInWindow:   units,
		AvgRate:         s.AvgDailyRate,
		MonthlyRate:     MonthlyRate(s.AvgDailyRate),
		ProjectedDemand: s.ProjectedDemand,
		PackSize:        s.PackSize,
		SuggestedQty:    s.SuggestedQty,
	}
	if unitCost != nil {
		cost := *unitCost
		extended := ExtendCost(cost, s.SuggestedQty)
		row.UnitCost = &cost
		row.ExtendedCost = &extended
	}
	return row
}

type rowLess func(a, b *Row) int

var rowSorters = map[string]rowLess{
	"sku": func(a, b *Row) int { return strings.Compare(strings.ToLower(a.SKU), strings.ToLower(b.SKU)) },
	"name": func(a, b *Row) int {
		return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	},
	"item_key":     func(a, b *Row) int { return strings.Compare(a.ItemKey, b.ItemKey) },
	"units":        func(a, b *Row) int { return compareFloat(a.UnitsInWindow, b.UnitsInWindow) },
	"avg_rate":     func(a, b *Row) int { return compareFloat(a.AvgRate, b.AvgRate) },
	"monthly_rate": func(a, b *Row) int { return compareFloat(a.MonthlyRate, b.MonthlyRate) },
	"projected":    func(a, b *Row) int { return compareFloat(a.ProjectedDemand, b.ProjectedDemand) },
	"on_hand":      func(a, b *Row) int { return compareFloat(a.OnHand, b.OnHand) },
	"incoming":     func(a, b *Row) int { return compareFloat(a.Incoming, b.Incoming) },
	"suggested":    func(a, b *Row) int { return a.SuggestedQty - b.SuggestedQty },
	"unit_cost":    func(a, b *Row) int { return compareDecimal(a.UnitCost, b.UnitCost) },
	"extended_cost": func(a, b *Row) int {
		return compareDecimal(a.ExtendedCost, b.ExtendedCost)
	},
}

// IsSortField reports whether field names a sortable column.
func IsSortField(field string) bool {
	_, ok := rowSorters[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

// SortRows orders rows in place by field. Unknown fields sort by SKU; ties
// always fall back to SKU ascending so output is deterministic.
func SortRows(rows []Row, field string, desc bool) {
	cmp, ok := rowSorters[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		cmp = rowSorters["sku"]
	}
	bySKU := rowSorters["sku"]

	sort.SliceStable(rows, func(i, j int) bool {
		c := cmp(&rows[i], &rows[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return bySKU(&rows[i], &rows[j]) < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareDecimal sorts missing values first.
func compareDecimal(a, b *decimal.Decimal) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Cmp(*b)
}
