package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter carries the selection shared by all report shells. End is
// exclusive. CompareStart/CompareEnd describe the comparison period used for
// growth figures and are derived by the service when left empty.
type ReportFilter struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	CompareStart time.Time `json:"compare_start"`
	CompareEnd   time.Time `json:"compare_end"`
	RepID        *int64    `json:"rep_id,omitempty"`
	CustomerID   *int64    `json:"customer_id,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	InactiveDays int       `json:"inactive_days,omitempty"`
}

type SalesByCustomerRow struct {
	CustomerID   int64           `json:"customer_id" db:"customer_id"`
	CustomerName string          `json:"customer_name" db:"customer_name"`
	RepName      string          `json:"rep_name" db:"rep_name"`
	Orders       int             `json:"orders" db:"orders"`
	Net          decimal.Decimal `json:"net" db:"net"`
	Margin       decimal.Decimal `json:"margin" db:"margin"`
	MarginPct    decimal.Decimal `json:"margin_pct" db:"-"`
}

// GapRow compares what a customer bought of a brand in the current period
// against the comparison period.
type GapRow struct {
	CustomerID   int64            `json:"customer_id" db:"customer_id"`
	CustomerName string           `json:"customer_name" db:"customer_name"`
	Brand        string           `json:"brand" db:"brand"`
	CurrentNet   decimal.Decimal  `json:"current_net" db:"current_net"`
	PreviousNet  decimal.Decimal  `json:"previous_net" db:"previous_net"`
	Gap          decimal.Decimal  `json:"gap" db:"-"`
	GrowthPct    *decimal.Decimal `json:"growth_pct" db:"-"`
}

type RepScorecardRow struct {
	RepID           int64            `json:"rep_id" db:"rep_id"`
	RepName         string           `json:"rep_name" db:"rep_name"`
	Orders          int              `json:"orders" db:"orders"`
	ActiveCustomers int              `json:"active_customers" db:"active_customers"`
	Actual          decimal.Decimal  `json:"actual" db:"actual"`
	Target          decimal.Decimal  `json:"target" db:"target"`
	PreviousNet     decimal.Decimal  `json:"previous_net" db:"previous_net"`
	AttainmentPct   *decimal.Decimal `json:"attainment_pct" db:"-"`
	GrowthPct       *decimal.Decimal `json:"growth_pct" db:"-"`
}

// DropoffRow is a customer who bought during the lookback period but has not
// ordered for at least the inactivity threshold.
type DropoffRow struct {
	CustomerID   int64           `json:"customer_id" db:"customer_id"`
	CustomerName string          `json:"customer_name" db:"customer_name"`
	RepName      string          `json:"rep_name" db:"rep_name"`
	LastOrderAt  time.Time       `json:"last_order_at" db:"last_order_at"`
	Orders       int             `json:"orders" db:"orders"`
	Net          decimal.Decimal `json:"net" db:"net"`
	DaysSince    int             `json:"days_since" db:"-"`
}

type VendorScorecardRow struct {
	Brand       string           `json:"brand" db:"brand"`
	Units       float64          `json:"units" db:"units"`
	Net         decimal.Decimal  `json:"net" db:"net"`
	Margin      decimal.Decimal  `json:"margin" db:"margin"`
	PreviousNet decimal.Decimal  `json:"previous_net" db:"previous_net"`
	MarginPct   decimal.Decimal  `json:"margin_pct" db:"-"`
	GrowthPct   *decimal.Decimal `json:"growth_pct" db:"-"`
}
