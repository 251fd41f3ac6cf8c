// backend-go/internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a salon account.
type Customer struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	RepID   *int64 `json:"rep_id,omitempty" db:"rep_id"`
	RepName string `json:"rep_name,omitempty" db:"rep_name"`
}

// Product represents a sellable item synced from the storefront.
type Product struct {
	ID       int64           `json:"id" db:"id"`
	SKU      string          `json:"sku" db:"sku"`
	Title    string          `json:"title" db:"title"`
	Brand    string          `json:"brand" db:"brand"`
	PackSize int             `json:"pack_size" db:"pack_size"`
	UnitCost decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// Supplier as known by the warehouse system.
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is a warehouse stock location.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PAR is an agreed standing monthly quantity for a customer and product.
type PAR struct {
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	SKU        string    `json:"sku" db:"sku"`
	Quantity   int       `json:"quantity" db:"quantity"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ProductUnits is the net consumption of one product by one customer inside
// a window. Refunds dated inside the window are already subtracted.
type ProductUnits struct {
	ProductID     int64           `db:"product_id"`
	SKU           string          `db:"sku"`
	Title         string          `db:"title"`
	Brand         string          `db:"brand"`
	PackSize      int             `db:"pack_size"`
	UnitCost      decimal.Decimal `db:"unit_cost"`
	UnitsSold     float64         `db:"units_sold"`
	UnitsRefunded float64         `db:"units_refunded"`
}

// NetUnits never goes below zero; a window with more refunds than sales
// consumed nothing.
func (p ProductUnits) NetUnits() float64 {
	net := p.UnitsSold - p.UnitsRefunded
	if net < 0 {
		return 0
	}
	return net
}

// SKUUnits is the net units sold for one SKU inside a window.
type SKUUnits struct {
	SKU           string  `db:"sku"`
	UnitsSold     float64 `db:"units_sold"`
	UnitsRefunded float64 `db:"units_refunded"`
}

func (s SKUUnits) NetUnits() float64 {
	net := s.UnitsSold - s.UnitsRefunded
	if net < 0 {
		return 0
	}
	return net
}

// StockPosition is the warehouse view of one SKU at one location. Sold30,
// Sold60 and the out-of-stock counters are the warehouse's own trailing
// statistics and may be absent.
type StockPosition struct {
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	OnHand           float64         `json:"on_hand"`
	InOrderBook      float64         `json:"in_order_book"`
	Due              float64         `json:"due"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	PackSize         int             `json:"pack_size"`
	MOQ              int             `json:"moq"`
	Sold30           *float64        `json:"sold_30,omitempty"`
	Sold60           *float64        `json:"sold_60,omitempty"`
	OutOfStockDays30 float64         `json:"out_of_stock_days_30"`
	OutOfStockDays60 float64         `json:"out_of_stock_days_60"`
}

// PurchaseOrderLine is a single SKU quantity on a purchase order draft.
type PurchaseOrderLine struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderDraft is sent to the warehouse system to open a purchase order.
type PurchaseOrderDraft struct {
	SupplierID string              `json:"supplier_id"`
	LocationID string              `json:"location_id"`
	Reference  string              `json:"reference"`
	Lines      []PurchaseOrderLine `json:"lines"`
}

// PurchaseOrderReceipt is the warehouse acknowledgement of a created order.
type PurchaseOrderReceipt struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	LineCount int    `json:"line_count"`
}

// Outcome statuses for batch writes.
const (
	OutcomeSaved   = "saved"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// ItemOutcome reports what happened to one item of a batch write. Batches are
// not transactional, so a response may mix saved and failed items.
type ItemOutcome struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
