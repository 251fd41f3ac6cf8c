// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

// SalesHistoryRepository aggregates order history. All windows are half open,
// [start, end), and refunds dated inside the window are subtracted.
type SalesHistoryRepository interface {
	CustomerBrandUnits(ctx context.Context, customerID int64, brand string, start, end time.Time) ([]domain.ProductUnits, error)
	SKUUnits(ctx context.Context, skus []string, locationID string, start, end time.Time) ([]domain.SKUUnits, error)
	Brands(ctx context.Context, customerID int64) ([]string, error)
	GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error)
}

type PARRepository interface {
	ListPARs(ctx context.Context, customerID int64, brand string) ([]domain.PAR, error)
	UpsertPAR(ctx context.Context, par domain.PAR) error
	ProductIDBySKU(ctx context.Context, sku string) (int64, error)
}

type ReportRepository interface {
	SalesByCustomer(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByCustomerRow, error)
	Gap(ctx context.Context, filter domain.ReportFilter) ([]domain.GapRow, error)
	RepScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.RepScorecardRow, error)
	Dropoff(ctx context.Context, filter domain.ReportFilter, cutoff time.Time) ([]domain.DropoffRow, error)
	VendorScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.VendorScorecardRow, error)
}
