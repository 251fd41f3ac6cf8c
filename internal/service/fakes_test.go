package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/storage"
)

// fixedClock pins "now" to 15 October 2026, 11:00 UTC.
func fixedClock() time.Time {
	return time.Date(2026, time.October, 15, 11, 0, 0, 0, time.UTC)
}

func testDefaults() Defaults {
	return Defaults{
		SafetyMargin:         0.15,
		PurchaseSafetyMargin: 0,
		CoverageMonths:       1,
		HorizonDays:          30,
		LookbackDays:         60,
		PackSize:             1,
		Location:             time.UTC,
	}
}

type fakeSales struct {
	customer    *domain.Customer
	customerErr error
	units       []domain.ProductUnits
	unitsErr    error
	skuUnits    []domain.SKUUnits
	skuErr      error
	brands      []string

	gotStart, gotEnd time.Time
	gotLocation      string
	gotSKUs          []string
}

func (f *fakeSales) CustomerBrandUnits(ctx context.Context, customerID int64, brand string, start, end time.Time) ([]domain.ProductUnits, error) {
	f.gotStart, f.gotEnd = start, end
	return f.units, f.unitsErr
}

func (f *fakeSales) SKUUnits(ctx context.Context, skus []string, locationID string, start, end time.Time) ([]domain.SKUUnits, error) {
	f.gotStart, f.gotEnd = start, end
	f.gotSKUs = skus
	f.gotLocation = locationID
	return f.skuUnits, f.skuErr
}

func (f *fakeSales) Brands(ctx context.Context, customerID int64) ([]string, error) {
	return f.brands, nil
}

func (f *fakeSales) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	if f.customer != nil {
		return f.customer, nil
	}
	return &domain.Customer{ID: customerID, Name: "Salon"}, nil
}

type fakePARs struct {
	pars     []domain.PAR
	listErr  error
	products map[string]int64
	failFor  map[int64]error

	saved []domain.PAR
}

func (f *fakePARs) ListPARs(ctx context.Context, customerID int64, brand string) ([]domain.PAR, error) {
	return f.pars, f.listErr
}

func (f *fakePARs) UpsertPAR(ctx context.Context, par domain.PAR) error {
	if err := f.failFor[par.ProductID]; err != nil {
		return err
	}
	f.saved = append(f.saved, par)
	return nil
}

func (f *fakePARs) ProductIDBySKU(ctx context.Context, sku string) (int64, error) {
	id, ok := f.products[sku]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

type fakeWarehouse struct {
	mu sync.Mutex

	positions    map[string]domain.StockPosition
	stockErr     error
	suppliers    []domain.Supplier
	suppliersErr error
	locations    []domain.Location
	catalogue    []string
	catalogueErr error
	receipt      *domain.PurchaseOrderReceipt
	createErr    error

	gotDraft *domain.PurchaseOrderDraft
	gotKey   string
}

func (f *fakeWarehouse) StockPositions(ctx context.Context, locationID string, skus []string) (map[string]domain.StockPosition, error) {
	return f.positions, f.stockErr
}

func (f *fakeWarehouse) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	return f.suppliers, f.suppliersErr
}

func (f *fakeWarehouse) Locations(ctx context.Context) ([]domain.Location, error) {
	return f.locations, nil
}

func (f *fakeWarehouse) SupplierSKUs(ctx context.Context, supplierID string) ([]string, error) {
	return f.catalogue, f.catalogueErr
}

func (f *fakeWarehouse) CreatePurchaseOrder(ctx context.Context, draft domain.PurchaseOrderDraft, idempotencyKey string) (*domain.PurchaseOrderReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotDraft = &draft
	f.gotKey = idempotencyKey
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.receipt, nil
}

type fakeReportRepo struct {
	calls     int
	sales     []domain.SalesByCustomerRow
	gap       []domain.GapRow
	reps      []domain.RepScorecardRow
	dropoff   []domain.DropoffRow
	vendors   []domain.VendorScorecardRow
	err       error
	gotFilter domain.ReportFilter
	gotCutoff time.Time
}

func (f *fakeReportRepo) SalesByCustomer(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByCustomerRow, error) {
	f.calls++
	f.gotFilter = filter
	return f.sales, f.err
}

func (f *fakeReportRepo) Gap(ctx context.Context, filter domain.ReportFilter) ([]domain.GapRow, error) {
	f.calls++
	f.gotFilter = filter
	return f.gap, f.err
}

func (f *fakeReportRepo) RepScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.RepScorecardRow, error) {
	f.calls++
	f.gotFilter = filter
	return f.reps, f.err
}

func (f *fakeReportRepo) Dropoff(ctx context.Context, filter domain.ReportFilter, cutoff time.Time) ([]domain.DropoffRow, error) {
	f.calls++
	f.gotFilter = filter
	f.gotCutoff = cutoff
	return f.dropoff, f.err
}

func (f *fakeReportRepo) VendorScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.VendorScorecardRow, error) {
	f.calls++
	f.gotFilter = filter
	return f.vendors, f.err
}

// memoryReportCache is a map-backed cache that can be told to fail.
type memoryReportCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func (m *memoryReportCache) Get(ctx context.Context, report string, filter domain.ReportFilter, out interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	payload, ok := m.entries[report+filter.Start.String()+filter.End.String()]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, out)
}

func (m *memoryReportCache) Set(ctx context.Context, report string, filter domain.ReportFilter, rows interface{}) error {
	if m.setErr != nil {
		return m.setErr
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[report+filter.Start.String()+filter.End.String()] = payload
	return nil
}

func (m *memoryReportCache) InvalidateAll(ctx context.Context) error {
	m.entries = nil
	return nil
}

type fakeStorage struct {
	uploads   map[string][]byte
	downloads []string
	objects   []storage.ObjectInfo
	err       error
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return f.objects, f.err
}

func (f *fakeStorage) DownloadObject(ctx context.Context, key string, destPath string) error {
	if f.err != nil {
		return f.err
	}
	f.downloads = append(f.downloads, key+"->"+destPath)
	return nil
}

func (f *fakeStorage) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return nil
}
