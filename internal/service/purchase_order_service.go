package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
	"github.com/andresuchdata/salescrm/backend-go/internal/metrics"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository"
)

// Warehouse is the inventory system as seen by the planner.
type Warehouse interface {
	StockPositions(ctx context.Context, locationID string, skus []string) (map[string]domain.StockPosition, error)
	Suppliers(ctx context.Context) ([]domain.Supplier, error)
	Locations(ctx context.Context) ([]domain.Location, error)
	SupplierSKUs(ctx context.Context, supplierID string) ([]string, error)
	CreatePurchaseOrder(ctx context.Context, draft domain.PurchaseOrderDraft, idempotencyKey string) (*domain.PurchaseOrderReceipt, error)
}

// PurchaseForecastRequest selects a supplier, a location and optionally an
// explicit SKU list; without one the supplier's catalogue is used.
type PurchaseForecastRequest struct {
	SupplierID   string
	LocationID   string
	SKUs         []string
	LookbackDays int
	HorizonDays  *float64
	SafetyMargin *float64
	SortField    string
	SortDesc     bool
}

type PurchaseForecast struct {
	SupplierID   string          `json:"supplier_id"`
	LocationID   string          `json:"location_id"`
	LookbackDays int             `json:"lookback_days"`
	HorizonDays  float64         `json:"horizon_days"`
	SafetyMargin float64         `json:"safety_margin"`
	Window       forecast.Window `json:"window"`
	Rows         []forecast.Row  `json:"rows"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

type PurchaseOptions struct {
	Suppliers []domain.Supplier `json:"suppliers"`
	Locations []domain.Location `json:"locations"`
}

type PurchaseOrderResult struct {
	Receipt  *domain.PurchaseOrderReceipt `json:"receipt"`
	Outcomes []domain.ItemOutcome         `json:"outcomes"`
}

type PurchaseOrderService struct {
	warehouse Warehouse
	sales     repository.SalesHistoryRepository
	defaults  Defaults
	clock     Clock
	metrics   *metrics.Metrics
}

func NewPurchaseOrderService(wh Warehouse, sales repository.SalesHistoryRepository, defaults Defaults, clock Clock, m *metrics.Metrics) *PurchaseOrderService {
	return &PurchaseOrderService{
		warehouse: wh,
		sales:     sales,
		defaults:  defaults,
		clock:     clock,
		metrics:   m,
	}
}

// Forecast builds the purchase ordering plan. Stock positions and order
// history are fetched concurrently. A warehouse failure makes the forecast
// unavailable; an order history failure only drops the exact window and the
// warehouse's own 30/60 day figures are used instead.
func (s *PurchaseOrderService) Forecast(ctx context.Context, req PurchaseForecastRequest) (*PurchaseForecast, error) {
	supplierID := strings.TrimSpace(req.SupplierID)
	locationID := strings.TrimSpace(req.LocationID)
	if supplierID == "" {
		return nil, missing("supplier is required")
	}
	if locationID == "" {
		return nil, missing("location is required")
	}

	margin, err := nonNegativeParam("safety_margin", req.SafetyMargin, s.defaults.PurchaseSafetyMargin)
	if err != nil {
		return nil, err
	}
	horizon, err := nonNegativeParam("horizon_days", req.HorizonDays, s.defaults.HorizonDays)
	if err != nil {
		return nil, err
	}

	lookback := req.LookbackDays
	if lookback < 0 {
		return nil, fmt.Errorf("%w: lookback_days must not be negative", domain.ErrInvalidArgument)
	}
	if lookback == 0 {
		lookback = s.defaults.LookbackDays
	}

	skus := normalizeSKUs(req.SKUs)
	if len(skus) == 0 {
		catalogue, err := s.warehouse.SupplierSKUs(ctx, supplierID)
		if err != nil {
			s.metrics.ForecastUnavailable("purchasing")
			return nil, unavailable(domain.ErrForecastUnavailable, "load supplier catalogue", err)
		}
		skus = normalizeSKUs(catalogue)
	}
	if len(skus) == 0 {
		return nil, missing("no SKUs selected")
	}

	window, err := forecast.ResolveWindow(forecast.Selection{Timeframe: forecast.CustomDays, Days: lookback}, s.defaults.now(s.clock))
	if err != nil {
		return nil, err
	}

	var (
		positions map[string]domain.StockPosition
		exact     map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.warehouse.StockPositions(gctx, locationID, skus)
		if err != nil {
			return err
		}
		positions = p
		return nil
	})
	g.Go(func() error {
		units, err := s.sales.SKUUnits(gctx, skus, locationID, window.Start, window.End)
		if err != nil {
			log.Warn().Err(err).Str("location_id", locationID).Msg("purchasing: order history unavailable, using warehouse figures")
			return nil
		}
		exact = make(map[string]float64, len(units))
		for _, u := range units {
			exact[u.SKU] = u.NetUnits()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.ForecastUnavailable("purchasing")
		return nil, unavailable(domain.ErrForecastUnavailable, "load stock positions", err)
	}

	result := &PurchaseForecast{
		SupplierID:   supplierID,
		LocationID:   locationID,
		LookbackDays: window.Days,
		HorizonDays:  horizon,
		SafetyMargin: margin,
		Window:       window,
		Rows:         make([]forecast.Row, 0, len(skus)),
		TotalCost:    decimal.Zero,
	}

	for _, sku := range skus {
		pos, known := positions[sku]

		history := forecast.History{
			Sold30:           pos.Sold30,
			Sold60:           pos.Sold60,
			OutOfStockDays30: pos.OutOfStockDays30,
			OutOfStockDays60: pos.OutOfStockDays60,
		}
		if units, ok := exact[sku]; ok {
			history.Exact = &forecast.Observation{
				Units:          units,
				WindowDays:     float64(window.Days),
				OutOfStockDays: history.OutOfStockDaysFor(window.Days),
			}
		}
		obs, _ := history.Observation(window.Days)

		suggestion := forecast.Suggest(forecast.SuggestionInput{
			AvgDailyRate: obs.DailyRate(),
			SafetyMargin: margin,
			HorizonDays:  horizon,
			OnHand:       pos.OnHand,
			InOrderBook:  pos.InOrderBook,
			Due:          pos.Due,
			PackSize:     pos.PackSize,
			MOQ:          pos.MOQ,
		}, forecast.PurchaseOrderPolicy)

		name := pos.Name
		if name == "" {
			name = sku
		}

		var unitCost *decimal.Decimal
		if known {
			cost := pos.UnitCost
			unitCost = &cost
		}

		row := forecast.NewRow(sku, name, sku, obs.Units, suggestion, unitCost)
		row.OnHand = pos.OnHand
		row.Incoming = pos.InOrderBook + pos.Due
		if row.ExtendedCost != nil {
			result.TotalCost = result.TotalCost.Add(*row.ExtendedCost)
		}
		result.Rows = append(result.Rows, row)
	}

	sortRows(result.Rows, req.SortField, req.SortDesc)
	return result, nil
}

// Options returns the supplier and location selectors, fetched concurrently.
func (s *PurchaseOrderService) Options(ctx context.Context) (*PurchaseOptions, error) {
	var opts PurchaseOptions

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		suppliers, err := s.warehouse.Suppliers(gctx)
		if err != nil {
			return fmt.Errorf("load suppliers: %w", err)
		}
		opts.Suppliers = suppliers
		return nil
	})
	g.Go(func() error {
		locations, err := s.warehouse.Locations(gctx)
		if err != nil {
			return fmt.Errorf("load locations: %w", err)
		}
		opts.Locations = locations
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, unavailable(domain.ErrUpstreamUnavailable, "purchasing options", err)
	}

	if opts.Suppliers == nil {
		opts.Suppliers = make([]domain.Supplier, 0)
	}
	if opts.Locations == nil {
		opts.Locations = make([]domain.Location, 0)
	}
	return &opts, nil
}

// CreatePurchaseOrder forwards the lines with a positive quantity to the
// warehouse as one order. Other lines are reported as skipped.
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, draft domain.PurchaseOrderDraft, idempotencyKey string) (*PurchaseOrderResult, error) {
	draft.SupplierID = strings.TrimSpace(draft.SupplierID)
	draft.LocationID = strings.TrimSpace(draft.LocationID)
	if draft.SupplierID == "" {
		return nil, missing("supplier is required")
	}
	if draft.LocationID == "" {
		return nil, missing("location is required")
	}

	outcomes := make([]domain.ItemOutcome, 0, len(draft.Lines))
	lines := make([]domain.PurchaseOrderLine, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		line.SKU = strings.TrimSpace(line.SKU)
		if line.SKU == "" || line.Quantity <= 0 {
			outcomes = append(outcomes, domain.ItemOutcome{Key: line.SKU, Status: domain.OutcomeSkipped})
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines with a positive quantity", domain.ErrInvalidArgument)
	}
	draft.Lines = lines

	receipt, err := s.warehouse.CreatePurchaseOrder(ctx, draft, idempotencyKey)
	if err != nil {
		s.metrics.PurchaseOrder("failed")
		return nil, unavailable(domain.ErrUpstreamUnavailable, "create purchase order", err)
	}
	s.metrics.PurchaseOrder("created")

	for _, line := range lines {
		outcomes = append(outcomes, domain.ItemOutcome{Key: line.SKU, Status: domain.OutcomeSaved})
	}

	log.Info().
		Str("supplier_id", draft.SupplierID).
		Str("location_id", draft.LocationID).
		Str("order_id", receipt.ID).
		Int("lines", len(lines)).
		Msg("purchasing: purchase order created")

	return &PurchaseOrderResult{Receipt: receipt, Outcomes: outcomes}, nil
}
