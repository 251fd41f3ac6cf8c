package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
	"github.com/andresuchdata/salescrm/backend-go/internal/metrics"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository"
)

// PARRequest selects a customer and brand and optionally overrides the
// forecast parameters. A nil override uses the configured default; a
// non-positive PackSize uses each product's own pack size.
type PARRequest struct {
	CustomerID     int64
	Brand          string
	Selection      forecast.Selection
	SafetyMargin   *float64
	CoverageMonths *float64
	PackSize       int
	SortField      string
	SortDesc       bool
}

type PARReport struct {
	Customer       domain.Customer `json:"customer"`
	Brand          string          `json:"brand"`
	Timeframe      string          `json:"timeframe"`
	Window         forecast.Window `json:"window"`
	SafetyMargin   float64         `json:"safety_margin"`
	CoverageMonths float64         `json:"coverage_months"`
	Rows           []forecast.Row  `json:"rows"`
}

// PARItem is one accepted suggestion to persist. ProductID wins over SKU when
// both are set.
type PARItem struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

type DemandService struct {
	sales    repository.SalesHistoryRepository
	pars     repository.PARRepository
	defaults Defaults
	clock    Clock
	metrics  *metrics.Metrics
}

func NewDemandService(sales repository.SalesHistoryRepository, pars repository.PARRepository, defaults Defaults, clock Clock, m *metrics.Metrics) *DemandService {
	return &DemandService{
		sales:    sales,
		pars:     pars,
		defaults: defaults,
		clock:    clock,
		metrics:  m,
	}
}

// PARSuggestions computes the Demand & PAR report for one customer and brand.
func (s *DemandService) PARSuggestions(ctx context.Context, req PARRequest) (*PARReport, error) {
	brand := strings.TrimSpace(req.Brand)
	if req.CustomerID <= 0 {
		return nil, missing("customer is required")
	}
	if brand == "" {
		return nil, missing("brand is required")
	}

	margin, err := nonNegativeParam("safety_margin", req.SafetyMargin, s.defaults.SafetyMargin)
	if err != nil {
		return nil, err
	}
	coverage, err := nonNegativeParam("coverage_months", req.CoverageMonths, s.defaults.CoverageMonths)
	if err != nil {
		return nil, err
	}

	window, err := forecast.ResolveWindow(req.Selection, s.defaults.now(s.clock))
	if err != nil {
		return nil, err
	}

	customer, err := s.sales.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.metrics.ForecastUnavailable("par")
		return nil, unavailable(domain.ErrForecastUnavailable, "load customer", err)
	}

	units, err := s.sales.CustomerBrandUnits(ctx, req.CustomerID, brand, window.Start, window.End)
	if err != nil {
		s.metrics.ForecastUnavailable("par")
		return nil, unavailable(domain.ErrForecastUnavailable, "load sales history", err)
	}

	current := s.currentPARs(ctx, req.CustomerID, brand)
	horizon := forecast.DaysFromMonths(coverage)

	rows := make([]forecast.Row, 0, len(units))
	for _, u := range units {
		pack := req.PackSize
		if pack <= 0 {
			pack = u.PackSize
		}
		if pack <= 0 {
			pack = s.defaults.PackSize
		}

		net := u.NetUnits()
		obs := forecast.Observation{Units: net, WindowDays: float64(window.Days)}
		suggestion := forecast.Suggest(forecast.SuggestionInput{
			AvgDailyRate: obs.DailyRate(),
			SafetyMargin: margin,
			HorizonDays:  horizon,
			PackSize:     pack,
		}, forecast.PARPolicy)

		unitCost := u.UnitCost
		row := forecast.NewRow(strconv.FormatInt(u.ProductID, 10), u.Title, u.SKU, net, suggestion, &unitCost)
		if qty, ok := current[u.ProductID]; ok {
			q := qty
			row.CurrentPAR = &q
		}
		rows = append(rows, row)
	}

	sortRows(rows, req.SortField, req.SortDesc)

	return &PARReport{
		Customer:       *customer,
		Brand:          brand,
		Timeframe:      string(req.Selection.Timeframe),
		Window:         window,
		SafetyMargin:   margin,
		CoverageMonths: coverage,
		Rows:           rows,
	}, nil
}

// currentPARs is best effort: the saved values are shown beside the
// suggestions but never block them.
func (s *DemandService) currentPARs(ctx context.Context, customerID int64, brand string) map[int64]int {
	pars, err := s.pars.ListPARs(ctx, customerID, brand)
	if err != nil {
		log.Warn().Err(err).Int64("customer_id", customerID).Str("brand", brand).Msg("demand: load current pars failed")
		return nil
	}
	current := make(map[int64]int, len(pars))
	for _, p := range pars {
		current[p.ProductID] = p.Quantity
	}
	return current
}

// Brands lists the brands a customer has bought, for the report selector.
func (s *DemandService) Brands(ctx context.Context, customerID int64) ([]string, error) {
	if customerID <= 0 {
		return nil, missing("customer is required")
	}
	brands, err := s.sales.Brands(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if brands == nil {
		brands = make([]string, 0)
	}
	return brands, nil
}

// SavePARs upserts every item independently. A failing item does not stop or
// roll back the others; the outcome of each is reported.
func (s *DemandService) SavePARs(ctx context.Context, customerID int64, items []PARItem) ([]domain.ItemOutcome, error) {
	if customerID <= 0 {
		return nil, missing("customer is required")
	}
	if len(items) == 0 {
		return nil, missing("no PAR items supplied")
	}

	outcomes := make([]domain.ItemOutcome, 0, len(items))
	for _, item := range items {
		outcome := s.savePAR(ctx, customerID, item)
		s.metrics.PARSave(outcome.Status)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *DemandService) savePAR(ctx context.Context, customerID int64, item PARItem) domain.ItemOutcome {
	key := strings.TrimSpace(item.SKU)
	if key == "" {
		key = strconv.FormatInt(item.ProductID, 10)
	}
	failed := func(err error) domain.ItemOutcome {
		log.Warn().Err(err).Int64("customer_id", customerID).Str("item", key).Msg("demand: save par failed")
		return domain.ItemOutcome{Key: key, Status: domain.OutcomeFailed, Error: err.Error()}
	}

	if item.Quantity < 0 {
		return failed(fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidArgument))
	}

	productID := item.ProductID
	if productID <= 0 {
		if strings.TrimSpace(item.SKU) == "" {
			return failed(missing("product or sku is required"))
		}
		id, err := s.pars.ProductIDBySKU(ctx, strings.TrimSpace(item.SKU))
		if err != nil {
			return failed(err)
		}
		productID = id
	}

	if err := s.pars.UpsertPAR(ctx, domain.PAR{CustomerID: customerID, ProductID: productID, SKU: item.SKU, Quantity: item.Quantity}); err != nil {
		return failed(err)
	}
	return domain.ItemOutcome{Key: key, Status: domain.OutcomeSaved}
}
