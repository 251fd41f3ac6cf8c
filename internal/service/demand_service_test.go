package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
	"github.com/andresuchdata/salescrm/backend-go/internal/metrics"
)

func lumenUnits() []domain.ProductUnits {
	return []domain.ProductUnits{
		{ProductID: 11, SKU: "BR-100", Title: "Bond Repair Shampoo", Brand: "Lumen", PackSize: 10, UnitCost: decimal.RequireFromString("3.35"), UnitsSold: 50, UnitsRefunded: 5},
		{ProductID: 12, SKU: "BR-200", Title: "Bond Repair Mask", Brand: "Lumen", PackSize: 6, UnitCost: decimal.RequireFromString("5.10")},
		{ProductID: 13, SKU: "BR-300", Title: "Bond Repair Oil", Brand: "Lumen", UnitCost: decimal.RequireFromString("7.00"), UnitsSold: 3},
	}
}

func newDemandService(sales *fakeSales, pars *fakePARs) *DemandService {
	return NewDemandService(sales, pars, testDefaults(), fixedClock, metrics.New())
}

func rowBySKU(t *testing.T, rows []forecast.Row, sku string) forecast.Row {
	t.Helper()
	for _, r := range rows {
		if r.SKU == sku {
			return r
		}
	}
	t.Fatalf("row %s not found", sku)
	return forecast.Row{}
}

func TestDemandService_PARSuggestions(t *testing.T) {
	sales := &fakeSales{units: lumenUnits()}
	pars := &fakePARs{pars: []domain.PAR{{CustomerID: 7, ProductID: 11, SKU: "BR-100", Quantity: 50}}}
	svc := newDemandService(sales, pars)

	report, err := svc.PARSuggestions(context.Background(), PARRequest{
		CustomerID: 7,
		Brand:      " Lumen ",
		Selection:  forecast.Selection{Timeframe: forecast.CustomDays, Days: 30},
	})
	require.NoError(t, err)

	assert.Equal(t, "Lumen", report.Brand)
	assert.Equal(t, 30, report.Window.Days)
	assert.Equal(t, fixedClock().AddDate(0, 0, -30), sales.gotStart)
	assert.Equal(t, fixedClock(), sales.gotEnd)
	assert.Equal(t, 0.15, report.SafetyMargin)
	require.Len(t, report.Rows, 3)

	shampoo := rowBySKU(t, report.Rows, "BR-100")
	assert.Equal(t, "11", shampoo.ItemKey)
	assert.Equal(t, 45.0, shampoo.UnitsInWindow, "refunds are netted off")
	assert.InDelta(t, 1.5, shampoo.AvgRate, 1e-12)
	assert.InDelta(t, 45.0, shampoo.MonthlyRate, 1e-9)
	assert.Equal(t, 60, shampoo.SuggestedQty)
	require.NotNil(t, shampoo.ExtendedCost)
	assert.Equal(t, "201", shampoo.ExtendedCost.String())
	require.NotNil(t, shampoo.CurrentPAR)
	assert.Equal(t, 50, *shampoo.CurrentPAR)

	mask := rowBySKU(t, report.Rows, "BR-200")
	assert.Equal(t, 0, mask.SuggestedQty, "no demand, no PAR")
	assert.Nil(t, mask.CurrentPAR)

	oil := rowBySKU(t, report.Rows, "BR-300")
	assert.Equal(t, 1, oil.PackSize, "missing product pack size uses the default")
	assert.Equal(t, 4, oil.SuggestedQty)
}

func TestDemandService_PARSuggestions_MonthToDate(t *testing.T) {
	sales := &fakeSales{units: []domain.ProductUnits{{ProductID: 11, SKU: "BR-100", PackSize: 1, UnitsSold: 15}}}
	svc := newDemandService(sales, &fakePARs{})

	report, err := svc.PARSuggestions(context.Background(), PARRequest{
		CustomerID: 7,
		Brand:      "Lumen",
		Selection:  forecast.Selection{Timeframe: forecast.MonthToDate},
	})
	require.NoError(t, err)

	assert.Equal(t, 15, report.Window.Days)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), sales.gotStart)
	require.Len(t, report.Rows, 1)
	assert.InDelta(t, 30.0, report.Rows[0].MonthlyRate, 1e-9)
	assert.Equal(t, 35, report.Rows[0].SuggestedQty)
}

func TestDemandService_PARSuggestions_Overrides(t *testing.T) {
	sales := &fakeSales{units: lumenUnits()[:1]}
	svc := newDemandService(sales, &fakePARs{})
	margin := 0.0
	coverage := 2.0

	report, err := svc.PARSuggestions(context.Background(), PARRequest{
		CustomerID:     7,
		Brand:          "Lumen",
		Selection:      forecast.Selection{Timeframe: forecast.CustomDays, Days: 30},
		SafetyMargin:   &margin,
		CoverageMonths: &coverage,
		PackSize:       4,
	})
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, 4, report.Rows[0].PackSize)
	assert.Equal(t, 92, report.Rows[0].SuggestedQty)
}

func TestDemandService_PARSuggestions_Errors(t *testing.T) {
	negative := -0.1

	tests := []struct {
		name    string
		sales   *fakeSales
		req     PARRequest
		wantErr error
	}{
		{
			name:    "no customer",
			sales:   &fakeSales{},
			req:     PARRequest{Brand: "Lumen", Selection: forecast.Selection{Timeframe: forecast.LastMonth}},
			wantErr: domain.ErrMissingSelection,
		},
		{
			name:    "no brand",
			sales:   &fakeSales{},
			req:     PARRequest{CustomerID: 7, Brand: "  ", Selection: forecast.Selection{Timeframe: forecast.LastMonth}},
			wantErr: domain.ErrMissingSelection,
		},
		{
			name:    "unknown timeframe",
			sales:   &fakeSales{},
			req:     PARRequest{CustomerID: 7, Brand: "Lumen", Selection: forecast.Selection{Timeframe: "fortnight"}},
			wantErr: forecast.ErrInvalidTimeframe,
		},
		{
			name:    "negative margin",
			sales:   &fakeSales{},
			req:     PARRequest{CustomerID: 7, Brand: "Lumen", SafetyMargin: &negative, Selection: forecast.Selection{Timeframe: forecast.LastMonth}},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "unknown customer",
			sales:   &fakeSales{customerErr: domain.ErrNotFound},
			req:     PARRequest{CustomerID: 7, Brand: "Lumen", Selection: forecast.Selection{Timeframe: forecast.LastMonth}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "history source down",
			sales:   &fakeSales{unitsErr: errors.New("connection refused")},
			req:     PARRequest{CustomerID: 7, Brand: "Lumen", Selection: forecast.Selection{Timeframe: forecast.LastMonth}},
			wantErr: domain.ErrForecastUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newDemandService(tt.sales, &fakePARs{})
			report, err := svc.PARSuggestions(context.Background(), tt.req)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDemandService_PARSuggestions_CurrentPARIsBestEffort(t *testing.T) {
	svc := newDemandService(&fakeSales{units: lumenUnits()}, &fakePARs{listErr: errors.New("timeout")})

	report, err := svc.PARSuggestions(context.Background(), PARRequest{
		CustomerID: 7,
		Brand:      "Lumen",
		Selection:  forecast.Selection{Timeframe: forecast.CustomDays, Days: 30},
	})
	require.NoError(t, err)
	for _, row := range report.Rows {
		assert.Nil(t, row.CurrentPAR)
	}
}

func TestDemandService_Brands(t *testing.T) {
	svc := newDemandService(&fakeSales{}, &fakePARs{})

	brands, err := svc.Brands(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, brands)
	assert.Empty(t, brands)

	_, err = svc.Brands(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrMissingSelection)
}

func TestDemandService_SavePARs(t *testing.T) {
	pars := &fakePARs{
		products: map[string]int64{"BR-200": 12},
		failFor:  map[int64]error{14: errors.New("deadlock detected")},
	}
	svc := newDemandService(&fakeSales{}, pars)

	outcomes, err := svc.SavePARs(context.Background(), 7, []PARItem{
		{ProductID: 11, SKU: "BR-100", Quantity: 60},
		{SKU: "BR-200", Quantity: 12},
		{SKU: "NOPE", Quantity: 5},
		{ProductID: 13, Quantity: -1},
		{ProductID: 14, SKU: "BR-400", Quantity: 6},
		{Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 6)

	statuses := make([]string, len(outcomes))
	for i, o := range outcomes {
		statuses[i] = o.Status
	}
	assert.Equal(t, []string{
		domain.OutcomeSaved,
		domain.OutcomeSaved,
		domain.OutcomeFailed,
		domain.OutcomeFailed,
		domain.OutcomeFailed,
		domain.OutcomeFailed,
	}, statuses)

	assert.Equal(t, "13", outcomes[3].Key)
	assert.Contains(t, outcomes[4].Error, "deadlock")

	require.Len(t, pars.saved, 2, "failures do not roll back earlier items")
	assert.Equal(t, domain.PAR{CustomerID: 7, ProductID: 11, SKU: "BR-100", Quantity: 60}, pars.saved[0])
	assert.Equal(t, int64(12), pars.saved[1].ProductID)
}

func TestDemandService_SavePARs_RequiresSelection(t *testing.T) {
	svc := newDemandService(&fakeSales{}, &fakePARs{})

	_, err := svc.SavePARs(context.Background(), 0, []PARItem{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrMissingSelection)

	_, err = svc.SavePARs(context.Background(), 7, nil)
	assert.ErrorIs(t, err, domain.ErrMissingSelection)
}
