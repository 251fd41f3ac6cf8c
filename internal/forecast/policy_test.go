package forecast

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSuggest_PARScenario(t *testing.T) {
	rate := Observation{Units: 45, WindowDays: 30}.DailyRate()

	s := Suggest(SuggestionInput{
		AvgDailyRate: rate,
		SafetyMargin: 0.15,
		HorizonDays:  DaysFromMonths(1),
		PackSize:     10,
	}, PARPolicy)

	assert.InDelta(t, 1.5, s.AvgDailyRate, 1e-12)
	assert.InDelta(t, 45.0, MonthlyRate(s.AvgDailyRate), 1e-12)
	assert.InDelta(t, 51.75, s.ProjectedDemand, 1e-9)
	assert.Equal(t, 60, s.SuggestedQty)
}

func TestSuggest_PurchaseOrderScenario(t *testing.T) {
	in := SuggestionInput{
		AvgDailyRate: 2,
		HorizonDays:  14,
		OnHand:       20,
	}

	plain := Suggest(in, PurchaseOrderPolicy)
	assert.Equal(t, 28.0, plain.ProjectedDemand)
	assert.Equal(t, 8, plain.RawQty)
	assert.Equal(t, 8, plain.SuggestedQty)

	in.PackSize = 5
	in.MOQ = 10
	packed := Suggest(in, PurchaseOrderPolicy)
	assert.Equal(t, 8, packed.RawQty)
	assert.Equal(t, 10, packed.SuggestedQty)
}

func TestSuggest_PurchaseOrderNetsIncoming(t *testing.T) {
	s := Suggest(SuggestionInput{
		AvgDailyRate: 2,
		HorizonDays:  30,
		OnHand:       20,
		InOrderBook:  15,
		Due:          10,
	}, PurchaseOrderPolicy)

	assert.Equal(t, 15, s.SuggestedQty)

	covered := Suggest(SuggestionInput{AvgDailyRate: 1, HorizonDays: 10, OnHand: 25}, PurchaseOrderPolicy)
	assert.Equal(t, 0, covered.SuggestedQty)
}

func TestSuggest_BackorderIncreasesNeed(t *testing.T) {
	s := Suggest(SuggestionInput{AvgDailyRate: 1, HorizonDays: 10, OnHand: -5}, PurchaseOrderPolicy)
	assert.Equal(t, 15, s.SuggestedQty)
}

func TestSuggest_ZeroDemand(t *testing.T) {
	t.Run("purchase order suggests nothing", func(t *testing.T) {
		s := Suggest(SuggestionInput{HorizonDays: 30, PackSize: 6, MOQ: 12}, PurchaseOrderPolicy)
		assert.Equal(t, 0, s.SuggestedQty)
	})

	t.Run("PAR suggests nothing for a never-sold item", func(t *testing.T) {
		s := Suggest(SuggestionInput{HorizonDays: 30, PackSize: 6}, PARPolicy)
		assert.Equal(t, 0, s.SuggestedQty)
	})

	t.Run("policy can floor zero demand to one pack", func(t *testing.T) {
		p := PARPolicy
		p.FloorZeroDemand = true
		s := Suggest(SuggestionInput{HorizonDays: 30, PackSize: 6}, p)
		assert.Equal(t, 6, s.SuggestedQty)
	})
}

func TestSuggest_PARFloorsAtOnePackWithDemand(t *testing.T) {
	s := Suggest(SuggestionInput{AvgDailyRate: 0.01, HorizonDays: 30, PackSize: 12}, PARPolicy)
	assert.Equal(t, 12, s.SuggestedQty)

	noHorizon := Suggest(SuggestionInput{AvgDailyRate: 3, PackSize: 4}, PARPolicy)
	assert.Equal(t, 4, noHorizon.SuggestedQty)
}

func TestSuggest_ClampsMalformedInput(t *testing.T) {
	s := Suggest(SuggestionInput{AvgDailyRate: 1, HorizonDays: 7, PackSize: 0}, PurchaseOrderPolicy)
	assert.Equal(t, 1, s.PackSize)
	assert.Equal(t, 7, s.SuggestedQty)

	neg := Suggest(SuggestionInput{AvgDailyRate: -3, SafetyMargin: -1, HorizonDays: -7, PackSize: -2}, PARPolicy)
	assert.Equal(t, 0, neg.SuggestedQty)
	assert.Equal(t, 1, neg.PackSize)
}

func TestSuggest_IgnoresFloatNoiseWhenRounding(t *testing.T) {
	s := Suggest(SuggestionInput{AvgDailyRate: 1, HorizonDays: 10, SafetyMargin: 0.1}, PurchaseOrderPolicy)
	assert.Equal(t, 11, s.SuggestedQty)
}

func TestSuggest_MOQRoundedToPack(t *testing.T) {
	s := Suggest(SuggestionInput{AvgDailyRate: 1, HorizonDays: 2, PackSize: 4, MOQ: 9}, PurchaseOrderPolicy)
	assert.Equal(t, 12, s.SuggestedQty)
}

func TestSuggest_Properties(t *testing.T) {
	rates := []float64{0, 0.05, 0.33, 1, 2.7, 14}
	margins := []float64{0, 0.1, 0.15, 0.5}
	horizons := []float64{0, 7, 14, 30, 61}
	packs := []int{-1, 0, 1, 5, 12}
	onHands := []float64{-4, 0, 13, 200}
	policies := []ReplenishmentPolicy{PARPolicy, PurchaseOrderPolicy}

	for _, p := range policies {
		for _, rate := range rates {
			for _, pack := range packs {
				for _, onHand := range onHands {
					prevByMargin := -1
					for _, margin := range margins {
						prevByHorizon := -1
						for _, horizon := range horizons {
							in := SuggestionInput{
								AvgDailyRate: rate,
								SafetyMargin: margin,
								HorizonDays:  horizon,
								OnHand:       onHand,
								PackSize:     pack,
								MOQ:          3,
							}
							s := Suggest(in, p)

							assert.GreaterOrEqual(t, s.SuggestedQty, 0)
							assert.Zero(t, s.SuggestedQty%ClampPackSize(pack), "multiple of pack")
							assert.Equal(t, s, Suggest(in, p), "idempotent")
							assert.GreaterOrEqual(t, s.SuggestedQty, prevByHorizon, "monotonic in horizon")
							prevByHorizon = s.SuggestedQty
						}

						s := Suggest(SuggestionInput{AvgDailyRate: rate, SafetyMargin: margin, HorizonDays: 30, OnHand: onHand, PackSize: pack}, p)
						assert.GreaterOrEqual(t, s.SuggestedQty, prevByMargin, "monotonic in margin")
						prevByMargin = s.SuggestedQty
					}
				}
			}
		}
	}
}

func TestExtendCost(t *testing.T) {
	cost := decimal.RequireFromString("3.35")
	assert.True(t, decimal.RequireFromString("201").Equal(ExtendCost(cost, 60)))
	assert.True(t, ExtendCost(cost, 0).IsZero())
}
