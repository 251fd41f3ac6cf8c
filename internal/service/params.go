package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andresuchdata/salescrm/backend-go/internal/config"
	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
)

// Clock returns the current time. Services never read the wall clock
// directly so windows can be pinned in tests.
type Clock func() time.Time

// Defaults are applied to forecast parameters a caller leaves unset.
type Defaults struct {
	SafetyMargin         float64
	PurchaseSafetyMargin float64
	CoverageMonths       float64
	HorizonDays          float64
	LookbackDays         int
	PackSize             int
	Location             *time.Location
}

func DefaultsFromConfig(cfg config.ForecastConfig) Defaults {
	return Defaults{
		SafetyMargin:         cfg.SafetyMargin,
		PurchaseSafetyMargin: cfg.PurchaseSafetyMargin,
		CoverageMonths:       cfg.CoverageMonths,
		HorizonDays:          float64(cfg.HorizonDays),
		LookbackDays:         cfg.LookbackDays,
		PackSize:             cfg.PackSize,
		Location:             cfg.Location(),
	}
}

func (d Defaults) now(clock Clock) time.Time {
	if clock == nil {
		clock = time.Now
	}
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return clock().In(loc)
}

// nonNegativeParam resolves an optional parameter against its default and
// rejects negative or non-finite values.
func nonNegativeParam(name string, v *float64, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidArgument, name)
	}
	return *v, nil
}

// normalizeSKUs trims, drops blanks and removes duplicates keeping the first
// occurrence.
func normalizeSKUs(skus []string) []string {
	seen := make(map[string]struct{}, len(skus))
	out := make([]string, 0, len(skus))
	for _, sku := range skus {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		out = append(out, sku)
	}
	return out
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", domain.ErrMissingSelection, what)
}

func unavailable(base error, what string, err error) error {
	return fmt.Errorf("%w: %s: %v", base, what, err)
}

// sortRows applies the requested order, or SKU ascending when none is given.
func sortRows(rows []forecast.Row, field string, desc bool) {
	if strings.TrimSpace(field) == "" {
		field = "sku"
	}
	forecast.SortRows(rows, field, desc)
}
