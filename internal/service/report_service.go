package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/salescrm/backend-go/internal/cache"
	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/report"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository"
)

// Report names, also used as cache key segments and route names.
const (
	ReportSalesByCustomer = "sales-by-customer"
	ReportGap             = "gap"
	ReportRepScorecard    = "rep-scorecard"
	ReportDropoff         = "drop-off"
	ReportVendorScorecard = "vendor-scorecard"
)

const (
	defaultReportDays   = 30
	defaultDropoffDays  = 365
	defaultInactiveDays = 60
)

type ReportService struct {
	repo  repository.ReportRepository
	cache cache.ReportCache
	loc   *time.Location
	clock Clock
}

func NewReportService(repo repository.ReportRepository, cacheImpl cache.ReportCache, loc *time.Location, clock Clock) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &ReportService{repo: repo, cache: cacheImpl, loc: loc, clock: clock}
}

func (s *ReportService) SalesByCustomer(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByCustomerRow, error) {
	filter, err := s.normalize(filter, defaultReportDays)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, ReportSalesByCustomer, filter, func() ([]domain.SalesByCustomerRow, error) {
		rows, err := s.repo.SalesByCustomer(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].MarginPct = report.MarginPct(rows[i].Margin, rows[i].Net)
		}
		return rows, nil
	})
}

func (s *ReportService) Gap(ctx context.Context, filter domain.ReportFilter) ([]domain.GapRow, error) {
	filter, err := s.normalize(filter, defaultReportDays)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, ReportGap, filter, func() ([]domain.GapRow, error) {
		rows, err := s.repo.Gap(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Gap = rows[i].CurrentNet.Sub(rows[i].PreviousNet)
			rows[i].GrowthPct = report.GrowthPct(rows[i].CurrentNet, rows[i].PreviousNet)
		}
		return rows, nil
	})
}

func (s *ReportService) RepScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.RepScorecardRow, error) {
	filter, err := s.normalize(filter, defaultReportDays)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, ReportRepScorecard, filter, func() ([]domain.RepScorecardRow, error) {
		rows, err := s.repo.RepScorecard(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].AttainmentPct = report.AttainmentPct(rows[i].Actual, rows[i].Target)
			rows[i].GrowthPct = report.GrowthPct(rows[i].Actual, rows[i].PreviousNet)
		}
		return rows, nil
	})
}

// Dropoff lists customers who bought in the lookback window but have not
// ordered in the last InactiveDays.
func (s *ReportService) Dropoff(ctx context.Context, filter domain.ReportFilter) ([]domain.DropoffRow, error) {
	filter, err := s.normalize(filter, defaultDropoffDays)
	if err != nil {
		return nil, err
	}
	if filter.InactiveDays < 0 {
		return nil, fmt.Errorf("%w: inactive_days must not be negative", domain.ErrInvalidArgument)
	}
	if filter.InactiveDays == 0 {
		filter.InactiveDays = defaultInactiveDays
	}
	cutoff := filter.End.AddDate(0, 0, -filter.InactiveDays)
	now := s.clock().In(s.loc)

	return cached(ctx, s.cache, ReportDropoff, filter, func() ([]domain.DropoffRow, error) {
		rows, err := s.repo.Dropoff(ctx, filter, cutoff)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].DaysSince = report.DaysSince(rows[i].LastOrderAt, now)
		}
		return rows, nil
	})
}

func (s *ReportService) VendorScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.VendorScorecardRow, error) {
	filter, err := s.normalize(filter, defaultReportDays)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, ReportVendorScorecard, filter, func() ([]domain.VendorScorecardRow, error) {
		rows, err := s.repo.VendorScorecard(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].MarginPct = report.MarginPct(rows[i].Margin, rows[i].Net)
			rows[i].GrowthPct = report.GrowthPct(rows[i].Net, rows[i].PreviousNet)
		}
		return rows, nil
	})
}

// InvalidateCache drops every cached report, e.g. after a sync run.
func (s *ReportService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// normalize fills the period defaults: End is the end of today, Start is
// defaultDays before End and the comparison period is the equally long
// period before Start.
func (s *ReportService) normalize(filter domain.ReportFilter, defaultDays int) (domain.ReportFilter, error) {
	if filter.End.IsZero() {
		now := s.clock().In(s.loc)
		filter.End = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.loc)
	}
	if filter.Start.IsZero() {
		filter.Start = filter.End.AddDate(0, 0, -defaultDays)
	}
	if !filter.Start.Before(filter.End) {
		return filter, fmt.Errorf("%w: start must be before end", domain.ErrInvalidArgument)
	}

	if filter.CompareStart.IsZero() || filter.CompareEnd.IsZero() {
		filter.CompareStart, filter.CompareEnd = report.PreviousPeriod(filter.Start, filter.End)
	}
	if !filter.CompareStart.Before(filter.CompareEnd) {
		return filter, fmt.Errorf("%w: compare_start must be before compare_end", domain.ErrInvalidArgument)
	}
	return filter, nil
}

// cached serves rows from the report cache, loading and storing them on a
// miss. Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, c cache.ReportCache, name string, filter domain.ReportFilter, load func() ([]T, error)) ([]T, error) {
	var rows []T
	if hit, err := c.Get(ctx, name, filter, &rows); err == nil && hit {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Str("report", name).Msg("reports: cache get failed")
	}

	rows, err := load()
	if err != nil {
		return nil, fmt.Errorf("%s report: %w", name, err)
	}
	if rows == nil {
		rows = make([]T, 0)
	}

	if err := c.Set(ctx, name, filter, rows); err != nil {
		log.Warn().Err(err).Str("report", name).Msg("reports: cache set failed")
	}
	return rows, nil
}
