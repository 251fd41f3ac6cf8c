// backend-go/internal/api/handlers/report_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

type ReportService interface {
	SalesByCustomer(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByCustomerRow, error)
	Gap(ctx context.Context, filter domain.ReportFilter) ([]domain.GapRow, error)
	RepScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.RepScorecardRow, error)
	Dropoff(ctx context.Context, filter domain.ReportFilter) ([]domain.DropoffRow, error)
	VendorScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.VendorScorecardRow, error)
}

// ReportHandler serves the sales report shells. Dates in the query are whole
// days in the reporting timezone; end dates are inclusive.
type ReportHandler struct {
	reportService ReportService
	loc           *time.Location
}

func NewReportHandler(reportService ReportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reportService: reportService, loc: loc}
}

func (h *ReportHandler) GetSalesByCustomer(c *gin.Context) {
	serveReport(c, h, h.reportService.SalesByCustomer)
}

func (h *ReportHandler) GetGap(c *gin.Context) {
	serveReport(c, h, h.reportService.Gap)
}

func (h *ReportHandler) GetRepScorecard(c *gin.Context) {
	serveReport(c, h, h.reportService.RepScorecard)
}

func (h *ReportHandler) GetDropoff(c *gin.Context) {
	serveReport(c, h, h.reportService.Dropoff)
}

func (h *ReportHandler) GetVendorScorecard(c *gin.Context) {
	serveReport(c, h, h.reportService.VendorScorecard)
}

func serveReport[T any](c *gin.Context, h *ReportHandler, load func(context.Context, domain.ReportFilter) ([]T, error)) {
	filter, err := h.parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	rows, err := load(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filter": filter,
		"count":  len(rows),
		"rows":   rows,
	})
}

func (h *ReportHandler) parseFilter(c *gin.Context) (domain.ReportFilter, error) {
	var (
		filter domain.ReportFilter
		err    error
	)

	if filter.Start, err = queryDate(c, "start", h.loc, false); err != nil {
		return filter, err
	}
	if filter.End, err = queryDate(c, "end", h.loc, true); err != nil {
		return filter, err
	}
	if filter.CompareStart, err = queryDate(c, "compare_start", h.loc, false); err != nil {
		return filter, err
	}
	if filter.CompareEnd, err = queryDate(c, "compare_end", h.loc, true); err != nil {
		return filter, err
	}

	if id, ok, err := queryInt64(c, "rep_id"); err != nil {
		return filter, err
	} else if ok {
		filter.RepID = &id
	}
	if id, ok, err := queryInt64(c, "customer_id"); err != nil {
		return filter, err
	} else if ok {
		filter.CustomerID = &id
	}

	filter.Brand = strings.TrimSpace(c.Query("brand"))
	if filter.InactiveDays, err = queryInt(c, "inactive_days"); err != nil {
		return filter, err
	}
	return filter, nil
}
