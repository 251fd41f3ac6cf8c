// backend-go/internal/api/handlers/demand_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/service"
)

type DemandService interface {
	PARSuggestions(ctx context.Context, req service.PARRequest) (*service.PARReport, error)
	Brands(ctx context.Context, customerID int64) ([]string, error)
	SavePARs(ctx context.Context, customerID int64, items []service.PARItem) ([]domain.ItemOutcome, error)
}

type DemandHandler struct {
	demandService DemandService
}

func NewDemandHandler(demandService DemandService) *DemandHandler {
	return &DemandHandler{demandService: demandService}
}

type savePARsRequest struct {
	CustomerID int64             `json:"customer_id"`
	Items      []service.PARItem `json:"items"`
}

// GetPAR returns the Demand & PAR report for a customer and brand, as JSON or
// as a CSV download with format=csv.
func (h *DemandHandler) GetPAR(c *gin.Context) {
	customerID, _, err := queryInt64(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	sel, err := selectionFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	margin, err := queryFloat(c, "safety_margin")
	if err != nil {
		respondError(c, err)
		return
	}
	coverage, err := queryFloat(c, "coverage_months")
	if err != nil {
		respondError(c, err)
		return
	}
	packSize, err := queryInt(c, "pack_size")
	if err != nil {
		respondError(c, err)
		return
	}
	sortField, sortDesc, err := sortFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.demandService.PARSuggestions(c.Request.Context(), service.PARRequest{
		CustomerID:     customerID,
		Brand:          c.Query("brand"),
		Selection:      sel,
		SafetyMargin:   margin,
		CoverageMonths: coverage,
		PackSize:       packSize,
		SortField:      sortField,
		SortDesc:       sortDesc,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if wantsCSV(c) {
		writeCSV(c, fmt.Sprintf("par-%d-%s.csv", report.Customer.ID, report.Brand), report.Rows)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SavePARs persists accepted suggestions. The response lists the outcome of
// every item; a partial failure still answers 200.
func (h *DemandHandler) SavePARs(c *gin.Context) {
	var req savePARsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	outcomes, err := h.demandService.SavePARs(c.Request.Context(), req.CustomerID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	saved, failed := 0, 0
	for _, o := range outcomes {
		switch o.Status {
		case domain.OutcomeSaved:
			saved++
		case domain.OutcomeFailed:
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id": req.CustomerID,
		"saved":       saved,
		"failed":      failed,
		"outcomes":    outcomes,
	})
}

// GetBrands lists the brands a customer has bought.
func (h *DemandHandler) GetBrands(c *gin.Context) {
	customerID, _, err := queryInt64(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}

	brands, err := h.demandService.Brands(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}
