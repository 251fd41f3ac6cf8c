package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/service"
	"github.com/andresuchdata/salescrm/backend-go/internal/storage"
)

type ExportService interface {
	ExportPurchaseForecast(ctx context.Context, req service.PurchaseForecastRequest) (*service.ExportResult, error)
	ListExports(ctx context.Context) ([]storage.ObjectInfo, error)
}

type ExportHandler struct {
	exportService ExportService
}

func NewExportHandler(exportService ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

type exportPurchasingRequest struct {
	SupplierID   string   `json:"supplier_id"`
	LocationID   string   `json:"location_id"`
	SKUs         []string `json:"skus"`
	LookbackDays int      `json:"lookback_days"`
	HorizonDays  *float64 `json:"horizon_days"`
	SafetyMargin *float64 `json:"safety_margin"`
}

// ExportPurchasing runs the purchase planner and uploads the CSV to object
// storage.
func (h *ExportHandler) ExportPurchasing(c *gin.Context) {
	var body exportPurchasingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.exportService.ExportPurchaseForecast(c.Request.Context(), service.PurchaseForecastRequest{
		SupplierID:   body.SupplierID,
		LocationID:   body.LocationID,
		SKUs:         body.SKUs,
		LookbackDays: body.LookbackDays,
		HorizonDays:  body.HorizonDays,
		SafetyMargin: body.SafetyMargin,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ExportHandler) ListExports(c *gin.Context) {
	objects, err := h.exportService.ListExports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if objects == nil {
		objects = make([]storage.ObjectInfo, 0)
	}
	c.JSON(http.StatusOK, objects)
}
