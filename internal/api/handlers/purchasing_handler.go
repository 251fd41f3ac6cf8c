// backend-go/internal/api/handlers/purchasing_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/service"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type PurchasingService interface {
	Forecast(ctx context.Context, req service.PurchaseForecastRequest) (*service.PurchaseForecast, error)
	Options(ctx context.Context) (*service.PurchaseOptions, error)
	CreatePurchaseOrder(ctx context.Context, draft domain.PurchaseOrderDraft, idempotencyKey string) (*service.PurchaseOrderResult, error)
}

type PurchasingHandler struct {
	purchasingService PurchasingService
}

func NewPurchasingHandler(purchasingService PurchasingService) *PurchasingHandler {
	return &PurchasingHandler{purchasingService: purchasingService}
}

// GetOptions returns the supplier and location selectors.
func (h *PurchasingHandler) GetOptions(c *gin.Context) {
	opts, err := h.purchasingService.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// GetForecast returns the purchase ordering plan for a supplier and location.
func (h *PurchasingHandler) GetForecast(c *gin.Context) {
	req, err := purchaseForecastFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.purchasingService.Forecast(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	if wantsCSV(c) {
		writeCSV(c, fmt.Sprintf("purchasing-%s-%s.csv", plan.SupplierID, plan.LocationID), plan.Rows)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// CreateOrder opens a purchase order in the warehouse system. Retries should
// repeat the Idempotency-Key header so the warehouse can drop duplicates.
func (h *PurchasingHandler) CreateOrder(c *gin.Context) {
	var draft domain.PurchaseOrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	result, err := h.purchasingService.CreatePurchaseOrder(c.Request.Context(), draft, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func purchaseForecastFromQuery(c *gin.Context) (service.PurchaseForecastRequest, error) {
	req := service.PurchaseForecastRequest{
		SupplierID: c.Query("supplier_id"),
		LocationID: c.Query("location_id"),
		SKUs:       skusFromQuery(c),
	}

	var err error
	if req.LookbackDays, err = queryInt(c, "lookback_days"); err != nil {
		return req, err
	}
	if req.HorizonDays, err = queryFloat(c, "horizon_days"); err != nil {
		return req, err
	}
	if req.SafetyMargin, err = queryFloat(c, "safety_margin"); err != nil {
		return req, err
	}
	if req.SortField, req.SortDesc, err = sortFromQuery(c); err != nil {
		return req, err
	}
	return req, nil
}
