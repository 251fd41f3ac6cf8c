// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/api/handlers"
	"github.com/andresuchdata/salescrm/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salescrm/backend-go/internal/metrics"
)

// Services holds what the router exposes. A nil service leaves its routes
// unregistered.
type Services struct {
	Demand     handlers.DemandService
	Purchasing handlers.PurchasingService
	Exports    handlers.ExportService
	Reports    handlers.ReportService
	Metrics    *metrics.Metrics
	Location   *time.Location
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	var m *metrics.Metrics
	if services != nil {
		m = services.Metrics
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(m))

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			// Wildcard origins never receive credentials.
			corsConfig.AllowOrigins = nil
			corsConfig.AllowAllOrigins = true
			corsConfig.AllowCredentials = false
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Demand != nil {
			demandHandler := handlers.NewDemandHandler(services.Demand)
			demandGroup := apiGroup.Group("/demand")
			{
				demandGroup.GET("/par", demandHandler.GetPAR)
				demandGroup.POST("/par", demandHandler.SavePARs)
				demandGroup.GET("/brands", demandHandler.GetBrands)
			}
		}

		if services.Purchasing != nil {
			purchasingHandler := handlers.NewPurchasingHandler(services.Purchasing)
			purchasingGroup := apiGroup.Group("/purchasing")
			{
				purchasingGroup.GET("/options", purchasingHandler.GetOptions)
				purchasingGroup.GET("/forecast", purchasingHandler.GetForecast)
				purchasingGroup.POST("/orders", purchasingHandler.CreateOrder)
			}
		}

		if services.Exports != nil {
			exportHandler := handlers.NewExportHandler(services.Exports)
			exportGroup := apiGroup.Group("/exports")
			{
				exportGroup.GET("", exportHandler.ListExports)
				exportGroup.POST("/purchasing", exportHandler.ExportPurchasing)
			}
		}

		if services.Reports != nil {
			reportHandler := handlers.NewReportHandler(services.Reports, services.Location)
			reportGroup := apiGroup.Group("/reports")
			{
				reportGroup.GET("/sales-by-customer", reportHandler.GetSalesByCustomer)
				reportGroup.GET("/gap", reportHandler.GetGap)
				reportGroup.GET("/rep-scorecard", reportHandler.GetRepScorecard)
				reportGroup.GET("/drop-off", reportHandler.GetDropoff)
				reportGroup.GET("/vendor-scorecard", reportHandler.GetVendorScorecard)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
