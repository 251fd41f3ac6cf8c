// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/api"
	"github.com/andresuchdata/salescrm/backend-go/internal/cache"
	"github.com/andresuchdata/salescrm/backend-go/internal/config"
	"github.com/andresuchdata/salescrm/backend-go/internal/metrics"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/salescrm/backend-go/internal/service"
	"github.com/andresuchdata/salescrm/backend-go/internal/storage"
	"github.com/andresuchdata/salescrm/backend-go/internal/warehouse"
	"github.com/andresuchdata/salescrm/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Configure(cfg.Log.Format, cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	var exportStore storage.ObjectStorage
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, exports disabled")
		} else {
			exportStore = store
		}
	}

	m := metrics.New()
	defaults := service.DefaultsFromConfig(cfg.Forecast)
	loc := cfg.Forecast.Location()

	salesRepo := postgres.NewSalesHistoryRepository(db)
	parRepo := postgres.NewPARRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	warehouseClient := warehouse.NewClient(cfg.Warehouse)

	demandService := service.NewDemandService(salesRepo, parRepo, defaults, time.Now, m)
	purchasingService := service.NewPurchaseOrderService(warehouseClient, salesRepo, defaults, time.Now, m)
	exportService := service.NewExportService(exportStore, purchasingService, cfg.Storage.Prefix, time.Now)
	reportService := service.NewReportService(reportRepo, reportCache, loc, time.Now)

	router := api.NewRouter(&api.Services{
		Demand:     demandService,
		Purchasing: purchasingService,
		Exports:    exportService,
		Reports:    reportService,
		Metrics:    m,
		Location:   loc,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
