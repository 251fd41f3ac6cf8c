package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/salescrm/backend-go/internal/cache"
	"github.com/andresuchdata/salescrm/backend-go/internal/config"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/salescrm/backend-go/internal/service"
	"github.com/andresuchdata/salescrm/backend-go/internal/storage"
	"github.com/andresuchdata/salescrm/backend-go/internal/warehouse"
	"github.com/andresuchdata/salescrm/backend-go/pkg/logger"
)

const depsKey = "deps"

// deps are the services a command needs, built once per invocation.
type deps struct {
	db         *sql.DB
	demand     *service.DemandService
	purchasing *service.PurchaseOrderService
	exports    *service.ExportService
	reports    *service.ReportService
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDeps(c *cli.Context) error {
	cfg := config.Load()
	logger.Configure("console", c.String("log-level"))

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	pool := postgres.Wrap(sqlx.NewDb(db, "pgx"))
	sales := postgres.NewSalesHistoryRepository(pool)
	defaults := service.DefaultsFromConfig(cfg.Forecast)

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, uploads disabled")
		} else {
			store = minioClient
		}
	}

	d := &deps{db: db}
	d.demand = service.NewDemandService(sales, postgres.NewPARRepository(pool), defaults, time.Now, nil)
	d.purchasing = service.NewPurchaseOrderService(warehouse.NewClient(cfg.Warehouse), sales, defaults, time.Now, nil)
	d.exports = service.NewExportService(store, d.purchasing, cfg.Storage.Prefix, time.Now)

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("report cache unavailable")
		reportCache = cache.NewNoopReportCache()
	}
	d.reports = service.NewReportService(postgres.NewReportRepository(pool), reportCache, cfg.Forecast.Location(), time.Now)

	c.App.Metadata[depsKey] = d
	return nil
}

func closeDeps(c *cli.Context) error {
	if d := depsFrom(c); d != nil {
		return d.db.Close()
	}
	return nil
}

func depsFrom(c *cli.Context) *deps {
	d, _ := c.App.Metadata[depsKey].(*deps)
	return d
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:     "crmctl",
		Usage:    "Run demand and purchasing forecasts from the command line",
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: initDeps,
		After:  closeDeps,
		Commands: []*cli.Command{
			parCommand(),
			poCommand(),
			importCommand(),
			exportsCommand(),
			reportsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("crmctl failed")
	}
}
