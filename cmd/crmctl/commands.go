package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
	"github.com/andresuchdata/salescrm/backend-go/internal/service"
)

func uploadFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "upload",
		Usage: "Upload the CSV to object storage instead of printing it",
	}
}

func sortFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "sort-field", Usage: "Column to sort by (sku, name, suggested, extended_cost, ...)"},
		&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
	}
}

// optionalFloat returns nil for flags the user did not set, so service
// defaults apply.
func optionalFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

func parCommand() *cli.Command {
	return &cli.Command{
		Name:  "par",
		Usage: "Compute PAR suggestions for a customer and brand",
		Flags: append([]cli.Flag{
			&cli.Int64Flag{Name: "customer-id", Required: true},
			&cli.StringFlag{Name: "brand", Required: true},
			&cli.StringFlag{Name: "timeframe", Value: string(forecast.LastMonth), Usage: "month_to_date, last_month, last_n_months or custom_days"},
			&cli.IntFlag{Name: "months", Usage: "Months for last_n_months"},
			&cli.IntFlag{Name: "lookback-days", Usage: "Days for custom_days"},
			&cli.Float64Flag{Name: "safety-margin"},
			&cli.Float64Flag{Name: "coverage-months"},
			&cli.IntFlag{Name: "pack-size"},
			uploadFlag(),
		}, sortFlags()...),
		Action: runPAR,
	}
}

func runPAR(c *cli.Context) error {
	d := depsFrom(c)

	tf, err := forecast.ParseTimeframe(c.String("timeframe"))
	if err != nil {
		return err
	}

	report, err := d.demand.PARSuggestions(c.Context, service.PARRequest{
		CustomerID:     c.Int64("customer-id"),
		Brand:          c.String("brand"),
		Selection:      forecast.Selection{Timeframe: tf, Months: c.Int("months"), Days: c.Int("lookback-days")},
		SafetyMargin:   optionalFloat(c, "safety-margin"),
		CoverageMonths: optionalFloat(c, "coverage-months"),
		PackSize:       c.Int("pack-size"),
		SortField:      c.String("sort-field"),
		SortDesc:       c.Bool("desc"),
	})
	if err != nil {
		return err
	}

	if c.Bool("upload") {
		name := fmt.Sprintf("par/%d/%s.csv", report.Customer.ID, time.Now().UTC().Format("20060102T150405Z"))
		result, err := d.exports.ExportRows(c.Context, name, report.Rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "uploaded %d rows to %s\n", result.Rows, result.Key)
		return nil
	}
	return forecast.WriteCSV(c.App.Writer, report.Rows)
}

func poCommand() *cli.Command {
	return &cli.Command{
		Name:  "po",
		Usage: "Compute purchase order suggestions for a supplier and location",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "supplier-id", Required: true},
			&cli.StringFlag{Name: "location-id", Required: true},
			&cli.StringSliceFlag{Name: "sku", Usage: "SKU to plan; repeat or comma separate. Defaults to the supplier catalogue"},
			&cli.IntFlag{Name: "lookback-days"},
			&cli.Float64Flag{Name: "horizon-days"},
			&cli.Float64Flag{Name: "safety-margin"},
			uploadFlag(),
		}, sortFlags()...),
		Action: runPO,
	}
}

func runPO(c *cli.Context) error {
	d := depsFrom(c)
	req := service.PurchaseForecastRequest{
		SupplierID:   c.String("supplier-id"),
		LocationID:   c.String("location-id"),
		SKUs:         c.StringSlice("sku"),
		LookbackDays: c.Int("lookback-days"),
		HorizonDays:  optionalFloat(c, "horizon-days"),
		SafetyMargin: optionalFloat(c, "safety-margin"),
		SortField:    c.String("sort-field"),
		SortDesc:     c.Bool("desc"),
	}

	if c.Bool("upload") {
		result, err := d.exports.ExportPurchaseForecast(c.Context, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "uploaded %d rows to %s\n", result.Rows, result.Key)
		return nil
	}

	plan, err := d.purchasing.Forecast(c.Context, req)
	if err != nil {
		return err
	}
	if err := forecast.WriteCSV(c.App.Writer, plan.Rows); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "total cost: %s\n", plan.TotalCost.StringFixed(2))
	return nil
}

func exportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "exports",
		Usage: "Inspect uploaded forecast exports",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List exported CSV files",
				Action: func(c *cli.Context) error {
					objects, err := depsFrom(c).exports.ListExports(c.Context)
					if err != nil {
						return err
					}
					for _, obj := range objects {
						fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\n", obj.LastModified.Format(time.RFC3339), obj.Size, obj.Key)
					}
					return nil
				},
			},
			{
				Name:  "download",
				Usage: "Download an exported CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Required: true},
					&cli.StringFlag{Name: "out", Required: true, Usage: "Local destination path"},
				},
				Action: func(c *cli.Context) error {
					if err := depsFrom(c).exports.DownloadExport(c.Context, c.String("key"), c.String("out")); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "downloaded %s to %s\n", c.String("key"), c.String("out"))
					return nil
				},
			},
		},
	}
}

func reportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "Maintain the sales report shells",
		Subcommands: []*cli.Command{
			{
				Name:  "flush-cache",
				Usage: "Drop every cached report, e.g. after an order sync",
				Action: func(c *cli.Context) error {
					if err := depsFrom(c).reports.InvalidateCache(c.Context); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "report cache flushed")
					return nil
				},
			},
		},
	}
}
