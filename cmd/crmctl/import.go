package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/service"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Bulk load data from CSV files",
		Subcommands: []*cli.Command{
			{
				Name:  "pars",
				Usage: "Save agreed PAR quantities for a customer (columns: sku or product_id, quantity)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "customer-id", Required: true},
					&cli.StringFlag{Name: "file", Required: true, Usage: "CSV file to import"},
				},
				Action: runImportPARs,
			},
		},
	}
}

func runImportPARs(c *cli.Context) error {
	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", c.String("file"), err)
	}
	defer file.Close()

	items, err := parsePARFile(file)
	if err != nil {
		return err
	}

	outcomes, err := depsFrom(c).demand.SavePARs(c.Context, c.Int64("customer-id"), items)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Status == domain.OutcomeFailed {
			failed++
			fmt.Fprintf(c.App.ErrWriter, "%s: %s\n", o.Key, o.Error)
		}
	}
	fmt.Fprintf(c.App.Writer, "saved %d of %d PARs\n", len(outcomes)-failed, len(outcomes))
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d PARs failed", failed), 1)
	}
	return nil
}

// parsePARFile reads a CSV with a header row. Either a sku or a product_id
// column identifies the product; quantity is required.
func parsePARFile(r io.Reader) ([]service.PARItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	skuIdx := getColumnIndex(header, "sku")
	productIdx := getColumnIndex(header, "product_id")
	qtyIdx := getColumnIndex(header, "quantity")
	if qtyIdx < 0 || (skuIdx < 0 && productIdx < 0) {
		return nil, errors.New("CSV needs a quantity column and a sku or product_id column")
	}

	var items []service.PARItem
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record on line %d: %w", line, err)
		}

		var item service.PARItem
		if skuIdx >= 0 {
			item.SKU = strings.TrimSpace(record[skuIdx])
		}
		if productIdx >= 0 && strings.TrimSpace(record[productIdx]) != "" {
			if item.ProductID, err = strconv.ParseInt(strings.TrimSpace(record[productIdx]), 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid product_id %q", line, record[productIdx])
			}
		}
		if item.Quantity, err = strconv.Atoi(strings.TrimSpace(record[qtyIdx])); err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity %q", line, record[qtyIdx])
		}
		items = append(items, item)
	}
	return items, nil
}

func getColumnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i
		}
	}
	return -1
}
