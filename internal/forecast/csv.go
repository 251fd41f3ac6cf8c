package forecast

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

// CSVHeader is the column layout of exported forecasts.
var CSVHeader = []string{"SKU", "Name", "Units-in-window", "Avg rate", "Suggested quantity"}

// WriteCSV writes rows in CSVHeader layout. Units keep two decimals and the
// average rate four.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			escapeCell(row.SKU),
			escapeCell(row.DisplayName),
			strconv.FormatFloat(row.UnitsInWindow, 'f', 2, 64),
			strconv.FormatFloat(row.AvgRate, 'f', 4, 64),
			strconv.Itoa(row.SuggestedQty),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", domain.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range CSVHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("%w: unexpected column %q at position %d", domain.ErrInvalidArgument, header[i], i+1)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		units, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d units: %v", domain.ErrInvalidArgument, line, err)
		}
		rate, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d avg rate: %v", domain.ErrInvalidArgument, line, err)
		}
		qty, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d suggested quantity: %v", domain.ErrInvalidArgument, line, err)
		}

		rows = append(rows, Row{
			ItemKey:       unescapeCell(record[0]),
			SKU:           unescapeCell(record[0]),
			DisplayName:   unescapeCell(record[1]),
			UnitsInWindow: units,
			AvgRate:       rate,
			MonthlyRate:   MonthlyRate(rate),
			SuggestedQty:  qty,
		})
	}

	return rows, nil
}

// Spreadsheets evaluate cells starting with these as formulas.
const formulaPrefixes = "=+-@\t\r"

// escapeCell prefixes formula-like text with a quote so it opens as text.
func escapeCell(v string) string {
	if v != "" && strings.ContainsRune(formulaPrefixes, rune(v[0])) {
		return "'" + v
	}
	return v
}

func unescapeCell(v string) string {
	if len(v) > 1 && v[0] == '\'' && strings.ContainsRune(formulaPrefixes, rune(v[1])) {
		return v[1:]
	}
	return v
}
