package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
	"github.com/andresuchdata/salescrm/backend-go/internal/storage"
)

// ErrExportsDisabled is returned when no object storage is configured.
var ErrExportsDisabled = fmt.Errorf("%w: object storage is not configured", domain.ErrUpstreamUnavailable)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type ExportResult struct {
	Key  string `json:"key"`
	Rows int    `json:"rows"`
	Size int    `json:"size"`
}

// ExportService renders forecast rows as CSV and stores them in the export
// bucket.
type ExportService struct {
	storage   storage.ObjectStorage
	purchases *PurchaseOrderService
	prefix    string
	clock     Clock
}

// NewExportService accepts a nil store; every call then fails with
// ErrExportsDisabled.
func NewExportService(store storage.ObjectStorage, purchases *PurchaseOrderService, prefix string, clock Clock) *ExportService {
	if clock == nil {
		clock = time.Now
	}
	return &ExportService{storage: store, purchases: purchases, prefix: prefix, clock: clock}
}

// ExportPurchaseForecast runs the planner and uploads the result.
func (s *ExportService) ExportPurchaseForecast(ctx context.Context, req PurchaseForecastRequest) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrExportsDisabled
	}

	plan, err := s.purchases.Forecast(ctx, req)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("purchasing/%s/%s/%s.csv",
		safeKeySegment(plan.SupplierID),
		safeKeySegment(plan.LocationID),
		s.clock().UTC().Format("20060102T150405Z"))

	return s.ExportRows(ctx, name, plan.Rows)
}

// ExportRows uploads rows under name, relative to the configured prefix.
func (s *ExportService) ExportRows(ctx context.Context, name string, rows []forecast.Row) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrExportsDisabled
	}

	var buf bytes.Buffer
	if err := forecast.WriteCSV(&buf, rows); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}

	key := path.Join(s.prefix, name)
	if err := s.storage.UploadObject(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return nil, unavailable(domain.ErrUpstreamUnavailable, "upload export", err)
	}

	return &ExportResult{Key: key, Rows: len(rows), Size: buf.Len()}, nil
}

func (s *ExportService) ListExports(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.storage == nil {
		return nil, ErrExportsDisabled
	}
	objects, err := s.storage.ListObjects(ctx, s.prefix)
	if err != nil {
		return nil, unavailable(domain.ErrUpstreamUnavailable, "list exports", err)
	}
	return objects, nil
}

// DownloadExport copies an export to destPath. Keys outside the export
// prefix are rejected.
func (s *ExportService) DownloadExport(ctx context.Context, key, destPath string) error {
	if s.storage == nil {
		return ErrExportsDisabled
	}
	clean := path.Clean(strings.TrimSpace(key))
	if clean == "." || strings.Contains(clean, "..") || (s.prefix != "" && !strings.HasPrefix(clean, strings.TrimSuffix(s.prefix, "/")+"/")) {
		return fmt.Errorf("%w: key %q is not an export", domain.ErrInvalidArgument, key)
	}
	if strings.TrimSpace(destPath) == "" {
		return fmt.Errorf("%w: destination path is required", domain.ErrInvalidArgument)
	}
	if err := s.storage.DownloadObject(ctx, clean, destPath); err != nil {
		return unavailable(domain.ErrUpstreamUnavailable, "download export", err)
	}
	return nil
}

func safeKeySegment(v string) string {
	v = strings.Trim(unsafeKeyChars.ReplaceAllString(strings.TrimSpace(v), "-"), "-")
	if v == "" {
		return "unknown"
	}
	return v
}
