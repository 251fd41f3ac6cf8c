package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/salescrm/backend-go/internal/config"
	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

const (
	reportKeyPrefix     = "reports"
	reportScanBatchSize = 100
	defaultReportTTL    = 5 * time.Minute
)

// ReportCache stores rendered report rows keyed by report name and filter.
// Forecast results are never cached.
type ReportCache interface {
	Get(ctx context.Context, report string, filter domain.ReportFilter, out interface{}) (bool, error)
	Set(ctx context.Context, report string, filter domain.ReportFilter, rows interface{}) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, err := connectRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    reportTTL(cfg),
	}, nil
}

func reportTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ReportTTLSeconds <= 0 {
		return defaultReportTTL
	}
	return time.Duration(cfg.ReportTTLSeconds) * time.Second
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, report string, filter domain.ReportFilter, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, buildReportKey(report, filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode %s report cache: %w", report, err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, report string, filter domain.ReportFilter, rows interface{}) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s report cache: %w", report, err)
	}

	if err := c.client.Set(ctx, buildReportKey(report, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	deleted, err := scanDelete(ctx, c.client, reportKeyPrefix+":*", reportScanBatchSize)
	if err != nil {
		return err
	}
	log.Info().Int("keys", deleted).Msg("report cache invalidated")
	return nil
}

func (n *noopReportCache) Get(ctx context.Context, report string, filter domain.ReportFilter, out interface{}) (bool, error) {
	return false, nil
}

func (n *noopReportCache) Set(ctx context.Context, report string, filter domain.ReportFilter, rows interface{}) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(report string, filter domain.ReportFilter) string {
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix, report, reportFilterHash(filter))
}

func reportFilterHash(filter domain.ReportFilter) string {
	parts := []string{}

	if !filter.Start.IsZero() {
		parts = append(parts, "start="+filter.Start.UTC().Format(time.RFC3339))
	}
	if !filter.End.IsZero() {
		parts = append(parts, "end="+filter.End.UTC().Format(time.RFC3339))
	}
	if !filter.CompareStart.IsZero() {
		parts = append(parts, "compare_start="+filter.CompareStart.UTC().Format(time.RFC3339))
	}
	if !filter.CompareEnd.IsZero() {
		parts = append(parts, "compare_end="+filter.CompareEnd.UTC().Format(time.RFC3339))
	}
	if filter.RepID != nil {
		parts = append(parts, fmt.Sprintf("rep_id=%d", *filter.RepID))
	}
	if filter.CustomerID != nil {
		parts = append(parts, fmt.Sprintf("customer_id=%d", *filter.CustomerID))
	}
	// Brands are matched case-sensitively by the report queries.
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		parts = append(parts, "brand="+brand)
	}
	if filter.InactiveDays > 0 {
		parts = append(parts, fmt.Sprintf("inactive_days=%d", filter.InactiveDays))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
