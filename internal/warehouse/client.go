// Package warehouse is the HTTP client of the inventory system that owns
// stock positions, suppliers, locations and purchase orders.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/andresuchdata/salescrm/backend-go/internal/config"
	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

const maxResponseSize = 10 * 1024 * 1024

// ErrUpstream marks every failure talking to the warehouse: transport
// errors, timeouts, non-2xx answers and undecodable bodies.
var ErrUpstream = errors.New("warehouse request failed")

// StatusError carries the status of a non-2xx warehouse answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("warehouse returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for cfg. When a token URL is configured requests
// are authorised with OAuth2 client credentials. Every request is bounded by
// cfg.Timeout().
func NewClient(cfg config.WarehouseConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout()})
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = cfg.Timeout()
	}

	return NewClientWithHTTP(cfg.BaseURL, httpClient)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

// StockPositions returns the stock position of each requested SKU at the
// location. SKUs the warehouse does not know are absent from the map.
func (c *Client) StockPositions(ctx context.Context, locationID string, skus []string) (map[string]domain.StockPosition, error) {
	q := url.Values{}
	q.Set("location_id", locationID)
	for _, sku := range skus {
		q.Add("sku", sku)
	}

	var resp listResponse[domain.StockPosition]
	if err := c.do(ctx, http.MethodGet, "/api/stock?"+q.Encode(), nil, nil, &resp); err != nil {
		return nil, err
	}

	positions := make(map[string]domain.StockPosition, len(resp.Items))
	for _, p := range resp.Items {
		if p.SKU == "" {
			continue
		}
		positions[p.SKU] = p
	}
	return positions, nil
}

func (c *Client) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	var resp listResponse[domain.Supplier]
	if err := c.do(ctx, http.MethodGet, "/api/suppliers", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Locations(ctx context.Context) ([]domain.Location, error) {
	var resp listResponse[domain.Location]
	if err := c.do(ctx, http.MethodGet, "/api/locations", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SupplierSKUs lists the catalogue of one supplier.
func (c *Client) SupplierSKUs(ctx context.Context, supplierID string) ([]string, error) {
	var resp listResponse[string]
	path := "/api/suppliers/" + url.PathEscape(supplierID) + "/skus"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CreatePurchaseOrder opens a purchase order. Retrying with the same
// idempotencyKey never creates a second order; an empty key gets a fresh one.
func (c *Client) CreatePurchaseOrder(ctx context.Context, draft domain.PurchaseOrderDraft, idempotencyKey string) (*domain.PurchaseOrderReceipt, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase order: %w", err)
	}

	headers := http.Header{}
	headers.Set("Idempotency-Key", idempotencyKey)

	var receipt domain.PurchaseOrderReceipt
	if err := c.do(ctx, http.MethodPost, "/api/purchase-orders", bytes.NewReader(body), headers, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("warehouse request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("warehouse returned error status")
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return nil
}
