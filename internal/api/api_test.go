package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubReports struct{}

func (stubReports) SalesByCustomer(ctx context.Context, f domain.ReportFilter) ([]domain.SalesByCustomerRow, error) {
	return nil, nil
}

func (stubReports) Gap(ctx context.Context, f domain.ReportFilter) ([]domain.GapRow, error) {
	return nil, nil
}

func (stubReports) RepScorecard(ctx context.Context, f domain.ReportFilter) ([]domain.RepScorecardRow, error) {
	return nil, nil
}

func (stubReports) Dropoff(ctx context.Context, f domain.ReportFilter) ([]domain.DropoffRow, error) {
	return nil, nil
}

func (stubReports) VendorScorecard(ctx context.Context, f domain.ReportFilter) ([]domain.VendorScorecardRow, error) {
	return nil, nil
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	r := NewRouter(nil, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRouter_UnconfiguredServicesAreNotRouted(t *testing.T) {
	r := NewRouter(&Services{Reports: stubReports{}}, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/demand/par", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/reports/gap", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestRouter_MetricsRecordRouteTemplates(t *testing.T) {
	m := metrics.New()
	r := NewRouter(&Services{Reports: stubReports{}, Metrics: m}, nil)

	serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/reports/vendor-scorecard", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `salescrm_http_requests_total{method="GET",route="/api/v1/reports/vendor-scorecard",status="200"} 1`)
}

func TestRouter_CORS(t *testing.T) {
	r := NewRouter(nil, []string{"https://crm.example.com, https://admin.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := serve(r, req)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSWildcardDropsCredentials(t *testing.T) {
	r := NewRouter(nil, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	w := serve(r, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	r = NewRouter(nil, []string{"https://crm.example.com"})
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	w = serve(r, req)
	assert.Equal(t, "https://crm.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{" https://a.example.com ,", "*", "https://b.example.com"})
	assert.True(t, allowAll)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, origins)

	origins, allowAll = normalizeAllowedOrigins([]string{""})
	assert.False(t, allowAll)
	assert.Empty(t, origins)
}
