package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodGet, "/api/v1/demand/par", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/v1/demand/par", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	m.ForecastUnavailable("purchasing")
	m.PARSave("saved")
	m.PARSave("saved")
	m.PARSave("failed")
	m.PurchaseOrder("created")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/demand/par", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.forecastUnavailable.WithLabelValues("purchasing")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.parSaves.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parSaves.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.purchaseOrders.WithLabelValues("created")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ForecastUnavailable("par")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `salescrm_forecast_unavailable_total{feature="par"} 1`)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Second)
		m.ForecastUnavailable("par")
		m.PARSave("saved")
		m.PurchaseOrder("failed")
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
