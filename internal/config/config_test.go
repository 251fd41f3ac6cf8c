package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 0.15, cfg.Forecast.SafetyMargin)
	assert.Equal(t, 0.0, cfg.Forecast.PurchaseSafetyMargin)
	assert.Equal(t, 60, cfg.Forecast.LookbackDays)
	assert.Equal(t, 10*time.Second, cfg.Warehouse.Timeout())
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadReadsEnvironment(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("FORECAST_SAFETY_MARGIN", "0.25")
	t.Setenv("FORECAST_PO_SAFETY_MARGIN", "0.1")
	t.Setenv("WAREHOUSE_TIMEOUT_SECONDS", "3")
	t.Setenv("CACHE_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, 0.25, cfg.Forecast.SafetyMargin)
	assert.Equal(t, 0.1, cfg.Forecast.PurchaseSafetyMargin)
	assert.Equal(t, 3*time.Second, cfg.Warehouse.Timeout())
	assert.True(t, cfg.Cache.Enabled)
}

func TestWarehouseTimeoutFallsBack(t *testing.T) {
	assert.Equal(t, 10*time.Second, WarehouseConfig{TimeoutSeconds: 0}.Timeout())
	assert.Equal(t, 10*time.Second, WarehouseConfig{TimeoutSeconds: -4}.Timeout())
}

func TestForecastLocation(t *testing.T) {
	assert.Equal(t, time.UTC, ForecastConfig{}.Location())
	assert.Equal(t, time.UTC, ForecastConfig{Timezone: "Not/AZone"}.Location())
}
