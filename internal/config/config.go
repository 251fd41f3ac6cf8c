// backend-go/internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Warehouse WarehouseConfig
	Storage   StorageConfig
	Forecast  ForecastConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// WarehouseConfig points at the inventory system that owns stock positions
// and purchase orders.
type WarehouseConfig struct {
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

// Timeout returns the per-call timeout for outbound warehouse requests.
func (c WarehouseConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// ForecastConfig holds the defaults applied when a request leaves a forecast
// parameter blank.
// SafetyMargin applies to PAR suggestions, PurchaseSafetyMargin to the
// purchase order planner.
type ForecastConfig struct {
	SafetyMargin         float64
	PurchaseSafetyMargin float64
	CoverageMonths       float64
	HorizonDays          int
	LookbackDays         int
	PackSize             int
	Timezone             string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "salescrm")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DATABASE_URL", "")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)
		viper.SetDefault("WAREHOUSE_BASE_URL", "http://localhost:9000")
		viper.SetDefault("WAREHOUSE_TOKEN_URL", "")
		viper.SetDefault("WAREHOUSE_CLIENT_ID", "")
		viper.SetDefault("WAREHOUSE_CLIENT_SECRET", "")
		viper.SetDefault("WAREHOUSE_TIMEOUT_SECONDS", 10)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "exports")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "forecasts/")
		viper.SetDefault("FORECAST_SAFETY_MARGIN", 0.15)
		viper.SetDefault("FORECAST_PO_SAFETY_MARGIN", 0)
		viper.SetDefault("FORECAST_COVERAGE_MONTHS", 1)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_LOOKBACK_DAYS", 60)
		viper.SetDefault("FORECAST_PACK_SIZE", 1)
		viper.SetDefault("FORECAST_TIMEZONE", "Europe/London")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Log: LogConfig{
				Level:  viper.GetString("LOG_LEVEL"),
				Format: viper.GetString("LOG_FORMAT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
				URL:      viper.GetString("DATABASE_URL"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Warehouse: WarehouseConfig{
				BaseURL:        viper.GetString("WAREHOUSE_BASE_URL"),
				TokenURL:       viper.GetString("WAREHOUSE_TOKEN_URL"),
				ClientID:       viper.GetString("WAREHOUSE_CLIENT_ID"),
				ClientSecret:   viper.GetString("WAREHOUSE_CLIENT_SECRET"),
				TimeoutSeconds: viper.GetInt("WAREHOUSE_TIMEOUT_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
			},
			Forecast: ForecastConfig{
				SafetyMargin:         viper.GetFloat64("FORECAST_SAFETY_MARGIN"),
				PurchaseSafetyMargin: viper.GetFloat64("FORECAST_PO_SAFETY_MARGIN"),
				CoverageMonths:       viper.GetFloat64("FORECAST_COVERAGE_MONTHS"),
				HorizonDays:          viper.GetInt("FORECAST_HORIZON_DAYS"),
				LookbackDays:         viper.GetInt("FORECAST_LOOKBACK_DAYS"),
				PackSize:             viper.GetInt("FORECAST_PACK_SIZE"),
				Timezone:             viper.GetString("FORECAST_TIMEZONE"),
			},
		}
	})

	return instance
}

// Reset drops the loaded configuration so the next Load re-reads the
// environment.
func Reset() {
	viper.Reset()
	once = sync.Once{}
	instance = nil
}

// Location returns the configured reporting timezone, falling back to UTC.
func (c ForecastConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
