package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the marketing dashboard service.
type Config struct {
	Server    ServerConfig
	Sources   SourcesConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
	Timezone        string
}

// SourcesConfig holds the upstream webhook endpoints. Each accepts
// date-from / date-to query parameters in YYYY-MM-DD format.
type SourcesConfig struct {
	AdMetricsURL    string
	SalesOrdersURL  string
	InvoiceLinesURL string
	LeadsRatioURL   string
	FetchTimeout    time.Duration
}

type CacheConfig struct {
	// Backend selects the persistent store: redis, postgres or memory.
	Backend     string
	TTL         time.Duration
	DedupWindow time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RetryConfig bounds the exponential backoff applied by the dashboard
// service around the primary ad-metrics fetch.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("MKDASH_HTTP_ADDR", ":8080"),
			Env:             getEnv("MKDASH_ENV", "development"),
			ShutdownTimeout: getDurationEnv("MKDASH_SHUTDOWN_TIMEOUT", 30*time.Second),
			Timezone:        getEnv("MKDASH_TIMEZONE", "Asia/Jakarta"),
		},
		Sources: SourcesConfig{
			AdMetricsURL:    getEnv("MKDASH_ADS_URL", "https://workflows.cekat.ai/webhook/meta-ads-data"),
			SalesOrdersURL:  getEnv("MKDASH_SALES_ORDERS_URL", "https://workflows.cekat.ai/webhook/sales-order"),
			InvoiceLinesURL: getEnv("MKDASH_INVOICE_LINES_URL", "https://workflows.cekat.ai/webhook/invoice-lines"),
			LeadsRatioURL:   getEnv("MKDASH_LEADS_RATIO_URL", "https://workflows.cekat.ai/webhook/leads-ratio"),
			FetchTimeout:    getDurationEnv("MKDASH_FETCH_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			Backend:     getEnv("MKDASH_CACHE_BACKEND", "redis"),
			TTL:         getDurationEnv("MKDASH_CACHE_TTL", 4*time.Hour),
			DedupWindow: getDurationEnv("MKDASH_CACHE_DEDUP_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			Host:     getEnv("MKDASH_DB_HOST", "localhost"),
			Port:     getIntEnv("MKDASH_DB_PORT", 5432),
			User:     getEnv("MKDASH_DB_USER", "mkdash"),
			Password: getEnv("MKDASH_DB_PASSWORD", "mkdash_secret"),
			DBName:   getEnv("MKDASH_DB_NAME", "mkdash"),
			SSLMode:  getEnv("MKDASH_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("MKDASH_DB_MAX_CONNS", 10),
			MinConns: getIntEnv("MKDASH_DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("MKDASH_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("MKDASH_REDIS_PASSWORD", ""),
			DB:       getIntEnv("MKDASH_REDIS_DB", 0),
		},
		Retry: RetryConfig{
			MaxRetries: getIntEnv("MKDASH_FETCH_RETRIES", 2),
			BaseDelay:  getDurationEnv("MKDASH_FETCH_RETRY_BASE", time.Second),
			MaxDelay:   getDurationEnv("MKDASH_FETCH_RETRY_MAX", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("MKDASH_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("MKDASH_RATE_LIMIT_RPS", 50),
			Burst:   getIntEnv("MKDASH_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("MKDASH_LOG_LEVEL", "info"),
			Format: getEnv("MKDASH_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("MKDASH_METRICS_ENABLED", true),
			Path:    getEnv("MKDASH_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("MKDASH_CACHE_BACKEND must be redis, postgres or memory, got %q", c.Cache.Backend)
	}
	for name, url := range map[string]string{
		"MKDASH_ADS_URL":           c.Sources.AdMetricsURL,
		"MKDASH_SALES_ORDERS_URL":  c.Sources.SalesOrdersURL,
		"MKDASH_INVOICE_LINES_URL": c.Sources.InvoiceLinesURL,
		"MKDASH_LEADS_RATIO_URL":   c.Sources.LeadsRatioURL,
	} {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, url)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
