package app

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the till server and worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"45s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"40s"`
	RateLimitPerMin   int           `envconfig:"RATE_LIMIT_PER_MIN" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	APIURL     string        `envconfig:"API_URL" default:"http://localhost:5000/api"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`

	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	CartTTL    time.Duration `envconfig:"CART_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	StoreName     string `envconfig:"STORE_NAME" default:"Chillzone"`
	StoreTimezone string `envconfig:"STORE_TIMEZONE" default:"Africa/Nairobi"`

	ReportStartYear int           `envconfig:"REPORT_START_YEAR" default:"2025"`
	ReportYearSpan  int           `envconfig:"REPORT_YEAR_SPAN" default:"5"`
	ReportTopN      int           `envconfig:"REPORT_TOP_N" default:"4"`
	ReportCacheTTL  time.Duration `envconfig:"REPORT_CACHE_TTL" default:"10m"`
	ExportLimit     int           `envconfig:"REPORT_EXPORT_LIMIT" default:"10"`

	CatalogMaxAge   time.Duration `envconfig:"CATALOG_MAX_AGE" default:"30s"`
	CheckoutLockTTL time.Duration `envconfig:"CHECKOUT_LOCK_TTL" default:"15s"`

	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"4"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.APIURL == "" {
		return nil, errors.New("api url must be provided")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location resolves STORE_TIMEZONE; every report bucket uses it.
func (c *Config) Location() (*time.Location, error) {
	if c == nil || c.StoreTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return nil, fmt.Errorf("store timezone %q: %w", c.StoreTimezone, err)
	}
	return loc, nil
}
