package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	CurrencyCode      string
	DefaultTaxPercent string
	GSTEnabled        bool

	CartTTL           time.Duration
	IdempotencyTTL    time.Duration
	InventoryCacheTTL time.Duration
	ReportCacheTTL    time.Duration
	ReportRangeDays   int
	LowStockThreshold int
	ScanInterKeyGap   time.Duration

	SMSGatewayURL     string
	SMSGatewayToken   string
	SMSSenderID       string
	ReceiptSMS        bool
	WorkerConcurrency int

	RateLimitFormat string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CurrencyCode:      valueOrDefault(k.String("POS_CURRENCY"), "INR"),
		DefaultTaxPercent: valueOrDefault(k.String("POS_DEFAULT_TAX_PERCENT"), "0"),
		GSTEnabled:        parseBoolDefault(k.String("POS_GST_ENABLED"), true),

		CartTTL:           parseDuration(k.String("POS_CART_TTL"), "12h"),
		IdempotencyTTL:    parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		InventoryCacheTTL: parseDuration(k.String("INVENTORY_CACHE_TTL"), "5m"),
		ReportCacheTTL:    parseDuration(k.String("REPORT_CACHE_TTL"), "10m"),
		ReportRangeDays:   intOrDefault(k, "REPORT_DEFAULT_RANGE_DAYS", 30),
		LowStockThreshold: intOrDefault(k, "POS_LOW_STOCK_THRESHOLD", 5),
		ScanInterKeyGap:   parseDuration(k.String("SCAN_INTERKEY_GAP"), "1s"),

		SMSGatewayURL:     k.String("SMS_GATEWAY_URL"),
		SMSGatewayToken:   k.String("SMS_GATEWAY_TOKEN"),
		SMSSenderID:       valueOrDefault(k.String("SMS_SENDER_ID"), "KGFPOS"),
		ReceiptSMS:        parseBoolDefault(k.String("NOTIFY_RECEIPT_SMS"), true),
		WorkerConcurrency: intOrDefault(k, "WORKER_CONCURRENCY", 4),

		RateLimitFormat: valueOrDefault(k.String("RATE_LIMIT"), "300-M"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func intOrDefault(k *koanf.Koanf, key string, fallback int) int {
	if !k.Exists(key) {
		return fallback
	}
	if v := k.Int(key); v > 0 {
		return v
	}
	return fallback
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
