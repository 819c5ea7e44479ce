package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Auth      AuthConfig
	Ledger    LedgerConfig
	Refresh   RefreshConfig
	Valuation ValuationConfig
	Market    MarketConfig
	Log       LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration.
// An empty Path disables the persistent close store.
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	HeaderName   string
	APIKey       string
	TimeTokenTTL time.Duration // 0 disables time tokens
}

// LedgerConfig locates the ledger document.
type LedgerConfig struct {
	Path string
}

// RefreshConfig controls the background valuation refresh.
type RefreshConfig struct {
	Schedule   string
	Currencies []model.Currency
}

// ValuationConfig tunes the price fetch pool and FX lookups.
type ValuationConfig struct {
	PriceWorkers int
	PriceTimeout time.Duration
	FXTimeout    time.Duration
}

// MarketConfig controls market data caching.
type MarketConfig struct {
	LatestPriceTTL time.Duration
	CacheSize      int
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: os.Getenv("DB_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			HeaderName:   getEnv("API_KEY_NAME", "X-API-Key"),
			APIKey:       os.Getenv("API_KEY"),
			TimeTokenTTL: durVar("TIME_TOKEN_TTL", 0),
		},
		Ledger: LedgerConfig{
			Path: getEnv("LEDGER_PATH", "portfolio.xml"),
		},
		Refresh: RefreshConfig{
			Schedule: getEnv("REFRESH_SCHEDULE", "@every 5m"),
		},
		Valuation: ValuationConfig{
			PriceWorkers: intVar("PRICE_WORKERS", 10),
			PriceTimeout: durVar("PRICE_TIMEOUT", 10*time.Second),
			FXTimeout:    durVar("FX_TIMEOUT", 10*time.Second),
		},
		Market: MarketConfig{
			LatestPriceTTL: durVar("LATEST_PRICE_TTL", time.Minute),
			CacheSize:      intVar("CACHE_SIZE", 4096),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
	}

	for _, code := range splitList(getEnv("REFRESH_CURRENCIES", "USD,EUR")) {
		c, err := model.ParseCurrency(code)
		if err != nil {
			errs = append(errs, fmt.Sprintf("REFRESH_CURRENCIES: %v", err))
			continue
		}
		config.Refresh.Currencies = append(config.Refresh.Currencies, c)
	}

	if config.Valuation.PriceWorkers < 1 {
		errs = append(errs, "PRICE_WORKERS must be at least 1")
	}
	if config.Market.CacheSize < 1 {
		errs = append(errs, "CACHE_SIZE must be at least 1")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

// getEnvDuration gets a duration environment variable (e.g. "10s") or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
