package config

import (
	"fmt"
	"os"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverOracle   = "oracle"
)

type Config struct {
	ServerHost string
	ServerPort string

	DBDriver string
	DBDSN    string

	GoogleClientID string
	JWTSecret      string
	AccessTokenTTL time.Duration

	GeminiAPIKey string
	GeminiAPIURL string

	YahooBaseURL string

	QuoteCacheTTL            time.Duration
	QuoteWriteInterval       time.Duration
	UpstreamTimeout          time.Duration
	WatchlistRefreshInterval time.Duration

	StaticDir string
	LogLevel  string
}

func Load() (*Config, error) {
	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	if googleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID environment variable is required")
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN environment variable is required")
	}

	driver := getEnvOrDefault("DB_DRIVER", DBDriverPostgres)
	if driver != DBDriverPostgres && driver != DBDriverOracle {
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}

	cacheTTL, err := parseDurationEnv("QUOTE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	writeInterval, err := parseDurationEnv("QUOTE_WRITE_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parseDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	// 0 disables the background watchlist refresher.
	refreshInterval, err := parseDurationEnv("WATCHLIST_REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	tokenTTL, err := parseDurationEnv("ACCESS_TOKEN_TTL", 60*time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerHost:               getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		ServerPort:               getEnvOrDefault("SERVER_PORT", "8000"),
		DBDriver:                 driver,
		DBDSN:                    dsn,
		GoogleClientID:           googleClientID,
		JWTSecret:                getEnvOrDefault("JWT_SECRET", "your-secret-key"),
		AccessTokenTTL:           tokenTTL,
		GeminiAPIKey:             geminiAPIKey,
		GeminiAPIURL:             os.Getenv("GEMINI_API_URL"),
		YahooBaseURL:             os.Getenv("YAHOO_BASE_URL"),
		QuoteCacheTTL:            cacheTTL,
		QuoteWriteInterval:       writeInterval,
		UpstreamTimeout:          upstreamTimeout,
		WatchlistRefreshInterval: refreshInterval,
		StaticDir:                getEnvOrDefault("STATIC_DIR", "static"),
		LogLevel:                 getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
