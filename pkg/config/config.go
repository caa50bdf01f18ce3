package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage paths
	PortfoliosDir string // portfolio ledger JSON files
	CacheDir      string // cached per-ticker return tables

	// Ledger backend: "file" or "postgres"
	LedgerBackend string

	// Database (only used when LedgerBackend is "postgres")
	Database DatabaseConfig

	// Redis (optional shared cache tier)
	Redis RedisConfig

	// Market data provider
	MarketData MarketDataConfig

	// Analytics defaults
	RiskFreeRate   float64 // annualized, decimal (fallback when the live fetch fails)
	RiskFreeTicker string  // yield index quoted in percent, e.g. ^IRX

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MarketDataConfig holds price provider configuration
type MarketDataConfig struct {
	ChartBaseURL   string  // daily OHLCV history endpoint
	QuoteBaseURL   string  // HTML quote page (live price fallback)
	StreamURL      string  // websocket trade stream
	RequestsPerSec float64 // client-side rate limit
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	home, _ := os.UserHomeDir()
	dataRoot := getEnv("QT_DATA_DIR", filepath.Join(home, ".quantterm"))

	cfg := &Config{
		Port: getEnv("PORT", "8091"),
		Env:  getEnv("ENV", "development"),

		PortfoliosDir: getEnv("QT_PORTFOLIOS_DIR", filepath.Join(dataRoot, "portfolios")),
		CacheDir:      getEnv("QT_CACHE_DIR", filepath.Join(dataRoot, "cache", "returns")),

		LedgerBackend: getEnv("QT_LEDGER_BACKEND", "file"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			ChartBaseURL:   getEnv("MD_CHART_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteBaseURL:   getEnv("MD_QUOTE_BASE_URL", "https://finance.yahoo.com/quote"),
			StreamURL:      getEnv("MD_STREAM_URL", "wss://streamer.finance.yahoo.com"),
			RequestsPerSec: getEnvAsFloat("MD_REQUESTS_PER_SEC", 4.0),
		},

		RiskFreeRate:   getEnvAsFloat("QT_RISK_FREE_RATE", 0.05),
		RiskFreeTicker: getEnv("QT_RISK_FREE_TICKER", "^IRX"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.LedgerBackend {
	case "file":
		// no extra requirements
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when QT_LEDGER_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("QT_LEDGER_BACKEND must be one of: file, postgres")
	}

	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("QT_RISK_FREE_RATE must be a decimal in [0, 1]")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
