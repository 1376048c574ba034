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

	// Live quote websocket push period
	QuoteInterval time.Duration

	// Data provider
	FMP FMPConfig

	// Batch orchestration
	Scan ScanConfig

	// Snapshot persistence
	Snapshot SnapshotConfig

	// Database (snapshot backend = postgres)
	Database DatabaseConfig

	// Redis (snapshot backend = redis, shared rate limit)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool

	// Scheduler
	DailySchedule   string // cron expression with seconds
	CanslimSchedule string // CANSLIM is not part of the daily pass
	QuoteSchedule   string // snapshot re-pricing
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey          string
	BaseURL         string
	Exchange        string // universe listing exchange (e.g. NSE)
	Timeout         time.Duration
	MaxRetries      int    // 0 = 재시도 없음
	BreakerFailures uint32 // consecutive failures before the breaker opens
}

// ScanConfig holds batch orchestration settings
type ScanConfig struct {
	Concurrency    int    // symbols in flight per batch
	ScreenerConfig string // optional YAML path with screener thresholds
}

// SnapshotConfig holds result snapshot settings
type SnapshotConfig struct {
	Backend string // file, redis, postgres
	Dir     string // file backend directory
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

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		QuoteInterval: getEnvAsDuration("WS_QUOTE_INTERVAL", "15s"),

		FMP: FMPConfig{
			APIKey:          getEnv("FMP_API_KEY", ""),
			BaseURL:         getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			Exchange:        getEnv("FMP_EXCHANGE", "NSE"),
			Timeout:         getEnvAsDuration("FMP_TIMEOUT", "30s"),
			MaxRetries:      getEnvAsInt("FMP_MAX_RETRIES", 0),
			BreakerFailures: uint32(getEnvAsInt("FMP_BREAKER_FAILURES", 10)),
		},

		Scan: ScanConfig{
			Concurrency:    getEnvAsInt("SCAN_CONCURRENCY", 4),
			ScreenerConfig: getEnv("SCREENER_CONFIG", ""),
		},

		Snapshot: SnapshotConfig{
			Backend: getEnv("SNAPSHOT_BACKEND", "file"),
			Dir:     getEnv("SNAPSHOT_DIR", "cache"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
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

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		// 매일 02:00 (UTC) 일일 분석
		DailySchedule:   getEnv("SCHEDULE_DAILY", "0 0 2 * * *"),
		CanslimSchedule: getEnv("SCHEDULE_CANSLIM", "0 30 2 * * *"),
		QuoteSchedule:   getEnv("SCHEDULE_QUOTES", "@every 15m"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.FMP.APIKey == "" {
		return fmt.Errorf("FMP_API_KEY is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("SCAN_CONCURRENCY must be >= 1")
	}

	switch c.Snapshot.Backend {
	case "file":
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("SNAPSHOT_DIR is required for the file backend")
		}
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true for the redis backend")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("SNAPSHOT_BACKEND must be one of: file, redis, postgres")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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
