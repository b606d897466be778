package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config travel-registry（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Auth struct {
		JWTSecret string
		Issuer    string
	}
	Scan ScanConfig
	Log  struct {
		Level  string
		Format string
	}
	// RequestTimeout bounds every store/cache call made on behalf of one
	// inbound request.
	RequestTimeout time.Duration
}

// DatabaseConfig PostgreSQL 连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// ScanConfig throttle settings for the anonymous scan endpoint.
type ScanConfig struct {
	// RateLimit admits at most this many recorded scans per origin per
	// RateWindow.
	RateLimit  int64
	RateWindow time.Duration
	// DedupWindow suppresses repeat scans of the same vehicle from the same
	// origin.
	DedupWindow time.Duration
}

func Load() *Config {
	// Best-effort: local dev keeps secrets in .env, deployments use real env.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true; when the DB is unavailable the service falls back to
	// in-memory repos so the dashboard pages stay reachable in local dev.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "travel_registry")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", "travel-registry")

	cfg.Scan.RateLimit = int64(parseInt(getEnv("SCAN_RATE_LIMIT", "10"), 10))
	cfg.Scan.RateWindow = parseDuration(getEnv("SCAN_RATE_WINDOW", "15m"), 15*time.Minute)
	cfg.Scan.DedupWindow = parseDuration(getEnv("SCAN_DEDUP_WINDOW", "60s"), 60*time.Second)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.RequestTimeout = parseDuration(getEnv("REQUEST_TIMEOUT", "10s"), 10*time.Second)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
