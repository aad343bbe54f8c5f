package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port      string
	AuthToken string

	StoreBackend      string
	DBURL             string
	DBAutoMigrate     bool
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	DocstoreURL         string
	DocstoreAPIKey      string
	DocstoreTimeoutSecs int

	CatalogStrategy     catalog.Strategy
	QuerySlackSecs      int
	FetchTimeoutSecs    int
	RefreshIntervalSecs int

	ReadTimeoutSecs  int
	WriteTimeoutSecs int
	IdleTimeoutSecs  int
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		AuthToken:           os.Getenv("AUTH_TOKEN"),
		StoreBackend:        getEnv("STORE_BACKEND", BackendPostgres),
		DBURL:               os.Getenv("DB_URL"),
		DBAutoMigrate:       getEnvBool("DB_AUTO_MIGRATE", true),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:          getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:       getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:       getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:   getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:    getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		DocstoreURL:         os.Getenv("DOCSTORE_URL"),
		DocstoreAPIKey:      os.Getenv("DOCSTORE_API_KEY"),
		DocstoreTimeoutSecs: getEnvInt("DOCSTORE_TIMEOUT_SECS", 5),
		QuerySlackSecs:      getEnvInt("CATALOG_QUERY_SLACK_SECS", 1),
		FetchTimeoutSecs:    getEnvInt("CATALOG_FETCH_TIMEOUT_SECS", 10),
		RefreshIntervalSecs: getEnvInt("CATALOG_REFRESH_INTERVAL_SECS", 300),
		ReadTimeoutSecs:     getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:    getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:     getEnvInt("SERVER_IDLE_TIMEOUT", 60),
	}

	strategy, err := catalog.ParseStrategy(getEnv("CATALOG_STRATEGY", string(catalog.StrategyScan)))
	if err != nil {
		return Config{}, fmt.Errorf("CATALOG_STRATEGY: %w", err)
	}
	cfg.CatalogStrategy = strategy

	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN is required")
	}

	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required")
		}
		if cfg.DBMaxConns <= 0 {
			return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
		}
		if cfg.DBMinConns < 0 {
			return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
		}
		if cfg.DBMinConns > cfg.DBMaxConns {
			return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
		}
		if cfg.DBStatementCache < 0 {
			return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
		}
	case BackendHTTP:
		if cfg.DocstoreURL == "" {
			return Config{}, fmt.Errorf("DOCSTORE_URL is required")
		}
		if cfg.DocstoreAPIKey == "" {
			return Config{}, fmt.Errorf("DOCSTORE_API_KEY is required")
		}
		if cfg.DocstoreTimeoutSecs <= 0 {
			return Config{}, fmt.Errorf("DOCSTORE_TIMEOUT_SECS must be positive")
		}
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendHTTP, cfg.StoreBackend)
	}

	if cfg.QuerySlackSecs < 0 {
		return Config{}, fmt.Errorf("CATALOG_QUERY_SLACK_SECS must be non-negative")
	}
	if cfg.FetchTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("CATALOG_FETCH_TIMEOUT_SECS must be positive")
	}
	if cfg.RefreshIntervalSecs < 0 {
		return Config{}, fmt.Errorf("CATALOG_REFRESH_INTERVAL_SECS must be non-negative")
	}

	return cfg, nil
}

// QuerySlack is the widening applied to pushed range bounds.
func (c Config) QuerySlack() time.Duration {
	return time.Duration(c.QuerySlackSecs) * time.Second
}

// FetchTimeout bounds one catalog load.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

// RefreshInterval is the background refresh period; zero disables it.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSecs) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
