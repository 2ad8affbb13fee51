package config

import (
	"os"
	"strconv"
	"time"

	"ticketon/internal/cache"
	"ticketon/internal/database"
	"ticketon/internal/external"
	"ticketon/internal/messaging"
	"ticketon/internal/search"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database      database.Config
	Valkey        cache.Config
	NATS          messaging.Config
	Elasticsearch search.Config
	Payment       external.PaymentConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "ticketon"),
			Password:           getEnv("DB_PASSWORD", "ticketon"),
			DBName:             getEnv("DB_NAME", "ticketon"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Valkey: cache.Config{
			Addr:         getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:     getEnv("VALKEY_PASSWORD", ""),
			UsersHashKey: getEnv("VALKEY_USERS_HASH_KEY", "users:auth"),
			ListTTL:      time.Duration(getEnvInt("VALKEY_LIST_TTL_SEC", 30)) * time.Second,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "ticketon"),
			ClientID:  getEnv("NATS_CLIENT_ID", "ticketon-api"),
		},

		Elasticsearch: search.Config{
			Enabled:    getEnv("ES_ENABLED", "false") == "true",
			URL:        getEnv("ES_URL", "http://localhost:9200"),
			Username:   getEnv("ES_USERNAME", ""),
			Password:   getEnv("ES_PASSWORD", ""),
			Index:      getEnv("ES_INDEX", "events"),
			MaxRetries: getEnvInt("ES_MAX_RETRIES", 3),
		},

		Payment: external.PaymentConfig{
			Delay:    time.Duration(getEnvInt("PAYMENT_DELAY_MS", 150)) * time.Millisecond,
			Currency: getEnv("PAYMENT_CURRENCY", "EUR"),
		},
	}
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
