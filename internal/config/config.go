package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	StoreAPI    StoreAPIConfig
	Kafka       KafkaConfig
	Admin       AdminConfig
	Tax         TaxConfig
}

type StoreConfig struct {
	Driver     string
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// StoreAPIConfig points at the remote product/order/review REST API
type StoreAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AdminConfig struct {
	APIKeyHash string
}

type TaxConfig struct {
	DefaultRate float64
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", StoreDriverSQLite)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}
	redisTTL, err := time.ParseDuration(getEnvOrViper("REDIS_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_TTL must be a duration: %w", err)
	}
	apiTimeout, err := time.ParseDuration(getEnvOrViper("STORE_API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("STORE_API_TIMEOUT must be a duration: %w", err)
	}
	defaultRate, err := strconv.ParseFloat(getEnvOrViper("TAX_DEFAULT_RATE", "0.05"), 64)
	if err != nil || defaultRate < 0 || defaultRate >= 1 {
		return nil, fmt.Errorf("TAX_DEFAULT_RATE must be a fraction between 0 and 1")
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnvOrViper("STORE_DRIVER", StoreDriverSQLite)),
			SQLitePath: getEnvOrViper("SQLITE_PATH", "storefront.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
			TTL:      redisTTL,
		},
		StoreAPI: StoreAPIConfig{
			BaseURL: strings.TrimSuffix(getEnvOrViper("STORE_API_URL", "http://127.0.0.1:8000/api"), "/"),
			Timeout: apiTimeout,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnvOrViper("KAFKA_BROKERS", "")),
			Topic:   getEnvOrViper("KAFKA_TOPIC", "storefront.orders"),
		},
		Admin: AdminConfig{
			APIKeyHash: getEnvOrViper("ADMIN_API_KEY_HASH", ""),
		},
		Tax: TaxConfig{
			DefaultRate: defaultRate,
		},
	}

	// Validate required fields
	switch cfg.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis, StoreDriverSQLite, StoreDriverPostgres:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be one of memory, redis, sqlite, postgres (got %q)", cfg.Store.Driver)
	}
	if cfg.StoreAPI.BaseURL == "" {
		return nil, fmt.Errorf("STORE_API_URL is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
