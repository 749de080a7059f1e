package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.StoreAPI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.StoreAPI.Timeout)
	assert.Equal(t, 0.05, cfg.Tax.DefaultRate)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STORE_API_URL", "https://shop.example.com/api/")
	t.Setenv("TAX_DEFAULT_RATE", "0.13")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "https://shop.example.com/api", cfg.StoreAPI.BaseURL)
	assert.Equal(t, 0.13, cfg.Tax.DefaultRate)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoad_RejectsBadRate(t *testing.T) {
	t.Setenv("TAX_DEFAULT_RATE", "5")

	_, err := Load()
	assert.ErrorContains(t, err, "TAX_DEFAULT_RATE")
}
