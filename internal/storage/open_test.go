package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

func TestOpen_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "memory", cfg: config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}},
		{name: "sqlite", cfg: config.Config{Store: config.StoreConfig{
			Driver:     config.StoreDriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "open.db"),
		}}},
		{name: "redis", cfg: config.Config{
			Store: config.StoreConfig{Driver: config.StoreDriverRedis},
			Redis: config.RedisConfig{Addr: mr.Addr()},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeFn, err := Open(context.Background(), &tt.cfg, zap.NewNop())
			require.NoError(t, err)
			defer closeFn()
			exerciseStore(t, store)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "etcd"}}
	_, _, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
