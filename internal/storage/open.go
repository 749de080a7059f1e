package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

// Open builds the Store selected by cfg.Store.Driver. The returned func
// releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return NewRedisStore(client, cfg.Redis.TTL), func() { client.Close() }, nil

	case config.StoreDriverSQLite:
		db, err := NewSQLiteConnection(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return migrated(db, DialectSQLite, logger)

	case config.StoreDriverPostgres:
		db, err := NewPostgresConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return migrated(db, DialectPostgres, logger)

	case config.StoreDriverMemory:
		return NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func migrated(db *sql.DB, dialect Dialect, logger *zap.Logger) (Store, func(), error) {
	store := NewSQLStore(db, dialect, logger)
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}
