package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// exerciseStore runs the contract every backend has to satisfy.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[{"id":"1"}]`)))
	value, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(value))

	// last write wins
	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
	value, err = store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Remove(ctx, KeyCart))
	_, err = store.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	// removing a missing key is not an error
	assert.NoError(t, store.Remove(ctx, "missing"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", original))
	original[0] = 'x'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(value))
}

func TestWithPrefix_IsolatesSessions(t *testing.T) {
	inner := NewMemoryStore()
	ctx := context.Background()

	a := WithPrefix(inner, SessionPrefix("a"))
	b := WithPrefix(inner, SessionPrefix("b"))

	require.NoError(t, a.Set(ctx, KeyCart, []byte("A")))
	_, err := b.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := inner.Get(ctx, "session:a:cart")
	require.NoError(t, err)
	assert.Equal(t, "A", string(raw))

	exerciseStore(t, b)
}

func TestLocalReviewsKey_Format(t *testing.T) {
	assert.Equal(t, "reviews_local_42", LocalReviewsKey("42"))
}

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t)
	exerciseStore(t, store)
}

func TestRedisStore_SetsTTL(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(context.Background(), "session:x:cart", []byte("[]")))
	assert.Equal(t, time.Hour, mr.TTL("session:x:cart"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(context.Background(), "session:x:cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func setupTestSQLite(t *testing.T) *SQLStore {
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(db, DialectSQLite, zap.NewNop())
	require.NoError(t, store.Migrate())
	return store
}

func TestSQLStore_SQLite(t *testing.T) {
	exerciseStore(t, setupTestSQLite(t))
}

func TestSQLStore_MigrateIsIdempotent(t *testing.T) {
	store := setupTestSQLite(t)
	assert.NoError(t, store.Migrate())
}

func TestSQLStore_Rebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "VALUES (?, ?)", lite.rebind("VALUES (?, ?)"))
}
