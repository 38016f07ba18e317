package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-converter/internal/domain/ports"
	"fx-converter/pkg/logger"
)

// exerciseStore runs the behaviour every KeyValueStore backend must share.
func exerciseStore(t *testing.T, store ports.KeyValueStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ports.ErrKeyNotFound)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "fx_cache", `{"JPY_CZK":{"rate":0.163,"date":"2026-02-01"}}`))

		value, err := store.Get(ctx, "fx_cache")
		require.NoError(t, err)
		assert.Equal(t, `{"JPY_CZK":{"rate":0.163,"date":"2026-02-01"}}`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "overwrite", "first"))
		require.NoError(t, store.Set(ctx, "overwrite", "second"))

		value, err := store.Get(ctx, "overwrite")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("empty value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "empty", ""))

		value, err := store.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(10*1024*1024))
}

func TestMemoryStore_LargeEntry(t *testing.T) {
	// freecache rounds tiny caches up to 512KB, so entries above 512 bytes are rejected.
	store := NewMemoryStore(1)

	err := store.Set(context.Background(), "big", string(make([]byte, 4096)))
	assert.Error(t, err)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStore_KeyEscaping(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "a/b", "value"))

	_, err = os.Stat(filepath.Join(dir, "a%2Fb.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "fx_cache", "{}"))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	value, err := second.Get(context.Background(), "fx_cache")
	require.NoError(t, err)
	assert.Equal(t, "{}", value)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	exerciseStore(t, NewRedisStoreWithClient(client, "fx:"))

	raw, err := mr.Get("fx:fx_cache")
	require.NoError(t, err)
	assert.Contains(t, raw, "JPY_CZK")
	assert.False(t, mr.Exists("fx_cache"))
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, closeFn, err := NewRedisStore(context.Background(), RedisConfig{
		Addr:           mr.Addr(),
		Prefix:         "fx:",
		ConnectTimeout: time.Second,
	}, logger.NewNop())
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	raw, err := mr.Get("fx:k")
	require.NoError(t, err)
	assert.Equal(t, "v", raw)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := NewRedisStore(context.Background(), RedisConfig{
		Addr:           addr,
		ConnectTimeout: 200 * time.Millisecond,
	}, logger.NewNop())
	assert.Error(t, err)
}
