package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-converter/internal/adapter/kvstore"
	"fx-converter/internal/config"
	"fx-converter/pkg/logger"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Run("file", func(t *testing.T) {
		kv, closeFn, err := openStore(ctx, config.StoreConfig{Backend: config.StoreBackendFile, FileDir: t.TempDir()}, log)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &kvstore.FileStore{}, kv)
	})

	t.Run("memory", func(t *testing.T) {
		kv, closeFn, err := openStore(ctx, config.StoreConfig{Backend: config.StoreBackendMemory, MemorySize: 1024 * 1024}, log)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &kvstore.MemoryStore{}, kv)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		kv, closeFn, err := openStore(ctx, config.StoreConfig{
			Backend:        config.StoreBackendRedis,
			RedisAddr:      mr.Addr(),
			RedisPrefix:    "fx:",
			ConnectTimeout: time.Second,
		}, log)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, kv.Set(ctx, "fx_cache", "{}"))
		assert.True(t, mr.Exists("fx:fx_cache"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := openStore(ctx, config.StoreConfig{
			Backend:        config.StoreBackendRedis,
			RedisAddr:      addr,
			ConnectTimeout: 200 * time.Millisecond,
		}, log)
		assert.Error(t, err)
	})
}
