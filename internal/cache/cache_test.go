package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCache 对任意缓存实现执行相同的基本检查
func exerciseCache(t *testing.T, cache Cache) {
	ctx := context.Background()

	err := cache.Set(ctx, "key1", "value1", 0) // 使用默认TTL
	require.NoError(t, err)

	val, found, err := cache.Get(ctx, "key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	// 不存在的键
	val, found, err = cache.Get(ctx, "non-existent")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	// 删除
	require.NoError(t, cache.Set(ctx, "to-delete", "delete-me", 0))
	require.NoError(t, cache.Delete(ctx, "to-delete"))
	_, found, err = cache.Get(ctx, "to-delete")
	assert.NoError(t, err)
	assert.False(t, found)

	// 清空
	require.NoError(t, cache.Set(ctx, "key2", "value2", 0))
	require.NoError(t, cache.Clear(ctx))
	_, found, err = cache.Get(ctx, "key2")
	assert.NoError(t, err)
	assert.False(t, found)
}

// TestMemoryCache 测试内存缓存
func TestMemoryCache(t *testing.T) {
	cache, err := NewMemoryCache(Config{
		Type:            "memory",
		DefaultTTL:      time.Second * 2,
		CleanupInterval: time.Second,
	})
	require.NoError(t, err)
	exerciseCache(t, cache)

	t.Run("expiration", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, "expire-soon", "temp-value", time.Millisecond*100))
		time.Sleep(time.Millisecond * 300)

		_, found, err := cache.Get(ctx, "expire-soon")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

// TestRedisCache 使用miniredis测试Redis缓存
func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cache, err := NewRedisCache(Config{
		Type:       "redis",
		RedisAddr:  mr.Addr(),
		KeyPrefix:  "test",
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	exerciseCache(t, cache)

	t.Run("prefix and ttl", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, "k", "v", 0))
		assert.True(t, mr.Exists("test:k"))
		assert.Equal(t, time.Minute, mr.TTL("test:k"))

		mr.FastForward(2 * time.Minute)
		_, found, err := cache.Get(ctx, "k")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clear keeps foreign keys", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, mr.Set("other:key", "keep"))
		require.NoError(t, cache.Set(ctx, "mine", "drop", 0))

		require.NoError(t, cache.Clear(ctx))
		assert.True(t, mr.Exists("other:key"))
		assert.False(t, mr.Exists("test:mine"))
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewRedisCache(Config{RedisAddr: "127.0.0.1:1"})
		assert.Error(t, err)
	})
}

// TestCacheFactory 测试缓存工厂函数
func TestCacheFactory(t *testing.T) {
	memCache, err := NewCache(DefaultConfig())
	assert.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, memCache)

	mr := miniredis.RunT(t)
	redisCache, err := NewCache(Config{Type: "redis", RedisAddr: mr.Addr()})
	assert.NoError(t, err)
	assert.IsType(t, &RedisCache{}, redisCache)

	// 未知类型回退到内存缓存
	unknownCache, err := NewCache(Config{Type: "unknown-type"})
	assert.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, unknownCache)
}

// TestGenerateCacheKey 测试缓存键生成
func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "prefix", GenerateCacheKey("prefix"))
	assert.Equal(t, "prefix:part1", GenerateCacheKey("prefix", "part1"))
	assert.Equal(t, "prefix:part1:part2:part3", GenerateCacheKey("prefix", "part1", "part2", "part3"))

	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
	assert.Len(t, ContentHash(""), 64)
}
