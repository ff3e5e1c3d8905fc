package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheService_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	svc := NewCacheService(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", sample{Name: "a", Count: 2}))

	var got sample
	found, err := svc.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "a", Count: 2}, got)
	assert.Equal(t, time.Hour, mr.TTL("k"))

	require.NoError(t, svc.Delete(ctx, "k"))
	found, err = svc.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_Expiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	svc := NewCacheService(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.SetWithTTL(ctx, "short", sample{Name: "x"}, time.Second))
	mr.FastForward(2 * time.Second)

	var got sample
	found, err := svc.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_HealthCheck(t *testing.T) {
	mr, client := setupTestRedis(t)
	svc := NewCacheService(client, time.Hour)

	assert.NoError(t, svc.HealthCheck(context.Background()))
	mr.Close()
	assert.Error(t, svc.HealthCheck(context.Background()))
}

func TestLocalCache(t *testing.T) {
	c := NewLocalCache(0)
	ctx := context.Background()

	in := sample{Name: "report", Count: 3}
	require.NoError(t, c.Set(ctx, "k", &in))
	in.Count = 99

	var got sample
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.Count, "stored value must not alias the caller's")

	require.NoError(t, c.SetWithTTL(ctx, "gone", in, time.Nanosecond))
	time.Sleep(time.Millisecond)
	found, err = c.Get(ctx, "gone", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisLockManager_TryLock(t *testing.T) {
	_, client := setupTestRedis(t)
	locker := NewRedisLockManager(client, 5*time.Second, zap.NewNop())
	ctx := context.Background()

	h, ok, err := locker.TryLock(ctx, "settlement:lock:run")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "settlement:lock:run")
	require.NoError(t, err)
	assert.False(t, ok, "second attempt must see contention")

	require.NoError(t, h.Unlock(ctx))

	h2, ok, err := locker.TryLock(ctx, "settlement:lock:run")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, h2.Unlock(ctx))
}

func TestRedisLockManager_ExpiredLockCanBeRetaken(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLockManager(client, time.Second, zap.NewNop())
	ctx := context.Background()

	h, ok, err := locker.TryLock(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = locker.TryLock(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Error(t, h.Unlock(ctx))
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	h, ok, err := l.TryLock(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.TryLock(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, h.Unlock(ctx))
	assert.ErrorIs(t, h.Unlock(ctx), ErrLockNotHeld)

	_, ok, err = l.TryLock(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}
