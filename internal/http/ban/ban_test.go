package ban

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = Policy{MaxStrikes: 3, StrikeWindow: time.Minute, BanDuration: 5 * time.Minute}

func TestMemoryTracker_BansAfterMaxStrikes(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	tr := NewMemoryTracker(testPolicy)
	tr.now = func() time.Time { return clock }

	for i := 1; i < testPolicy.MaxStrikes; i++ {
		banned, err := tr.Strike(ctx, "1.2.3.4", "/api/login")
		require.NoError(t, err)
		assert.False(t, banned, "strike %d", i)
	}

	banned, err := tr.Strike(ctx, "1.2.3.4", "/api/login")
	require.NoError(t, err)
	assert.True(t, banned)

	banned, _ = tr.IsBanned(ctx, "1.2.3.4")
	assert.True(t, banned)
	banned, _ = tr.IsBanned(ctx, "5.6.7.8")
	assert.False(t, banned)

	clock = clock.Add(testPolicy.BanDuration + time.Second)
	banned, _ = tr.IsBanned(ctx, "1.2.3.4")
	assert.False(t, banned, "ban expires")
}

func TestMemoryTracker_WindowResets(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	tr := NewMemoryTracker(testPolicy)
	tr.now = func() time.Time { return clock }

	for range make([]struct{}, testPolicy.MaxStrikes-1) {
		_, err := tr.Strike(ctx, "1.2.3.4", "/api/login")
		require.NoError(t, err)
	}

	clock = clock.Add(testPolicy.StrikeWindow + time.Second)
	banned, err := tr.Strike(ctx, "1.2.3.4", "/api/login")
	require.NoError(t, err)
	assert.False(t, banned, "old strikes fall out of the window")

	tr.Reset()
	banned, _ = tr.IsBanned(ctx, "1.2.3.4")
	assert.False(t, banned)
}

func TestMemoryTracker_RemoveExpired(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	tr := NewMemoryTracker(testPolicy)
	tr.now = func() time.Time { return clock }

	for i := 0; i < 50; i++ {
		_, err := tr.Strike(ctx, "10.0.0."+strconv.Itoa(i), "/api/login")
		require.NoError(t, err)
	}
	for range make([]struct{}, testPolicy.MaxStrikes) {
		_, err := tr.Strike(ctx, "1.2.3.4", "/api/login")
		require.NoError(t, err)
	}
	assert.Equal(t, 51, tr.Len())
	assert.Zero(t, tr.RemoveExpired(), "open windows are kept")

	clock = clock.Add(testPolicy.StrikeWindow + time.Second)
	assert.Equal(t, 50, tr.RemoveExpired())
	assert.Equal(t, 1, tr.Len())
	banned, _ := tr.IsBanned(ctx, "1.2.3.4")
	assert.True(t, banned, "active bans survive pruning")

	clock = clock.Add(testPolicy.BanDuration)
	assert.Equal(t, 1, tr.RemoveExpired())
	assert.Zero(t, tr.Len())
}

func TestRedisTracker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	target := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { rdb.Del(ctx, banKeyPrefix+target, strikeKeyPrefix+target) })

	tr := NewRedisTracker(rdb, testPolicy)
	for i := 1; i < testPolicy.MaxStrikes; i++ {
		banned, err := tr.Strike(ctx, target, "/api/register")
		require.NoError(t, err)
		assert.False(t, banned)
	}
	banned, err := tr.Strike(ctx, target, "/api/register")
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = tr.IsBanned(ctx, target)
	require.NoError(t, err)
	assert.True(t, banned)

	ttl, err := rdb.TTL(ctx, banKeyPrefix+target).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, testPolicy.BanDuration)

	logTTL, err := rdb.TTL(ctx, DailyBanLogKey).Result()
	require.NoError(t, err)
	assert.Positive(t, logTTL)
	assert.LessOrEqual(t, logTTL, banLogTTL)

	log, err := tr.BanLog(ctx)
	require.NoError(t, err)
	found := false
	for _, e := range log {
		if e.Target == target {
			found = true
		}
	}
	assert.True(t, found)
}
