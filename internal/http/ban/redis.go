package ban

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JesseBremer/journal-mate/internal/logger"
)

const (
	strikeKeyPrefix = "ratelimit:strikes:"
	banKeyPrefix    = "ratelimit:ban:"
	DailyBanLogKey  = "ratelimit:banlog:daily"

	banLogTTL = 24 * time.Hour
	// banLogMax caps the daily log; older events are trimmed first.
	banLogMax = 1000
)

// RedisTracker shares strikes and bans across server instances.
type RedisTracker struct {
	rdb    *redis.Client
	policy Policy
}

func NewRedisTracker(rdb *redis.Client, policy Policy) *RedisTracker {
	return &RedisTracker{rdb: rdb, policy: policy}
}

func (r *RedisTracker) IsBanned(ctx context.Context, target string) (bool, error) {
	n, err := r.rdb.Exists(ctx, banKeyPrefix+target).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}
	return n > 0, nil
}

func (r *RedisTracker) Strike(ctx context.Context, target, route string) (bool, error) {
	banned, err := r.IsBanned(ctx, target)
	if err != nil || banned {
		return banned, err
	}

	strikeKey := strikeKeyPrefix + target
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, strikeKey)
	pipe.ExpireNX(ctx, strikeKey, r.policy.StrikeWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record strike: %w", err)
	}

	strikes := int(incr.Val())
	if strikes < r.policy.MaxStrikes {
		return false, nil
	}

	pipe = r.rdb.TxPipeline()
	pipe.Set(ctx, banKeyPrefix+target, route, r.policy.BanDuration)
	pipe.Del(ctx, strikeKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to ban %s: %w", target, err)
	}

	entry := BanLogEntry{Target: target, Route: route, Strikes: strikes, Time: time.Now().UTC()}
	logBan(entry, r.policy.BanDuration)
	if data, err := json.Marshal(entry); err == nil {
		pipe = r.rdb.TxPipeline()
		pipe.RPush(ctx, DailyBanLogKey, data)
		pipe.LTrim(ctx, DailyBanLogKey, -banLogMax, -1)
		pipe.ExpireNX(ctx, DailyBanLogKey, banLogTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warningf("failed to append ban log: %v", err)
		}
	}
	return true, nil
}

// BanLog returns the ban events of the current day, oldest first. At most
// banLogMax events are kept.
func (r *RedisTracker) BanLog(ctx context.Context) ([]BanLogEntry, error) {
	items, err := r.rdb.LRange(ctx, DailyBanLogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ban log: %w", err)
	}

	entries := make([]BanLogEntry, 0, len(items))
	for _, item := range items {
		var entry BanLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
