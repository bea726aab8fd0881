package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.LeaderboardCache = (*redisLeaderboardCache)(nil)

// DefaultLeaderboardTTL bounds how stale a cached board may be.
const DefaultLeaderboardTTL = 30 * time.Second

type redisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLeaderboardCache caches leaderboards as JSON under leaderboard:{level}:{limit}.
// A ttl <= 0 selects DefaultLeaderboardTTL.
func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultLeaderboardTTL
	}
	return &redisLeaderboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisLeaderboardCache"),
	}
}

func boardKey(level models.Level, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d", level, limit)
}

// boardIndexKey holds the board keys cached for a level.
func boardIndexKey(level models.Level) string {
	return fmt.Sprintf("leaderboard_keys:%s", level)
}

func (c *redisLeaderboardCache) Get(ctx context.Context, level models.Level, limit int) ([]models.RankedBest, bool, error) {
	key := boardKey(level, limit)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		c.logger.Error("Failed to read cached leaderboard", zap.Error(err), zap.String("key", key))
		return nil, false, fmt.Errorf("failed to read cached leaderboard: %w", err)
	}

	var rows []models.RankedBest
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.logger.Warn("Dropping corrupted cached leaderboard", zap.Error(err), zap.String("key", key))
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, level models.Level, limit int, rows []models.RankedBest) error {
	if rows == nil {
		rows = []models.RankedBest{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	key := boardKey(level, limit)
	idx := boardIndexKey(level)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	pipe.SAdd(ctx, idx, key)
	pipe.Expire(ctx, idx, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("Failed to cache leaderboard", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}
	return nil
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context, level models.Level) error {
	idx := boardIndexKey(level)
	keys, err := c.client.SMembers(ctx, idx).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list cached leaderboards: %w", err)
	}
	keys = append(keys, idx)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("Failed to invalidate leaderboard", zap.Error(err), zap.String("level", level.String()))
		return fmt.Errorf("failed to invalidate leaderboard: %w", err)
	}
	c.logger.Debug("Leaderboard cache invalidated", zap.String("level", level.String()), zap.Int("keys", len(keys)-1))
	return nil
}
