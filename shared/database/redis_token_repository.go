package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

func accessKey(accessUUID string) string  { return fmt.Sprintf("access_uuid:%s", accessUUID) }
func userTokensKey(userID uuid.UUID) string { return fmt.Sprintf("user_tokens:%s", userID.String()) }

type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed TokenRepository.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) interfaces.TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

// SetToken stores access_uuid:{jti} -> userID with the token's TTL and records the jti
// in the user's set so that every session can be revoked at once.
func (r *redisTokenRepository) SetToken(ctx context.Context, td *models.TokenDetails) error {
	ttl := time.Until(time.Unix(td.ExpiresAt, 0))
	if ttl <= 0 {
		return fmt.Errorf("token %s already expired", td.AccessUUID)
	}
	setKey := userTokensKey(td.UserID)

	pipe := r.client.Pipeline()
	pipe.Set(ctx, accessKey(td.AccessUUID), td.UserID.String(), ttl)
	pipe.SAdd(ctx, setKey, td.AccessUUID)
	// Tokens share one lifetime, so the newest one always extends the set.
	pipe.Expire(ctx, setKey, ttl)

	r.logger.Debug("Storing access token",
		zap.String("userID", td.UserID.String()),
		zap.String("accessUUID", td.AccessUUID),
		zap.Duration("ttl", ttl),
	)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to set token details in redis", zap.Error(err), zap.String("userID", td.UserID.String()))
		return fmt.Errorf("failed to set token details in redis: %w", err)
	}
	return nil
}

// GetUserIDByAccessUUID returns ErrTokenNotFound for revoked or expired tokens.
func (r *redisTokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	key := accessKey(accessUUID)
	userIDStr, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Access token not found in Redis", zap.String("accessUUID", accessUUID))
			return uuid.Nil, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get token from redis", zap.Error(err), zap.String("key", key))
		return uuid.Nil, fmt.Errorf("failed to get token from redis: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		r.logger.Error("Corrupted userID stored for access token",
			zap.Error(err),
			zap.String("accessUUID", accessUUID),
			zap.String("value", userIDStr),
		)
		return uuid.Nil, fmt.Errorf("corrupted userID data in redis for access token %s: %w", accessUUID, err)
	}
	return userID, nil
}

// DeleteToken is idempotent: deleting an unknown token reports 0 and no error.
func (r *redisTokenRepository) DeleteToken(ctx context.Context, userID uuid.UUID, accessUUID string) (int64, error) {
	log := r.logger.With(zap.String("userID", userID.String()), zap.String("accessUUID", accessUUID))

	pipe := r.client.Pipeline()
	delCmd := pipe.Del(ctx, accessKey(accessUUID))
	pipe.SRem(ctx, userTokensKey(userID), accessUUID)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("Failed to delete token", zap.Error(err))
		return 0, fmt.Errorf("failed to delete token: %w", err)
	}

	deleted, _ := delCmd.Result()
	if deleted == 0 {
		log.Warn("Attempted to delete non-existent access token")
	} else {
		log.Info("Access token deleted")
	}
	return deleted, nil
}

// DeleteTokensByUserID revokes every session recorded in the user's set.
func (r *redisTokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := r.logger.With(zap.String("userID", userID.String()))
	setKey := userTokensKey(userID)

	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error("Failed to read user token set", zap.Error(err))
		return 0, fmt.Errorf("failed to retrieve tokens for user %s: %w", userID, err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, accessKey(id))
	}

	pipe := r.client.Pipeline()
	var delCmd *redis.IntCmd
	if len(keys) > 0 {
		delCmd = pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, setKey)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("Failed to delete user tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to delete tokens for user %s: %w", userID, err)
	}

	var deleted int64
	if delCmd != nil {
		deleted, _ = delCmd.Result()
	}
	log.Info("Deleted all tokens for user", zap.Int64("deleted", deleted), zap.Int("found", len(ids)))
	return deleted, nil
}
