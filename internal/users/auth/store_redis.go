// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/codetrack/internal/platform/constants"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	rediskey "github.com/taibuivan/codetrack/internal/platform/redis"
)

// RedisRefreshTokenRepository implements [RefreshTokenRepository] using Redis.
//
// Each token lives under auth:refresh_token:<hash> and is indexed in the set
// auth:user_tokens:<userID> so that all tokens of an account can be revoked.
type RedisRefreshTokenRepository struct {
	client *redis.Client
}

// NewRefreshTokenRepository creates a new Redis-backed [RefreshTokenRepository].
func NewRefreshTokenRepository(client *redis.Client) *RedisRefreshTokenRepository {
	return &RedisRefreshTokenRepository{client: client}
}

func tokenKey(tokenHash string) string {
	return rediskey.Key(constants.RedisPrefixRefreshToken, tokenHash)
}

func userTokensKey(userID string) string {
	return rediskey.Key(constants.RedisPrefixUserTokens, userID)
}

/*
Save stores the token and indexes it under its owner.

Parameters:
  - context: context.Context
  - tokenHash: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisRefreshTokenRepository) Save(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, tokenKey(tokenHash), userID, ttl)
		pipe.SAdd(context, userTokensKey(userID), tokenHash)
		pipe.Expire(context, userTokensKey(userID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_refresh_token_save_failed: %w", err)
	}
	return nil
}

/*
Consume reads and deletes the token in one round trip.

Returns:
  - string: owning userID
  - error: dberr.ErrNotFound or connectivity errors
*/
func (repository *RedisRefreshTokenRepository) Consume(context context.Context, tokenHash string) (string, error) {
	userID, err := repository.client.GetDel(context, tokenKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", dberr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis_refresh_token_consume_failed: %w", err)
	}

	// Index cleanup is best effort; the set expires on its own.
	_ = repository.client.SRem(context, userTokensKey(userID), tokenHash).Err()

	return userID, nil
}

// Revoke deletes a single token.
func (repository *RedisRefreshTokenRepository) Revoke(context context.Context, tokenHash string) error {
	_, err := repository.Consume(context, tokenHash)
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return fmt.Errorf("redis_refresh_token_revoke_failed: %w", err)
	}
	return nil
}

// RevokeAll deletes every token of userID together with the index set.
func (repository *RedisRefreshTokenRepository) RevokeAll(context context.Context, userID string) error {
	index := userTokensKey(userID)

	hashes, err := repository.client.SMembers(context, index).Result()
	if err != nil {
		return fmt.Errorf("redis_refresh_token_revoke_all_failed: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, tokenKey(hash))
	}
	keys = append(keys, index)

	if err := repository.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_refresh_token_revoke_all_failed: %w", err)
	}
	return nil
}
