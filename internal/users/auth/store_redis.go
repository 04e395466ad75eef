package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openshelf/openshelf/internal/platform/constants"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/sec"
)

// RedisSessionRepository keeps sessions in Redis so they expire server-side
// and survive API restarts. Keys hold the SHA-256 digest of the token, never
// the token itself.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(token string) string {
	return constants.RedisPrefixSession + sec.HashToken(token)
}

func (repository *RedisSessionRepository) Save(ctx context.Context, token string, claims *sec.SessionClaims, ttl time.Duration) error {
	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("auth: failed to encode session: %w", err)
	}

	if err := repository.client.Set(ctx, sessionKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("auth: failed to store session: %w", err)
	}
	return nil
}

func (repository *RedisSessionRepository) Find(ctx context.Context, token string) (*sec.SessionClaims, error) {
	payload, err := repository.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("auth: failed to load session: %w", err)
	}

	claims := &sec.SessionClaims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("auth: failed to decode session: %w", err)
	}
	return claims, nil
}

func (repository *RedisSessionRepository) Revoke(ctx context.Context, token string) error {
	if err := repository.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("auth: failed to revoke session: %w", err)
	}
	return nil
}
