package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDenylist stores revoked token IDs in redis with a TTL matching the
// token's remaining lifetime.
type RedisDenylist struct {
	Redis  *redis.Client
	Prefix string
}

func (d *RedisDenylist) key(tokenID string) string {
	if d.Prefix == "" {
		return "revoked:" + tokenID
	}
	return d.Prefix + ":revoked:" + tokenID
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if d.Redis == nil {
		return errors.New("missing redis client")
	}
	return d.Redis.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d.Redis == nil {
		return false, nil
	}

	_, err := d.Redis.Get(ctx, d.key(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
