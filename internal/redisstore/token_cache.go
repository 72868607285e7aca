package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spectrumhub/models"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "auth:token:"

// TokenCache remembers identities resolved from access tokens.
// Keys are token fingerprints, never raw tokens.
type TokenCache struct {
	rdb *redis.Client
}

func NewTokenCache(rdb *redis.Client) *TokenCache {
	return &TokenCache{rdb: rdb}
}

// Get returns the cached identity, or nil when there is none.
func (c *TokenCache) Get(ctx context.Context, fingerprint string) (*models.Identity, error) {
	data, err := c.rdb.Get(ctx, tokenKeyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode cached identity: %w", err)
	}
	return &identity, nil
}

func (c *TokenCache) Set(ctx context.Context, fingerprint string, identity *models.Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, tokenKeyPrefix+fingerprint, data, ttl).Err()
}

// Delete drops a cached token, used on sign out.
func (c *TokenCache) Delete(ctx context.Context, fingerprint string) error {
	return c.rdb.Del(ctx, tokenKeyPrefix+fingerprint).Err()
}
