package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/phishguard/internal/repository"
	"github.com/user/phishguard/pkg/utils"
)

const apiKeyPrefix = "apikey:"

// APIKeyRepoImpl provides a concrete implementation for the APIKeyRepository interface using Redis.
type APIKeyRepoImpl struct {
	client *redis.Client
}

// NewAPIKeyRepo creates a new instance of APIKeyRepoImpl.
func NewAPIKeyRepo(client *redis.Client) *APIKeyRepoImpl {
	return &APIKeyRepoImpl{client: client}
}

var _ repository.APIKeyRepository = (*APIKeyRepoImpl)(nil)

// generateKey hashes the API key so raw keys never sit in Redis.
func (r *APIKeyRepoImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", apiKeyPrefix, utils.HashKey(key))
}

// Save stores the key with an expiry.
func (r *APIKeyRepoImpl) Save(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(key), "1", ttl).Err()
}

// Touch refreshes the expiry of a live key. EXPIRE returns false when the key does not exist.
func (r *APIKeyRepoImpl) Touch(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.Expire(ctx, r.generateKey(key), ttl).Result()
}
