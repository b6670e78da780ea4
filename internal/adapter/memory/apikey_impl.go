package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/user/phishguard/internal/repository"
	"github.com/user/phishguard/pkg/utils"
)

const apiKeyCacheSize = 10000

// APIKeyRepoImpl keeps issued keys in an expiring LRU. The TTL is fixed when the cache is built;
// re-adding a key on use resets its expiry.
type APIKeyRepoImpl struct {
	cache *expirable.LRU[string, struct{}]
}

// NewAPIKeyRepo creates a key cache whose entries expire after ttl without use.
func NewAPIKeyRepo(ttl time.Duration) *APIKeyRepoImpl {
	return &APIKeyRepoImpl{cache: expirable.NewLRU[string, struct{}](apiKeyCacheSize, nil, ttl)}
}

var _ repository.APIKeyRepository = (*APIKeyRepoImpl)(nil)

func (r *APIKeyRepoImpl) Save(_ context.Context, key string, _ time.Duration) error {
	r.cache.Add(utils.HashKey(key), struct{}{})
	return nil
}

func (r *APIKeyRepoImpl) Touch(_ context.Context, key string, _ time.Duration) (bool, error) {
	hashed := utils.HashKey(key)
	if _, ok := r.cache.Get(hashed); !ok {
		return false, nil
	}
	r.cache.Add(hashed, struct{}{})
	return true, nil
}
