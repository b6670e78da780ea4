package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/user/phishguard/internal/repository"
)

const updatesCounterKey = "phish:updates"

// StatsRepoImpl keeps service counters in Redis.
type StatsRepoImpl struct {
	client *redis.Client
}

// NewStatsRepo creates a new instance of StatsRepoImpl.
func NewStatsRepo(client *redis.Client) *StatsRepoImpl {
	return &StatsRepoImpl{client: client}
}

var _ repository.StatsRepository = (*StatsRepoImpl)(nil)

func (r *StatsRepoImpl) IncrUpdates(ctx context.Context) (int64, error) {
	return r.client.Incr(ctx, updatesCounterKey).Result()
}

func (r *StatsRepoImpl) Updates(ctx context.Context) (int64, error) {
	n, err := r.client.Get(ctx, updatesCounterKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
