package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/user/phishguard/internal/repository"
)

const pendingSetKey = "phish:pending"

// PendingRepoImpl provides a concrete implementation for the PendingQueue interface using a Redis Set.
type PendingRepoImpl struct {
	client *redis.Client
}

// NewPendingRepo creates a new instance of PendingRepoImpl.
func NewPendingRepo(client *redis.Client) *PendingRepoImpl {
	return &PendingRepoImpl{client: client}
}

var _ repository.PendingQueue = (*PendingRepoImpl)(nil)

// Add puts URLs into the pending set. SADD ignores members that are already present.
func (r *PendingRepoImpl) Add(ctx context.Context, urls ...string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	members := make([]interface{}, len(urls))
	for i, u := range urls {
		members[i] = u
	}
	added, err := r.client.SAdd(ctx, pendingSetKey, members...).Result()
	return int(added), err
}

// Snapshot returns all pending URLs without removing them.
func (r *PendingRepoImpl) Snapshot(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, pendingSetKey).Result()
}

// Commit removes the snapshotted URLs. Anything added since the snapshot stays in the set.
func (r *PendingRepoImpl) Commit(ctx context.Context, snapshot []string) error {
	if len(snapshot) == 0 {
		return nil
	}
	members := make([]interface{}, len(snapshot))
	for i, u := range snapshot {
		members[i] = u
	}
	return r.client.SRem(ctx, pendingSetKey, members...).Err()
}

// Size returns the current number of pending URLs.
func (r *PendingRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.SCard(ctx, pendingSetKey).Result()
}
