package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/user/phishguard/internal/repository"
)

// PendingRepoImpl is an in-process pending set used when no Redis is configured.
type PendingRepoImpl struct {
	mu      sync.Mutex
	members map[string]struct{}
}

// NewPendingRepo creates an empty pending set.
func NewPendingRepo() *PendingRepoImpl {
	return &PendingRepoImpl{members: make(map[string]struct{})}
}

var _ repository.PendingQueue = (*PendingRepoImpl)(nil)

func (r *PendingRepoImpl) Add(_ context.Context, urls ...string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, u := range urls {
		if _, ok := r.members[u]; ok {
			continue
		}
		r.members[u] = struct{}{}
		added++
	}
	return added, nil
}

// Snapshot returns the members sorted, so callers see a stable order.
func (r *PendingRepoImpl) Snapshot(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.members))
	for u := range r.members {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

func (r *PendingRepoImpl) Commit(_ context.Context, snapshot []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range snapshot {
		delete(r.members, u)
	}
	return nil
}

func (r *PendingRepoImpl) Size(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.members)), nil
}
