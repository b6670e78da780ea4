package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
)

// RegistryRepoImpl keeps the registry in memory with the same upsert rules as the SQL store.
type RegistryRepoImpl struct {
	mu      sync.RWMutex
	entries map[string]*entity.RegistryEntry
	nextID  int64
}

// NewRegistryRepo creates an empty registry.
func NewRegistryRepo() *RegistryRepoImpl {
	return &RegistryRepoImpl{entries: make(map[string]*entity.RegistryEntry)}
}

var _ repository.RegistryRepository = (*RegistryRepoImpl)(nil)

func (r *RegistryRepoImpl) Upsert(ctx context.Context, url string, now time.Time) (entity.UpsertOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(url, now), nil
}

// UpsertBatch applies every upsert under one lock, so readers never observe half a batch.
func (r *RegistryRepoImpl) UpsertBatch(ctx context.Context, urls []string, now time.Time) ([]entity.UpsertOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	outcomes := make([]entity.UpsertOutcome, 0, len(urls))
	for _, u := range urls {
		outcomes = append(outcomes, r.upsertLocked(u, now))
	}
	return outcomes, nil
}

func (r *RegistryRepoImpl) upsertLocked(url string, now time.Time) entity.UpsertOutcome {
	now = now.UTC()
	if e, ok := r.entries[url]; ok {
		e.ReportsCount++
		e.LastSeen = now
		return entity.UpsertBumped
	}
	r.nextID++
	r.entries[url] = &entity.RegistryEntry{
		ID:           r.nextID,
		URL:          url,
		FirstSeen:    now,
		LastSeen:     now,
		ReportsCount: 1,
	}
	return entity.UpsertInserted
}

func (r *RegistryRepoImpl) FindByURL(_ context.Context, url string) (*entity.RegistryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[url]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *RegistryRepoImpl) ListAll(_ context.Context) ([]*entity.RegistryEntry, error) {
	out := r.copyAll()
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

func (r *RegistryRepoImpl) ListRecent(_ context.Context, limit int) ([]*entity.RegistryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	out := r.copyAll()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RegistryRepoImpl) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}

func (r *RegistryRepoImpl) copyAll() []*entity.RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}
