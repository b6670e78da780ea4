package memory

import (
	"context"
	"sync/atomic"

	"github.com/user/phishguard/internal/repository"
)

// StatsRepoImpl is a process-local counter store.
type StatsRepoImpl struct {
	updates atomic.Int64
}

func NewStatsRepo() *StatsRepoImpl {
	return &StatsRepoImpl{}
}

var _ repository.StatsRepository = (*StatsRepoImpl)(nil)

func (r *StatsRepoImpl) IncrUpdates(_ context.Context) (int64, error) {
	return r.updates.Add(1), nil
}

func (r *StatsRepoImpl) Updates(_ context.Context) (int64, error) {
	return r.updates.Load(), nil
}
