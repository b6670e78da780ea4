package repository

import "context"

// StatsRepository keeps service-wide counters that outlive a process restart.
type StatsRepository interface {
	// IncrUpdates bumps the number of registry updates and returns the new value.
	IncrUpdates(ctx context.Context) (int64, error)
	// Updates returns the current number of registry updates.
	Updates(ctx context.Context) (int64, error)
}
