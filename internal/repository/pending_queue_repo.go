package repository

import "context"

// PendingQueue holds URLs waiting for the next batch cycle.
// It is a set: adding a URL that is already pending is a no-op.
type PendingQueue interface {
	// Add inserts URLs and returns how many were not already pending.
	Add(ctx context.Context, urls ...string) (int, error)
	// Snapshot returns the current members without removing them.
	Snapshot(ctx context.Context) ([]string, error)
	// Commit removes exactly the given URLs. Members added after the snapshot survive.
	Commit(ctx context.Context, snapshot []string) error
	// Size returns the current number of pending URLs.
	Size(ctx context.Context) (int64, error)
}
