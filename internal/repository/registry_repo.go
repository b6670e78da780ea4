package repository

import (
	"context"
	"time"

	"github.com/user/phishguard/internal/entity"
)

// RegistryRepository is the deduplicated store of URLs that cleared the classifier.
type RegistryRepository interface {
	// Upsert inserts url with reports_count 1, or bumps reports_count and last_seen if it exists.
	Upsert(ctx context.Context, url string, now time.Time) (entity.UpsertOutcome, error)
	// UpsertBatch upserts every url atomically: either all rows are written or none.
	UpsertBatch(ctx context.Context, urls []string, now time.Time) ([]entity.UpsertOutcome, error)
	// FindByURL returns ErrNotFound when url was never stored.
	FindByURL(ctx context.Context, url string) (*entity.RegistryEntry, error)
	// ListAll returns every entry ordered by url.
	ListAll(ctx context.Context) ([]*entity.RegistryEntry, error)
	// ListRecent returns up to limit entries, most recently seen first.
	ListRecent(ctx context.Context, limit int) ([]*entity.RegistryEntry, error)
	// Count returns the number of stored URLs.
	Count(ctx context.Context) (int64, error)
}
